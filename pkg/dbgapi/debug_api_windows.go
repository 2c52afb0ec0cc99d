//go:build windows

/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/microsoft/covdbg/pkg/debugger"
)

const (
	exceptionMaximumParameters = 15
)

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procWaitForDebugEvent  = kernel32.NewProc("WaitForDebugEvent")
	procContinueDebugEvent = kernel32.NewProc("ContinueDebugEvent")
)

// Mirrors DEBUG_EVENT. The union is 8-byte aligned on 64-bit platforms and 4-byte aligned on 32-bit ones,
// which is exactly how the Go compiler lays out a uint64 array on those platforms.
type rawDebugEvent struct {
	DebugEventCode uint32
	ProcessId      uint32
	ThreadId       uint32
	U              [20]uint64
}

type exceptionRecord struct {
	ExceptionCode        uint32
	ExceptionFlags       uint32
	ExceptionRecord      uintptr
	ExceptionAddress     uintptr
	NumberParameters     uint32
	ExceptionInformation [exceptionMaximumParameters]uintptr
}

type exceptionDebugInfo struct {
	ExceptionRecord exceptionRecord
	FirstChance     uint32
}

type createThreadDebugInfo struct {
	Thread          windows.Handle
	ThreadLocalBase uintptr
	StartAddress    uintptr
}

type createProcessDebugInfo struct {
	File                windows.Handle
	Process             windows.Handle
	Thread              windows.Handle
	BaseOfImage         uintptr
	DebugInfoFileOffset uint32
	DebugInfoSize       uint32
	ThreadLocalBase     uintptr
	StartAddress        uintptr
	ImageName           uintptr
	Unicode             uint16
}

type exitDebugInfo struct {
	ExitCode uint32
}

type loadDllDebugInfo struct {
	File                windows.Handle
	BaseOfDll           uintptr
	DebugInfoFileOffset uint32
	DebugInfoSize       uint32
	ImageName           uintptr
	Unicode             uint16
}

type unloadDllDebugInfo struct {
	BaseOfDll uintptr
}

type ripInfo struct {
	Error uint32
	Type  uint32
}

func (w *Win32) StartProcess(startInfo debugger.StartInfo, followChildren bool) error {
	if startInfo.Path == "" {
		return errors.New("program path is empty")
	}

	cmdLine, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(append([]string{startInfo.Path}, startInfo.Args...)))
	if err != nil {
		return err
	}

	var workingDir *uint16
	if startInfo.WorkingDirectory != "" {
		workingDir, err = windows.UTF16PtrFromString(startInfo.WorkingDirectory)
		if err != nil {
			return err
		}
	}

	var flags uint32 = windows.DEBUG_ONLY_THIS_PROCESS
	if followChildren {
		flags = windows.DEBUG_PROCESS
	}

	si := windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(si))
	pi := windows.ProcessInformation{}

	err = windows.CreateProcess(nil, cmdLine, nil, nil, false, flags, nil, workingDir, &si, &pi)
	if err != nil {
		return err
	}

	// The debug events carry their own process and thread handles.
	_ = windows.CloseHandle(pi.Thread)
	_ = windows.CloseHandle(pi.Process)

	w.log.V(1).Info("Process created", "ProcessID", pi.ProcessId, "Path", startInfo.Path)
	return nil
}

func (w *Win32) WaitForDebugEvent() (debugger.DebugEvent, error) {
	raw := rawDebugEvent{}
	retval, _, err := procWaitForDebugEvent.Call(uintptr(unsafe.Pointer(&raw)), uintptr(windows.INFINITE))
	if retval == 0 {
		return nil, err
	}
	return w.decode(&raw), nil
}

func (w *Win32) ContinueDebugEvent(processId uint32, threadId uint32, status debugger.ContinueStatus) error {
	retval, _, err := procContinueDebugEvent.Call(uintptr(processId), uintptr(threadId), uintptr(status))
	if retval == 0 {
		return err
	}
	return nil
}

func (w *Win32) CloseHandle(h debugger.Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

func (w *Win32) decode(raw *rawDebugEvent) debugger.DebugEvent {
	header := debugger.EventHeader{ProcessId: raw.ProcessId, ThreadId: raw.ThreadId}
	u := unsafe.Pointer(&raw.U[0])

	switch raw.DebugEventCode {
	case createProcessDebugEvent:
		info := (*createProcessDebugInfo)(u)
		return debugger.CreateProcessEvent{
			EventHeader: header,
			Info: debugger.CreateProcessInfo{
				File:         debugger.Handle(info.File),
				Process:      debugger.Handle(info.Process),
				Thread:       debugger.Handle(info.Thread),
				BaseOfImage:  info.BaseOfImage,
				StartAddress: info.StartAddress,
				ImageName:    w.imageName(info.File),
			},
		}

	case createThreadDebugEvent:
		info := (*createThreadDebugInfo)(u)
		return debugger.CreateThreadEvent{
			EventHeader:  header,
			Thread:       debugger.Handle(info.Thread),
			StartAddress: info.StartAddress,
		}

	case exitThreadDebugEvent:
		return debugger.ExitThreadEvent{EventHeader: header, ExitCode: (*exitDebugInfo)(u).ExitCode}

	case exitProcessDebugEvent:
		return debugger.ExitProcessEvent{
			EventHeader: header,
			Info:        debugger.ExitProcessInfo{ExitCode: (*exitDebugInfo)(u).ExitCode},
		}

	case loadDllDebugEvent:
		info := (*loadDllDebugInfo)(u)
		return debugger.LoadDllEvent{
			EventHeader: header,
			Info: debugger.LoadDllInfo{
				File:      debugger.Handle(info.File),
				BaseOfDll: info.BaseOfDll,
				ImageName: w.imageName(info.File),
			},
		}

	case unloadDllDebugEvent:
		return debugger.UnloadDllEvent{
			EventHeader: header,
			Info:        debugger.UnloadDllInfo{BaseOfDll: (*unloadDllDebugInfo)(u).BaseOfDll},
		}

	case exceptionDebugEvent:
		info := (*exceptionDebugInfo)(u)
		return debugger.ExceptionEvent{
			EventHeader: header,
			Info: debugger.ExceptionInfo{
				Record:      toExceptionRecord(&info.ExceptionRecord),
				FirstChance: info.FirstChance != 0,
			},
		}

	case ripEvent:
		info := (*ripInfo)(u)
		return debugger.RipEvent{EventHeader: header, Error: info.Error, Type: info.Type}

	default:
		return debugger.OtherEvent{EventHeader: header, Code: raw.DebugEventCode}
	}
}

func toExceptionRecord(r *exceptionRecord) debugger.ExceptionRecord {
	n := min(int(r.NumberParameters), exceptionMaximumParameters)
	params := make([]uintptr, n)
	copy(params, r.ExceptionInformation[:n])
	return debugger.ExceptionRecord{
		Code:       r.ExceptionCode,
		Flags:      r.ExceptionFlags,
		Address:    r.ExceptionAddress,
		Parameters: params,
	}
}

// The image name pointer in the event points into the debuggee memory and is often null,
// so the name is resolved from the image file handle instead.
func (w *Win32) imageName(file windows.Handle) string {
	if file == 0 || file == windows.InvalidHandle {
		return ""
	}

	buf := make([]uint16, windows.MAX_PATH)
	for {
		n, err := windows.GetFinalPathNameByHandle(file, &buf[0], uint32(len(buf)), 0)
		if err != nil {
			w.log.V(1).Info("Could not resolve image name", "Error", err.Error())
			return ""
		}
		if int(n) < len(buf) {
			return trimLongPathPrefix(windows.UTF16ToString(buf[:n]))
		}
		buf = make([]uint16, n+1)
	}
}
