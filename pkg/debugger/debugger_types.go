/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"fmt"
	"os"
)

const (
	// A valid exit code is any value reported by the OS. UnknownExitCode is returned together with an error.
	UnknownExitCode int32 = -1

	// Raised by int 3 / DebugBreak(). The value is used as a synthetic exit code after an assertion.
	ExceptionBreakpoint uint32 = 0x80000003
)

// ContinueStatus is the disposition handed back to the OS after an event has been handled.
type ContinueStatus uint32

const (
	// DBG_CONTINUE
	ContinueStatusContinue ContinueStatus = 0x00010002

	// DBG_EXCEPTION_NOT_HANDLED
	ContinueStatusExceptionNotHandled ContinueStatus = 0x80010001
)

func (cs ContinueStatus) String() string {
	switch cs {
	case ContinueStatusContinue:
		return "DBG_CONTINUE"
	case ContinueStatusExceptionNotHandled:
		return "DBG_EXCEPTION_NOT_HANDLED"
	default:
		return fmt.Sprintf("ContinueStatus(0x%08X)", uint32(cs))
	}
}

// ExceptionType is the verdict of the events handler about an exception.
type ExceptionType int

const (
	ExceptionTypeBreakPoint ExceptionType = iota
	ExceptionTypeInvalidBreakPoint
	ExceptionTypeNotHandled
	ExceptionTypeError
	ExceptionTypeCppError
)

func (et ExceptionType) String() string {
	switch et {
	case ExceptionTypeBreakPoint:
		return "BreakPoint"
	case ExceptionTypeInvalidBreakPoint:
		return "InvalidBreakPoint"
	case ExceptionTypeNotHandled:
		return "NotHandled"
	case ExceptionTypeError:
		return "Error"
	case ExceptionTypeCppError:
		return "CppError"
	default:
		return fmt.Sprintf("ExceptionType(%d)", int(et))
	}
}

// DebugEventsHandler is implemented by the coverage layer and notified for every interpreted event.
// Implementations must return quickly; the traced process tree is suspended while they run.
// An error returned by any method ends the debug session.
type DebugEventsHandler interface {
	OnCreateProcess(info CreateProcessInfo) error
	OnExitProcess(process Handle, thread Handle, info ExitProcessInfo) error
	OnLoadDll(process Handle, thread Handle, info LoadDllInfo) error
	OnUnloadDll(process Handle, thread Handle, info UnloadDllInfo) error
	OnException(process Handle, thread Handle, info ExceptionInfo) (ExceptionType, error)
}

// StartInfo describes the program to launch under the debugger.
type StartInfo struct {
	Path             string
	Args             []string
	WorkingDirectory string
}

// DebugAPI is the OS debugging facility.
type DebugAPI interface {
	// Launches the program as a debuggee. When followChildren is set, processes it creates are traced too.
	StartProcess(startInfo StartInfo, followChildren bool) error

	// Blocks until the next debug event is available. There is no timeout.
	WaitForDebugEvent() (DebugEvent, error)

	// Resumes the thread that reported the last event.
	ContinueDebugEvent(processId uint32, threadId uint32, status ContinueStatus) error

	CloseHandle(h Handle) error
}

type CrashDumpRequest struct {
	ProcessId uint32
	ThreadId  uint32
	Process   Handle
	Thread    Handle
	Exception ExceptionRecord
}

// CrashDumper writes a minidump of the debuggee into the given (already created) file.
type CrashDumper interface {
	WriteCrashDump(file *os.File, request CrashDumpRequest) error
}

// Config is the immutable configuration of a Debugger.
type Config struct {
	// Trace child processes started by the debuggee.
	CoverChildren bool

	// Let the debuggee continue after an unhandled native (C++) exception.
	ContinueAfterCppException bool

	// Leave assertion breakpoints unhandled instead of resuming the debuggee.
	StopOnAssert bool

	// Write a minidump when the debuggee crashes. Requires DumpDirectory.
	DumpOnCrash bool

	DumpDirectory string
}
