/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

// DebugEvent is one notification delivered by the OS debugging facility.
// The set of implementations is closed: CreateProcessEvent, CreateThreadEvent, ExitThreadEvent,
// ExitProcessEvent, LoadDllEvent, UnloadDllEvent, ExceptionEvent, RipEvent and OtherEvent.
type DebugEvent interface {
	ProcessID() uint32
	ThreadID() uint32
	debugEvent()
}

// EventHeader carries the ids every debug event reports.
type EventHeader struct {
	ProcessId uint32
	ThreadId  uint32
}

func (h EventHeader) ProcessID() uint32 { return h.ProcessId }
func (h EventHeader) ThreadID() uint32  { return h.ThreadId }
func (EventHeader) debugEvent()         {}

type CreateProcessInfo struct {
	ProcessId uint32

	// Image file of the process. Only valid while the creation event is being handled.
	File Handle

	Process      Handle
	Thread       Handle
	BaseOfImage  uintptr
	StartAddress uintptr
	ImageName    string
}

type CreateProcessEvent struct {
	EventHeader
	Info CreateProcessInfo
}

type CreateThreadEvent struct {
	EventHeader
	Thread       Handle
	StartAddress uintptr
}

type ExitThreadEvent struct {
	EventHeader
	ExitCode uint32
}

type ExitProcessInfo struct {
	ExitCode uint32
}

type ExitProcessEvent struct {
	EventHeader
	Info ExitProcessInfo
}

type LoadDllInfo struct {
	// Module file. Only valid while the load event is being handled.
	File Handle

	BaseOfDll uintptr
	ImageName string
}

type LoadDllEvent struct {
	EventHeader
	Info LoadDllInfo
}

type UnloadDllInfo struct {
	BaseOfDll uintptr
}

type UnloadDllEvent struct {
	EventHeader
	Info UnloadDllInfo
}

type ExceptionRecord struct {
	Code       uint32
	Flags      uint32
	Address    uintptr
	Parameters []uintptr
}

type ExceptionInfo struct {
	Record      ExceptionRecord
	FirstChance bool
}

type ExceptionEvent struct {
	EventHeader
	Info ExceptionInfo
}

// RipEvent reports that the debuggee died outside of the normal exit protocol.
type RipEvent struct {
	EventHeader
	Error uint32
	Type  uint32
}

// OtherEvent is any event kind the debugger does not interpret (e.g. debug string output).
type OtherEvent struct {
	EventHeader
	Code uint32
}

var (
	_ DebugEvent = CreateProcessEvent{}
	_ DebugEvent = CreateThreadEvent{}
	_ DebugEvent = ExitThreadEvent{}
	_ DebugEvent = ExitProcessEvent{}
	_ DebugEvent = LoadDllEvent{}
	_ DebugEvent = UnloadDllEvent{}
	_ DebugEvent = ExceptionEvent{}
	_ DebugEvent = RipEvent{}
	_ DebugEvent = OtherEvent{}
)
