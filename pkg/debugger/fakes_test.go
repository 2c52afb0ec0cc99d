package debugger

import (
	"errors"
	"os"

	"github.com/stretchr/testify/mock"
)

type continueCall struct {
	processId uint32
	threadId  uint32
	status    ContinueStatus
}

// Replays a fixed list of debug events.
type fakeDebugAPI struct {
	events         []DebugEvent
	next           int
	started        bool
	followChildren bool
	startInfo      StartInfo
	continued      []continueCall
	closed         []Handle

	startErr    error
	waitErr     error
	continueErr error
}

var errNoMoreEvents = errors.New("no more debug events")

func newFakeDebugAPI(events ...DebugEvent) *fakeDebugAPI {
	return &fakeDebugAPI{events: events}
}

func (f *fakeDebugAPI) StartProcess(startInfo StartInfo, followChildren bool) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	f.startInfo = startInfo
	f.followChildren = followChildren
	return nil
}

func (f *fakeDebugAPI) WaitForDebugEvent() (DebugEvent, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	if f.next >= len(f.events) {
		return nil, errNoMoreEvents
	}
	ev := f.events[f.next]
	f.next++
	return ev, nil
}

func (f *fakeDebugAPI) ContinueDebugEvent(processId uint32, threadId uint32, status ContinueStatus) error {
	if f.continueErr != nil {
		return f.continueErr
	}
	f.continued = append(f.continued, continueCall{processId, threadId, status})
	return nil
}

func (f *fakeDebugAPI) CloseHandle(h Handle) error {
	f.closed = append(f.closed, h)
	return nil
}

func (f *fakeDebugAPI) closeCount(h Handle) int {
	count := 0
	for _, c := range f.closed {
		if c == h {
			count++
		}
	}
	return count
}

// Records notifications and answers exceptions with a scripted list of verdicts.
type fakeEventsHandler struct {
	verdicts []ExceptionType

	createdProcesses []CreateProcessInfo
	exitedProcesses  []Handle
	loadedDlls       []LoadDllInfo
	unloadedDlls     []UnloadDllInfo
	exceptions       []ExceptionInfo

	createProcessErr error
	loadDllErr       error
	exceptionErr     error
}

func (h *fakeEventsHandler) OnCreateProcess(info CreateProcessInfo) error {
	h.createdProcesses = append(h.createdProcesses, info)
	return h.createProcessErr
}

func (h *fakeEventsHandler) OnExitProcess(process Handle, _ Handle, _ ExitProcessInfo) error {
	h.exitedProcesses = append(h.exitedProcesses, process)
	return nil
}

func (h *fakeEventsHandler) OnLoadDll(_ Handle, _ Handle, info LoadDllInfo) error {
	h.loadedDlls = append(h.loadedDlls, info)
	return h.loadDllErr
}

func (h *fakeEventsHandler) OnUnloadDll(_ Handle, _ Handle, info UnloadDllInfo) error {
	h.unloadedDlls = append(h.unloadedDlls, info)
	return nil
}

func (h *fakeEventsHandler) OnException(_ Handle, _ Handle, info ExceptionInfo) (ExceptionType, error) {
	h.exceptions = append(h.exceptions, info)
	if h.exceptionErr != nil {
		return ExceptionTypeError, h.exceptionErr
	}
	verdict := h.verdicts[0]
	h.verdicts = h.verdicts[1:]
	return verdict, nil
}

type mockCrashDumper struct {
	mock.Mock
}

func (m *mockCrashDumper) WriteCrashDump(file *os.File, request CrashDumpRequest) error {
	args := m.Called(file.Name(), request)
	return args.Error(0)
}

func processHandle(pid uint32) Handle { return Handle(0x1000 + pid) }
func threadHandle(tid uint32) Handle  { return Handle(0x2000 + tid) }
func fileHandle(n uint32) Handle      { return Handle(0x3000 + n) }

func createProcessEvent(pid uint32, tid uint32) CreateProcessEvent {
	return CreateProcessEvent{
		EventHeader: EventHeader{ProcessId: pid, ThreadId: tid},
		Info: CreateProcessInfo{
			File:      fileHandle(pid),
			Process:   processHandle(pid),
			Thread:    threadHandle(tid),
			ImageName: "C:\\test\\app.exe",
		},
	}
}

func createThreadEvent(pid uint32, tid uint32) CreateThreadEvent {
	return CreateThreadEvent{
		EventHeader: EventHeader{ProcessId: pid, ThreadId: tid},
		Thread:      threadHandle(tid),
	}
}

func exitThreadEvent(pid uint32, tid uint32) ExitThreadEvent {
	return ExitThreadEvent{EventHeader: EventHeader{ProcessId: pid, ThreadId: tid}}
}

func exitProcessEvent(pid uint32, tid uint32, exitCode uint32) ExitProcessEvent {
	return ExitProcessEvent{
		EventHeader: EventHeader{ProcessId: pid, ThreadId: tid},
		Info:        ExitProcessInfo{ExitCode: exitCode},
	}
}

func loadDllEvent(pid uint32, tid uint32, file Handle) LoadDllEvent {
	return LoadDllEvent{
		EventHeader: EventHeader{ProcessId: pid, ThreadId: tid},
		Info:        LoadDllInfo{File: file, BaseOfDll: 0x7ff000, ImageName: "C:\\test\\lib.dll"},
	}
}

func exceptionEvent(pid uint32, tid uint32, code uint32, firstChance bool) ExceptionEvent {
	return ExceptionEvent{
		EventHeader: EventHeader{ProcessId: pid, ThreadId: tid},
		Info: ExceptionInfo{
			Record:      ExceptionRecord{Code: code, Address: 0x401000},
			FirstChance: firstChance,
		},
	}
}
