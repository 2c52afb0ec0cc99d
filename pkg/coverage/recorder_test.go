/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package coverage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/exceptions"
	"github.com/microsoft/covdbg/pkg/process"
	"github.com/microsoft/covdbg/pkg/testutil"
)

func newTestRecorder(t *testing.T, settings FilterSettings) *Recorder {
	log := testutil.NewLogForTesting(t.Name())
	r := NewRecorder(log, NewFilterManager(settings, nil), exceptions.NewClassifier(log, nil))
	r.executablePath = func(pid process.Pid_t) (string, error) {
		return "", errors.New("process lookup is disabled in tests")
	}
	return r
}

func TestRecorderTracksSelectedModules(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t, FilterSettings{ModuleExcludes: []string{`\windows\`}})
	const proc, thread = debugger.Handle(0x10), debugger.Handle(0x20)

	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{
		ProcessId:   7,
		Process:     proc,
		Thread:      thread,
		BaseOfImage: 0x400000,
		ImageName:   `C:\Dev\app.exe`,
	}))
	require.NoError(t, r.OnLoadDll(proc, thread, debugger.LoadDllInfo{BaseOfDll: 0x7000, ImageName: `C:\Windows\System32\kernel32.dll`}))
	require.NoError(t, r.OnLoadDll(proc, thread, debugger.LoadDllInfo{BaseOfDll: 0x9000, ImageName: `C:\Dev\zlib.dll`}))
	require.NoError(t, r.OnLoadDll(proc, thread, debugger.LoadDllInfo{BaseOfDll: 0x8000, ImageName: `C:\Dev\plugin.dll`}))
	require.NoError(t, r.OnUnloadDll(proc, thread, debugger.UnloadDllInfo{BaseOfDll: 0x8000}))
	// Unloading an unknown or skipped module is ignored
	require.NoError(t, r.OnUnloadDll(proc, thread, debugger.UnloadDllInfo{BaseOfDll: 0x7000}))

	summary := r.Summary()
	require.Len(t, summary, 1)
	require.Equal(t, uint32(7), summary[0].ProcessId)
	require.Equal(t, `C:\Dev\app.exe`, summary[0].Path)
	require.Nil(t, summary[0].ExitCode)
	require.Equal(t, 1, summary[0].SkippedModules)
	require.Equal(t, []Module{
		{Path: `C:\Dev\app.exe`, BaseAddress: 0x400000},
		{Path: `C:\Dev\zlib.dll`, BaseAddress: 0x9000},
	}, summary[0].Modules)

	require.NoError(t, r.OnExitProcess(proc, thread, debugger.ExitProcessInfo{ExitCode: 3}))
	summary = r.Summary()
	require.NotNil(t, summary[0].ExitCode)
	require.Equal(t, uint32(3), *summary[0].ExitCode)

	// The process is no longer live
	require.Error(t, r.OnLoadDll(proc, thread, debugger.LoadDllInfo{BaseOfDll: 0x9000, ImageName: `C:\Dev\zlib.dll`}))
}

func TestRecorderResolvesMissingImageName(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t, FilterSettings{})
	r.executablePath = func(pid process.Pid_t) (string, error) {
		require.Equal(t, process.Pid_t(12), pid)
		return `C:\Dev\child.exe`, nil
	}

	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 12, Process: 1, BaseOfImage: 0x400000}))
	summary := r.Summary()
	require.Equal(t, `C:\Dev\child.exe`, summary[0].Path)
	require.Len(t, summary[0].Modules, 1)
}

func TestRecorderKeepsProcessesInCreationOrder(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t, FilterSettings{})
	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 20, Process: 1, ImageName: `C:\a.exe`}))
	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 10, Process: 2, ImageName: `C:\b.exe`}))
	require.NoError(t, r.OnExitProcess(1, 0, debugger.ExitProcessInfo{}))

	// A handle value may be reused by a later process
	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 30, Process: 1, ImageName: `C:\c.exe`}))

	summary := r.Summary()
	require.Len(t, summary, 3)
	require.Equal(t, uint32(20), summary[0].ProcessId)
	require.Equal(t, uint32(10), summary[1].ProcessId)
	require.Equal(t, uint32(30), summary[2].ProcessId)
	require.NotNil(t, summary[0].ExitCode)
	require.Nil(t, summary[2].ExitCode)
}

func TestRecorderClassifiesExceptions(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t, FilterSettings{})
	const proc = debugger.Handle(1)
	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 1, Process: proc, ImageName: `C:\a.exe`}))

	breakpoint := debugger.ExceptionInfo{Record: debugger.ExceptionRecord{Code: exceptions.BreakpointCode}, FirstChance: true}

	verdict, err := r.OnException(proc, 0, breakpoint)
	require.NoError(t, err)
	require.Equal(t, debugger.ExceptionTypeBreakPoint, verdict)

	verdict, err = r.OnException(proc, 0, breakpoint)
	require.NoError(t, err)
	require.Equal(t, debugger.ExceptionTypeInvalidBreakPoint, verdict)

	// A new process with the same handle gets its own loader breakpoint
	require.NoError(t, r.OnExitProcess(proc, 0, debugger.ExitProcessInfo{}))
	require.NoError(t, r.OnCreateProcess(debugger.CreateProcessInfo{ProcessId: 2, Process: proc, ImageName: `C:\a.exe`}))
	verdict, err = r.OnException(proc, 0, breakpoint)
	require.NoError(t, err)
	require.Equal(t, debugger.ExceptionTypeBreakPoint, verdict)

	_, err = r.OnException(debugger.Handle(99), 0, breakpoint)
	require.Error(t, err)
}
