//go:build windows

/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/testutil"
)

func TestNativeLayout(t *testing.T) {
	t.Parallel()

	if unsafe.Sizeof(uintptr(0)) == 8 {
		require.Equal(t, uintptr(16), unsafe.Offsetof(rawDebugEvent{}.U))
		require.GreaterOrEqual(t, unsafe.Sizeof(rawDebugEvent{}), uintptr(176))
		require.Equal(t, uintptr(152), unsafe.Sizeof(exceptionRecord{}))
		require.Equal(t, uintptr(72), unsafe.Sizeof(createProcessDebugInfo{}))
		require.Equal(t, uintptr(40), unsafe.Sizeof(loadDllDebugInfo{}))
	} else {
		require.Equal(t, uintptr(12), unsafe.Offsetof(rawDebugEvent{}.U))
		require.GreaterOrEqual(t, unsafe.Sizeof(rawDebugEvent{}), uintptr(96))
		require.Equal(t, uintptr(80), unsafe.Sizeof(exceptionRecord{}))
		require.Equal(t, uintptr(40), unsafe.Sizeof(createProcessDebugInfo{}))
		require.Equal(t, uintptr(24), unsafe.Sizeof(loadDllDebugInfo{}))
	}
}

// Answers the loader breakpoint and passes every other exception to the debuggee.
type passThroughHandler struct {
	images []string
}

func (h *passThroughHandler) OnCreateProcess(info debugger.CreateProcessInfo) error {
	h.images = append(h.images, info.ImageName)
	return nil
}

func (h *passThroughHandler) OnExitProcess(_, _ debugger.Handle, _ debugger.ExitProcessInfo) error {
	return nil
}

func (h *passThroughHandler) OnLoadDll(_, _ debugger.Handle, info debugger.LoadDllInfo) error {
	h.images = append(h.images, info.ImageName)
	return nil
}

func (h *passThroughHandler) OnUnloadDll(_, _ debugger.Handle, _ debugger.UnloadDllInfo) error {
	return nil
}

func (h *passThroughHandler) OnException(_, _ debugger.Handle, info debugger.ExceptionInfo) (debugger.ExceptionType, error) {
	switch {
	case info.Record.Code == debugger.ExceptionBreakpoint:
		return debugger.ExceptionTypeBreakPoint, nil
	case info.FirstChance:
		return debugger.ExceptionTypeNotHandled, nil
	default:
		return debugger.ExceptionTypeError, nil
	}
}

func TestDebugChildProcessExitCode(t *testing.T) {
	log := testutil.NewLogForTesting(t.Name())
	d, err := debugger.New(debugger.Config{}, NewWin32(log), nil, log)
	require.NoError(t, err)

	cmd := filepath.Join(os.Getenv("SystemRoot"), "System32", "cmd.exe")
	handler := &passThroughHandler{}

	ctx, cancel := testutil.GetTestContext(t, 30*time.Second)
	defer cancel()
	exitCode, err := d.Debug(ctx, debugger.StartInfo{Path: cmd, Args: []string{"/c", "exit", "3"}}, handler)
	require.NoError(t, err)
	require.Equal(t, int32(3), exitCode)

	require.NotEmpty(t, handler.images)
	require.True(t, strings.EqualFold(cmd, handler.images[0]), "unexpected root image %s", handler.images[0])
}

func TestStartProcessFailure(t *testing.T) {
	log := testutil.NewLogForTesting(t.Name())
	d, err := debugger.New(debugger.Config{}, NewWin32(log), nil, log)
	require.NoError(t, err)

	_, err = d.Debug(t.Context(), debugger.StartInfo{Path: filepath.Join(t.TempDir(), "missing.exe")}, &passThroughHandler{})
	var osErr *debugger.OSError
	require.ErrorAs(t, err, &osErr)
	code, hasCode := osErr.Code()
	require.True(t, hasCode)
	require.Equal(t, uint32(2), code) // ERROR_FILE_NOT_FOUND
}
