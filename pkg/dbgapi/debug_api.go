/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package dbgapi binds the debugger state machine to the Win32 debugging API.
// On other platforms every operation fails with debugger.ErrUnsupportedPlatform.
package dbgapi

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/microsoft/covdbg/pkg/debugger"
)

// Debug event codes, as found in DEBUG_EVENT.dwDebugEventCode.
const (
	exceptionDebugEvent     uint32 = 1
	createThreadDebugEvent  uint32 = 2
	createProcessDebugEvent uint32 = 3
	exitThreadDebugEvent    uint32 = 4
	exitProcessDebugEvent   uint32 = 5
	loadDllDebugEvent       uint32 = 6
	unloadDllDebugEvent     uint32 = 7
	outputDebugStringEvent  uint32 = 8
	ripEvent                uint32 = 9
)

// Win32 is the debugger.DebugAPI implementation backed by kernel32.
// All methods must be called from the OS thread that called StartProcess.
type Win32 struct {
	log logr.Logger
}

func NewWin32(log logr.Logger) *Win32 {
	return &Win32{log: log.WithName("Win32DebugAPI")}
}

var _ debugger.DebugAPI = (*Win32)(nil)

func trimLongPathPrefix(path string) string {
	if rest, found := strings.CutPrefix(path, `\\?\UNC\`); found {
		return `\\` + rest
	}
	return strings.TrimPrefix(path, `\\?\`)
}
