//go:build !windows

/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"github.com/microsoft/covdbg/pkg/debugger"
)

func (w *Win32) StartProcess(_ debugger.StartInfo, _ bool) error {
	return debugger.ErrUnsupportedPlatform
}

func (w *Win32) WaitForDebugEvent() (debugger.DebugEvent, error) {
	return nil, debugger.ErrUnsupportedPlatform
}

func (w *Win32) ContinueDebugEvent(_ uint32, _ uint32, _ debugger.ContinueStatus) error {
	return debugger.ErrUnsupportedPlatform
}

func (w *Win32) CloseHandle(_ debugger.Handle) error {
	return debugger.ErrUnsupportedPlatform
}
