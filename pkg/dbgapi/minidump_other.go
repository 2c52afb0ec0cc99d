//go:build !windows

/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"os"

	"github.com/microsoft/covdbg/pkg/debugger"
)

func (MiniDumpWriter) WriteCrashDump(_ *os.File, _ debugger.CrashDumpRequest) error {
	return debugger.ErrUnsupportedPlatform
}
