/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"github.com/microsoft/covdbg/pkg/debugger"
)

// MINIDUMP_TYPE flags used for crash dumps.
const (
	miniDumpWithFullMemory      uint32 = 0x00000002
	miniDumpWithHandleData      uint32 = 0x00000004
	miniDumpWithUnloadedModules uint32 = 0x00000020
	miniDumpWithThreadInfo      uint32 = 0x00001000

	crashDumpType = miniDumpWithFullMemory | miniDumpWithHandleData | miniDumpWithUnloadedModules | miniDumpWithThreadInfo
)

// MiniDumpWriter writes full-memory minidumps with dbghelp.
type MiniDumpWriter struct{}

var _ debugger.CrashDumper = MiniDumpWriter{}
