/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package exceptions

import (
	"fmt"
)

const (
	// EXCEPTION_BREAKPOINT
	BreakpointCode uint32 = 0x80000003

	// STATUS_WX86_BREAKPOINT, raised for 32-bit processes running under WOW64.
	Wx86BreakpointCode uint32 = 0x4000001F

	// Raised by the MSVC runtime for every C++ throw.
	CppExceptionCode uint32 = 0xE06D7363
)

var exceptionNames = map[uint32]string{
	0x80000001:         "EXCEPTION_GUARD_PAGE",
	0x80000002:         "EXCEPTION_DATATYPE_MISALIGNMENT",
	BreakpointCode:     "EXCEPTION_BREAKPOINT",
	0x80000004:         "EXCEPTION_SINGLE_STEP",
	Wx86BreakpointCode: "STATUS_WX86_BREAKPOINT",
	0xC0000005:         "EXCEPTION_ACCESS_VIOLATION",
	0xC0000006:         "EXCEPTION_IN_PAGE_ERROR",
	0xC0000008:         "EXCEPTION_INVALID_HANDLE",
	0xC000001D:         "EXCEPTION_ILLEGAL_INSTRUCTION",
	0xC0000025:         "EXCEPTION_NONCONTINUABLE_EXCEPTION",
	0xC0000026:         "EXCEPTION_INVALID_DISPOSITION",
	0xC000008C:         "EXCEPTION_ARRAY_BOUNDS_EXCEEDED",
	0xC000008D:         "EXCEPTION_FLT_DENORMAL_OPERAND",
	0xC000008E:         "EXCEPTION_FLT_DIVIDE_BY_ZERO",
	0xC000008F:         "EXCEPTION_FLT_INEXACT_RESULT",
	0xC0000090:         "EXCEPTION_FLT_INVALID_OPERATION",
	0xC0000091:         "EXCEPTION_FLT_OVERFLOW",
	0xC0000092:         "EXCEPTION_FLT_STACK_CHECK",
	0xC0000093:         "EXCEPTION_FLT_UNDERFLOW",
	0xC0000094:         "EXCEPTION_INT_DIVIDE_BY_ZERO",
	0xC0000095:         "EXCEPTION_INT_OVERFLOW",
	0xC0000096:         "EXCEPTION_PRIV_INSTRUCTION",
	0xC00000FD:         "EXCEPTION_STACK_OVERFLOW",
	0xC0000374:         "STATUS_HEAP_CORRUPTION",
	0xC0000409:         "STATUS_STACK_BUFFER_OVERRUN",
	CppExceptionCode:   "C++ exception",
}

// Name returns a readable name for an exception code.
// Unknown codes are formatted as hexadecimal.
func Name(code uint32) string {
	if name, found := exceptionNames[code]; found {
		return name
	}
	return fmt.Sprintf("0x%08X", code)
}

func isBreakpoint(code uint32) bool {
	return code == BreakpointCode || code == Wx86BreakpointCode
}
