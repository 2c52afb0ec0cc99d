/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package exceptions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/testutil"
)

type addressOwner map[uintptr]bool

func (o addressOwner) OwnsBreakpoint(_ debugger.Handle, address uintptr) bool {
	return o[address]
}

func exception(code uint32, address uintptr, firstChance bool) debugger.ExceptionInfo {
	return debugger.ExceptionInfo{
		Record:      debugger.ExceptionRecord{Code: code, Address: address},
		FirstChance: firstChance,
	}
}

func TestLoaderBreakpointIsExpectedOncePerProcess(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testutil.NewLogForTesting(t.Name()), nil)
	const p1, p2 = debugger.Handle(1), debugger.Handle(2)

	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p1, exception(BreakpointCode, 0x10, true)))
	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p2, exception(BreakpointCode, 0x10, true)))
	require.Equal(t, debugger.ExceptionTypeInvalidBreakPoint, c.Classify(p1, exception(BreakpointCode, 0x20, true)))

	// WOW64 processes also raise an x86 loader breakpoint
	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p1, exception(Wx86BreakpointCode, 0x30, true)))
	require.Equal(t, debugger.ExceptionTypeInvalidBreakPoint, c.Classify(p1, exception(Wx86BreakpointCode, 0x30, true)))

	c.ForgetProcess(p1)
	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p1, exception(BreakpointCode, 0x10, true)))
	require.Equal(t, debugger.ExceptionTypeInvalidBreakPoint, c.Classify(p2, exception(BreakpointCode, 0x10, true)))
}

func TestOwnedBreakpoints(t *testing.T) {
	t.Parallel()

	owner := addressOwner{0x401000: true}
	c := NewClassifier(testutil.NewLogForTesting(t.Name()), owner)
	const p = debugger.Handle(1)

	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p, exception(BreakpointCode, 0x10, true)))
	require.Equal(t, debugger.ExceptionTypeBreakPoint, c.Classify(p, exception(BreakpointCode, 0x401000, true)))
	require.Equal(t, debugger.ExceptionTypeInvalidBreakPoint, c.Classify(p, exception(BreakpointCode, 0x402000, true)))
}

func TestNonBreakpointExceptions(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testutil.NewLogForTesting(t.Name()), nil)
	const p = debugger.Handle(1)

	tests := []struct {
		name     string
		info     debugger.ExceptionInfo
		expected debugger.ExceptionType
	}{
		{"first chance access violation", exception(0xC0000005, 0x10, true), debugger.ExceptionTypeNotHandled},
		{"first chance C++ exception", exception(CppExceptionCode, 0x10, true), debugger.ExceptionTypeNotHandled},
		{"last chance access violation", exception(0xC0000005, 0x10, false), debugger.ExceptionTypeError},
		{"last chance unknown code", exception(0xDEADBEEF, 0x10, false), debugger.ExceptionTypeError},
		{"last chance C++ exception", exception(CppExceptionCode, 0x10, false), debugger.ExceptionTypeCppError},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, c.Classify(p, tc.info), tc.name)
	}
}

func TestExceptionName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "EXCEPTION_ACCESS_VIOLATION", Name(0xC0000005))
	require.Equal(t, "C++ exception", Name(CppExceptionCode))
	require.Equal(t, "0xDEADBEEF", Name(0xDEADBEEF))
}
