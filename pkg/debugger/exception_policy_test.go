/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const cppExceptionCode uint32 = 0xE06D7363

func TestDecideException(t *testing.T) {
	t.Parallel()

	breakpointExitCode := int32(-2147483645) // 0x80000003
	cppExitCode := int32(-529697949)         // 0xE06D7363

	tests := []struct {
		name             string
		verdict          ExceptionType
		cfg              Config
		expectedPolicy   crashDumpPolicy
		expectedStatus   ContinueStatus
		expectedExitCode *int32
	}{
		{"breakpoint", ExceptionTypeBreakPoint, Config{}, crashDumpNever, ContinueStatusContinue, nil},
		{"breakpoint ignores stop on assert", ExceptionTypeBreakPoint, Config{StopOnAssert: true}, crashDumpNever, ContinueStatusContinue, nil},
		{"invalid breakpoint continues", ExceptionTypeInvalidBreakPoint, Config{}, crashDumpAnyChance, ContinueStatusContinue, &breakpointExitCode},
		{"invalid breakpoint stops on assert", ExceptionTypeInvalidBreakPoint, Config{StopOnAssert: true}, crashDumpAnyChance, ContinueStatusExceptionNotHandled, nil},
		{"not handled", ExceptionTypeNotHandled, Config{ContinueAfterCppException: true}, crashDumpLastChance, ContinueStatusExceptionNotHandled, nil},
		{"error", ExceptionTypeError, Config{ContinueAfterCppException: true}, crashDumpLastChance, ContinueStatusExceptionNotHandled, nil},
		{"cpp error propagates", ExceptionTypeCppError, Config{}, crashDumpLastChance, ContinueStatusExceptionNotHandled, nil},
		{"cpp error continues", ExceptionTypeCppError, Config{ContinueAfterCppException: true}, crashDumpLastChance, ContinueStatusContinue, &cppExitCode},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			decision, err := decideException(tc.verdict, tc.cfg, cppExceptionCode)
			require.NoError(t, err)
			require.Equal(t, tc.expectedPolicy, decision.crashDump)
			require.Equal(t, tc.expectedStatus, decision.disposition.continueStatus())
			if tc.expectedExitCode == nil {
				require.Nil(t, decision.disposition.ExitCode)
			} else {
				require.NotNil(t, decision.disposition.ExitCode)
				require.Equal(t, *tc.expectedExitCode, *decision.disposition.ExitCode)
			}
		})
	}
}

func TestDecideExceptionRejectsUnknownVerdict(t *testing.T) {
	t.Parallel()

	_, err := decideException(ExceptionType(42), Config{}, 0)
	require.ErrorIs(t, err, ErrInvalidExceptionType)
}

func TestCrashDumpPolicy(t *testing.T) {
	t.Parallel()

	enabled := Config{DumpOnCrash: true, DumpDirectory: "dumps"}
	disabled := Config{}

	require.False(t, crashDumpNever.shouldDump(enabled, false))
	require.False(t, crashDumpNever.shouldDump(enabled, true))

	require.True(t, crashDumpLastChance.shouldDump(enabled, false))
	require.False(t, crashDumpLastChance.shouldDump(enabled, true))

	require.True(t, crashDumpAnyChance.shouldDump(enabled, false))
	require.True(t, crashDumpAnyChance.shouldDump(enabled, true))

	for _, p := range []crashDumpPolicy{crashDumpNever, crashDumpLastChance, crashDumpAnyChance} {
		require.False(t, p.shouldDump(disabled, false))
		require.False(t, p.shouldDump(disabled, true))
	}
}

func TestDispositionDefaultsToContinue(t *testing.T) {
	t.Parallel()

	require.Equal(t, ContinueStatusContinue, Disposition{}.continueStatus())
	require.Equal(t, "DBG_EXCEPTION_NOT_HANDLED", ContinueStatusExceptionNotHandled.String())
	require.Equal(t, "CppError", ExceptionTypeCppError.String())
}
