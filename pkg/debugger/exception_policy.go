/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package debugger

import (
	"fmt"
)

// Disposition is the outcome of handling a single debug event.
// A nil ExitCode means the event does not propose an exit code for its process.
// A nil ContinueStatus means ContinueStatusContinue.
type Disposition struct {
	ExitCode       *int32
	ContinueStatus *ContinueStatus
}

func (d Disposition) continueStatus() ContinueStatus {
	if d.ContinueStatus == nil {
		return ContinueStatusContinue
	}
	return *d.ContinueStatus
}

type crashDumpPolicy int

const (
	crashDumpNever crashDumpPolicy = iota

	// First-chance exceptions may still be handled by the debuggee, so they are skipped.
	crashDumpLastChance

	crashDumpAnyChance
)

type exceptionDecision struct {
	crashDump   crashDumpPolicy
	disposition Disposition
	warnings    []string
}

// decideException maps an exception verdict to the crash dump policy and event disposition.
// It does not touch the OS or the session.
func decideException(verdict ExceptionType, cfg Config, exceptionCode uint32) (exceptionDecision, error) {
	switch verdict {
	case ExceptionTypeBreakPoint:
		return exceptionDecision{
			crashDump:   crashDumpNever,
			disposition: Disposition{ContinueStatus: statusPtr(ContinueStatusContinue)},
		}, nil

	case ExceptionTypeInvalidBreakPoint:
		decision := exceptionDecision{
			crashDump: crashDumpAnyChance,
			warnings:  []string{"It seems there is an assertion failure or you call DebugBreak() in your program."},
		}
		if cfg.StopOnAssert {
			decision.warnings = append(decision.warnings, "Stop on assertion.")
			decision.disposition = Disposition{ContinueStatus: statusPtr(ContinueStatusExceptionNotHandled)}
		} else {
			decision.disposition = Disposition{
				ExitCode:       exitCodePtr(ExceptionBreakpoint),
				ContinueStatus: statusPtr(ContinueStatusContinue),
			}
		}
		return decision, nil

	case ExceptionTypeNotHandled, ExceptionTypeError:
		return exceptionDecision{
			crashDump:   crashDumpLastChance,
			disposition: Disposition{ContinueStatus: statusPtr(ContinueStatusExceptionNotHandled)},
		}, nil

	case ExceptionTypeCppError:
		decision := exceptionDecision{crashDump: crashDumpLastChance}
		if cfg.ContinueAfterCppException {
			decision.warnings = []string{"Continue after a C++ exception."}
			decision.disposition = Disposition{
				ExitCode:       exitCodePtr(exceptionCode),
				ContinueStatus: statusPtr(ContinueStatusContinue),
			}
		} else {
			decision.disposition = Disposition{ContinueStatus: statusPtr(ContinueStatusExceptionNotHandled)}
		}
		return decision, nil

	default:
		return exceptionDecision{}, fmt.Errorf("%w: %s", ErrInvalidExceptionType, verdict)
	}
}

// shouldDump tells whether a crash dump must be written for an exception with the given chance.
func (p crashDumpPolicy) shouldDump(cfg Config, firstChance bool) bool {
	if !cfg.DumpOnCrash {
		return false
	}

	switch p {
	case crashDumpAnyChance:
		return true
	case crashDumpLastChance:
		return !firstChance
	default:
		return false
	}
}

func statusPtr(cs ContinueStatus) *ContinueStatus {
	return &cs
}

// Exception codes are NTSTATUS values; the exit code is their two's complement reinterpretation.
func exitCodePtr(code uint32) *int32 {
	exitCode := int32(code)
	return &exitCode
}
