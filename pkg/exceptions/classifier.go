/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package exceptions

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/microsoft/covdbg/pkg/debugger"
)

// BreakpointOwner claims breakpoints that were set on purpose in the traced process,
// for example by line instrumentation.
type BreakpointOwner interface {
	OwnsBreakpoint(process debugger.Handle, address uintptr) bool
}

type loaderBreakpoint struct {
	process debugger.Handle
	code    uint32
}

// Classifier turns exceptions raised by traced processes into exception verdicts.
// Not safe for concurrent use; it is driven by the debug loop.
type Classifier struct {
	log   logr.Logger
	owner BreakpointOwner

	// Loader breakpoints already seen, per process. A WOW64 process raises one native
	// and one x86 loader breakpoint.
	loaderBreakpoints map[loaderBreakpoint]struct{}
}

// NewClassifier creates a classifier. The owner may be nil.
func NewClassifier(log logr.Logger, owner BreakpointOwner) *Classifier {
	return &Classifier{
		log:               log.WithName("ExceptionClassifier"),
		owner:             owner,
		loaderBreakpoints: map[loaderBreakpoint]struct{}{},
	}
}

func (c *Classifier) Classify(process debugger.Handle, info debugger.ExceptionInfo) debugger.ExceptionType {
	code := info.Record.Code

	if isBreakpoint(code) {
		key := loaderBreakpoint{process: process, code: code}
		if _, seen := c.loaderBreakpoints[key]; !seen {
			c.loaderBreakpoints[key] = struct{}{}
			c.log.V(1).Info("Loader breakpoint", "Address", fmt.Sprintf("0x%X", info.Record.Address))
			return debugger.ExceptionTypeBreakPoint
		}
		if c.owner != nil && c.owner.OwnsBreakpoint(process, info.Record.Address) {
			return debugger.ExceptionTypeBreakPoint
		}
		return debugger.ExceptionTypeInvalidBreakPoint
	}

	if info.FirstChance {
		return debugger.ExceptionTypeNotHandled
	}

	if code == CppExceptionCode {
		c.log.Info("Unhandled C++ exception", "Address", fmt.Sprintf("0x%X", info.Record.Address))
		return debugger.ExceptionTypeCppError
	}

	c.log.Info("Unhandled exception",
		"Exception", Name(code),
		"Code", fmt.Sprintf("0x%08X", code),
		"Address", fmt.Sprintf("0x%X", info.Record.Address),
	)
	return debugger.ExceptionTypeError
}

// ForgetProcess drops the state kept for an exited process. Process handles may be reused afterwards.
func (c *Classifier) ForgetProcess(process debugger.Handle) {
	for key := range c.loaderBreakpoints {
		if key.process == process {
			delete(c.loaderBreakpoints, key)
		}
	}
}
