/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package resiliency

import (
	"fmt"
	"runtime/debug"

	"github.com/go-logr/logr"
)

// Converts a recovered panic value into an error and logs it together with the call stack.
// Returns nil if there was no panic.
func MakePanicError(panicVal any, log logr.Logger) error {
	if panicVal == nil {
		return nil
	}

	panicErr, isError := panicVal.(error)
	if !isError {
		panicErr = fmt.Errorf("panic: %v", panicVal)
	}

	log.Error(panicErr, "The debugger ended prematurely due to panic", "Stack", string(debug.Stack()))

	return panicErr
}
