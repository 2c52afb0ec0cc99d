/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"
	"os"

	"github.com/microsoft/covdbg/pkg/logger"
	"github.com/microsoft/covdbg/pkg/osutil"
)

// DebuggeeExitError is returned by the run command when the traced program exited with a non-zero code.
// The tool exits with the same code.
type DebuggeeExitError struct {
	ExitCode int32
}

func (e *DebuggeeExitError) Error() string {
	return fmt.Sprintf("the program exited with code %d (0x%08X)", e.ExitCode, uint32(e.ExitCode))
}

// ErrorExit reports a command failure and terminates the process.
func ErrorExit(log *logger.Logger, err error, exitCode int) {
	log.Error(err, "covdbg failed")
	_, _ = os.Stderr.WriteString(err.Error() + string(osutil.LineSep()))
	log.Flush()
	os.Exit(exitCode)
}
