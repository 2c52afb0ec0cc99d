/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package main

import (
	"context"
	"errors"
	"os"

	"github.com/microsoft/covdbg/internal/covdbg/commands"
	"github.com/microsoft/covdbg/pkg/logger"
	"github.com/microsoft/covdbg/pkg/osutil"
	"github.com/microsoft/covdbg/pkg/resiliency"
)

const (
	errCommandError = 1
	errSetup        = 2
	errPanic        = 3
)

func main() {
	log := logger.New("covdbg").WithName("covdbg")

	defer func() {
		panicErr := resiliency.MakePanicError(recover(), log.Logger)
		if panicErr != nil {
			os.Stderr.WriteString(panicErr.Error() + string(osutil.LineSep()))
			log.Flush()
			os.Exit(errPanic)
		}
	}()

	ctx := context.Background()

	root, err := commands.NewRootCmd(log)
	if err != nil {
		commands.ErrorExit(log, err, errSetup)
	}

	err = root.ExecuteContext(ctx)
	var exitErr *commands.DebuggeeExitError
	switch {
	case errors.As(err, &exitErr):
		log.V(1).Info("Program exited", "ExitCode", exitErr.ExitCode)
		log.Flush()
		os.Exit(int(exitErr.ExitCode))
	case err != nil:
		commands.ErrorExit(log, err, errCommandError)
	default:
		log.Flush()
	}
}
