/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/microsoft/covdbg/pkg/logger"
)

func NewRootCmd(log *logger.Logger) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "covdbg",
		Short: "Runs a program under the debugger and records the modules it loads",
		Long: `covdbg runs a program, and optionally its child processes, under the Windows debugger.

	It records the modules selected by the coverage filters, handles assertion failures and
	unhandled exceptions of the traced processes, can write minidumps when they crash,
	and exits with the exit code of the program.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	log.AddLevelFlag(rootCmd.PersistentFlags())

	var err error
	var cmd *cobra.Command

	if cmd, err = NewRunCommand(log); err != nil {
		return nil, fmt.Errorf("could not set up 'run' command: %w", err)
	}
	rootCmd.AddCommand(cmd)

	if cmd, err = NewVersionCommand(log.Logger); err != nil {
		return nil, fmt.Errorf("could not set up 'version' command: %w", err)
	}
	rootCmd.AddCommand(cmd)

	return rootCmd, nil
}
