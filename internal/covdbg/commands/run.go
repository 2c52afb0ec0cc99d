/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/microsoft/covdbg/internal/covdbg/settings"
	"github.com/microsoft/covdbg/pkg/coverage"
	"github.com/microsoft/covdbg/pkg/dbgapi"
	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/exceptions"
	"github.com/microsoft/covdbg/pkg/logger"
)

const (
	configFlag                    = "config"
	workingDirFlag                = "working-dir"
	coverChildrenFlag             = "cover-children"
	continueAfterCppExceptionFlag = "continue-after-cpp-exception"
	stopOnAssertFlag              = "stop-on-assert"
	dumpOnCrashFlag               = "dump-on-crash"
	dumpDirectoryFlag             = "dump-directory"
	modulesFlag                   = "modules"
	excludedModulesFlag           = "excluded-modules"
	sourcesFlag                   = "sources"
	excludedSourcesFlag           = "excluded-sources"
	unifiedDiffFlag               = "unified-diff"
	maxUnmatchedPathsFlag         = "max-unmatched-paths"

	// Separates the diff file from its root folder in the unified diff flag value.
	unifiedDiffRootSeparator = "?"
)

type runFlags struct {
	configFile                string
	workingDir                string
	coverChildren             bool
	continueAfterCppException bool
	stopOnAssert              bool
	dumpOnCrash               bool
	dumpDirectory             string
	modules                   []string
	excludedModules           []string
	sources                   []string
	excludedSources           []string
	unifiedDiffs              []string
	maxUnmatchedPaths         int
}

// Creates the debug API and crash dumper. Replaced in tests.
type debugBackend func(log logr.Logger) (debugger.DebugAPI, debugger.CrashDumper)

func win32Backend(log logr.Logger) (debugger.DebugAPI, debugger.CrashDumper) {
	return dbgapi.NewWin32(log), dbgapi.MiniDumpWriter{}
}

func NewRunCommand(log *logger.Logger) (*cobra.Command, error) {
	return newRunCommand(log, win32Backend), nil
}

func newRunCommand(log *logger.Logger, backend debugBackend) *cobra.Command {
	flags := &runFlags{}

	runCmd := &cobra.Command{
		Use:   "run [flags] [-- program [arguments...]]",
		Short: "Runs a program under the debugger",
		Long: `Runs a program under the debugger and prints the modules selected by the coverage filters.

	The program and its arguments follow "--". They may also come from the settings file.
	covdbg exits with the exit code of the program.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.settings(cmd.Flags(), args)
			if err != nil {
				return err
			}

			maxUnmatchedPaths := s.MaxUnmatchedPathsForWarning
			if log.Level() <= zapcore.DebugLevel {
				maxUnmatchedPaths = math.MaxInt
			}

			api, dumper := backend(log.Logger)
			exitCode, err := runCoverage(cmd.Context(), log.Logger, s, api, dumper, maxUnmatchedPaths, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if exitCode != 0 {
				return &DebuggeeExitError{ExitCode: exitCode}
			}
			return nil
		},
		Args: cobra.ArbitraryArgs,
	}

	fs := runCmd.Flags()
	fs.StringVarP(&flags.configFile, configFlag, "c", "", "Path to a YAML settings file. Command line flags override its values.")
	fs.StringVar(&flags.workingDir, workingDirFlag, "", "Working directory of the program.")
	fs.BoolVar(&flags.coverChildren, coverChildrenFlag, false, "Also trace the child processes of the program.")
	fs.BoolVar(&flags.continueAfterCppException, continueAfterCppExceptionFlag, false, "Keep running after an unhandled C++ exception.")
	fs.BoolVar(&flags.stopOnAssert, stopOnAssertFlag, false, "Let the program handle assertion failures and DebugBreak() calls instead of continuing.")
	fs.BoolVar(&flags.dumpOnCrash, dumpOnCrashFlag, false, "Write a minidump when a traced process crashes.")
	fs.StringVar(&flags.dumpDirectory, dumpDirectoryFlag, "", "Directory for minidumps. Required with --"+dumpOnCrashFlag+".")
	fs.StringArrayVar(&flags.modules, modulesFlag, nil, "Pattern of modules to select (can be repeated, '*' is a wildcard).")
	fs.StringArrayVar(&flags.excludedModules, excludedModulesFlag, nil, "Pattern of modules to exclude (can be repeated).")
	fs.StringArrayVar(&flags.sources, sourcesFlag, nil, "Pattern of source files to select (can be repeated).")
	fs.StringArrayVar(&flags.excludedSources, excludedSourcesFlag, nil, "Pattern of source files to exclude (can be repeated).")
	fs.StringArrayVar(&flags.unifiedDiffs, unifiedDiffFlag, nil, "Unified diff file restricting the selected lines, in the form 'diffFile[?rootFolder]' (can be repeated).")
	fs.IntVar(&flags.maxUnmatchedPaths, maxUnmatchedPathsFlag, settings.DefaultMaxUnmatchedPathsForWarning, "Maximum number of unmatched unified diff paths listed in the warning.")

	return runCmd
}

// Builds the settings from the settings file, then applies the flags that were set explicitly.
func (f *runFlags) settings(fs *pflag.FlagSet, args []string) (settings.Settings, error) {
	s := settings.Default()
	if f.configFile != "" {
		var err error
		if s, err = settings.LoadFile(f.configFile); err != nil {
			return settings.Settings{}, err
		}
	}

	if len(args) > 0 {
		s.StartInfo.Program = args[0]
		s.StartInfo.Arguments = args[1:]
	}
	if fs.Changed(workingDirFlag) {
		s.StartInfo.WorkingDirectory = f.workingDir
	}
	if fs.Changed(coverChildrenFlag) {
		s.CoverChildren = f.coverChildren
	}
	if fs.Changed(continueAfterCppExceptionFlag) {
		s.ContinueAfterCppException = f.continueAfterCppException
	}
	if fs.Changed(stopOnAssertFlag) {
		s.StopOnAssert = f.stopOnAssert
	}
	if fs.Changed(dumpOnCrashFlag) {
		s.DumpOnCrash = f.dumpOnCrash
	}
	if fs.Changed(dumpDirectoryFlag) {
		s.DumpDirectory = f.dumpDirectory
	}
	s.Modules.Include = append(s.Modules.Include, f.modules...)
	s.Modules.Exclude = append(s.Modules.Exclude, f.excludedModules...)
	s.Sources.Include = append(s.Sources.Include, f.sources...)
	s.Sources.Exclude = append(s.Sources.Exclude, f.excludedSources...)
	for _, value := range f.unifiedDiffs {
		diffPath, rootFolder, _ := strings.Cut(value, unifiedDiffRootSeparator)
		s.UnifiedDiffs = append(s.UnifiedDiffs, settings.UnifiedDiff{Path: diffPath, RootFolder: rootFolder})
	}
	if fs.Changed(maxUnmatchedPathsFlag) {
		s.MaxUnmatchedPathsForWarning = f.maxUnmatchedPaths
	}

	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

func runCoverage(
	ctx context.Context,
	log logr.Logger,
	s settings.Settings,
	api debugger.DebugAPI,
	dumper debugger.CrashDumper,
	maxUnmatchedPaths int,
	out io.Writer,
) (int32, error) {
	diffFilters, err := s.LoadUnifiedDiffFilters()
	if err != nil {
		return debugger.UnknownExitCode, err
	}

	filters := coverage.NewFilterManager(s.FilterSettings(), diffFilters)
	recorder := coverage.NewRecorder(log, filters, exceptions.NewClassifier(log, nil))

	d, err := debugger.New(s.DebuggerConfig(), api, dumper, log)
	if err != nil {
		return debugger.UnknownExitCode, err
	}

	exitCode, err := d.Debug(ctx, s.DebuggerStartInfo(), recorder)
	if err != nil {
		return debugger.UnknownExitCode, fmt.Errorf("could not run %s: %w", s.StartInfo.Program, err)
	}

	if err = writeSummary(out, recorder.Summary(), filters.ComputeWarningMessageLines(maxUnmatchedPaths)); err != nil {
		return debugger.UnknownExitCode, err
	}
	return exitCode, nil
}

func writeSummary(out io.Writer, processes []coverage.ProcessSummary, warningLines []string) error {
	var sb strings.Builder

	for _, p := range processes {
		fmt.Fprintf(&sb, "Process %d: %s", p.ProcessId, p.Path)
		if p.ExitCode != nil {
			fmt.Fprintf(&sb, " (exit code %d)", int32(*p.ExitCode))
		}
		sb.WriteString("\n")
		for _, m := range p.Modules {
			fmt.Fprintf(&sb, "\t%s\n", m.Path)
		}
	}
	for _, line := range warningLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}
