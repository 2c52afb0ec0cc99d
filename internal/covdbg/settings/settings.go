/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package settings holds the configuration of a coverage run.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/microsoft/covdbg/pkg/coverage"
	"github.com/microsoft/covdbg/pkg/debugger"
	"github.com/microsoft/covdbg/pkg/osutil"
)

const (
	DefaultMaxUnmatchedPathsForWarning = 20
)

type StartInfo struct {
	Program          string   `yaml:"program"`
	Arguments        []string `yaml:"arguments,omitempty"`
	WorkingDirectory string   `yaml:"workingDirectory,omitempty"`
}

type UnifiedDiff struct {
	Path       string `yaml:"path"`
	RootFolder string `yaml:"rootFolder,omitempty"`
}

type Patterns struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Settings describes a coverage run: what to start, how to trace it, and what to select.
type Settings struct {
	StartInfo                   StartInfo     `yaml:"startInfo"`
	CoverChildren               bool          `yaml:"coverChildren"`
	ContinueAfterCppException   bool          `yaml:"continueAfterCppException"`
	StopOnAssert                bool          `yaml:"stopOnAssert"`
	DumpOnCrash                 bool          `yaml:"dumpOnCrash"`
	DumpDirectory               string        `yaml:"dumpDirectory,omitempty"`
	Modules                     Patterns      `yaml:"modules,omitempty"`
	Sources                     Patterns      `yaml:"sources,omitempty"`
	UnifiedDiffs                []UnifiedDiff `yaml:"unifiedDiffs,omitempty"`
	MaxUnmatchedPathsForWarning int           `yaml:"maxUnmatchedPathsForWarning"`
}

func Default() Settings {
	return Settings{
		MaxUnmatchedPathsForWarning: DefaultMaxUnmatchedPathsForWarning,
	}
}

// LoadFile reads settings from a YAML file. Fields missing from the file keep their default values.
func LoadFile(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("cannot read settings file: %w", err)
	}

	s, err := Parse(bytes.NewReader(content))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

func Parse(r io.Reader) (Settings, error) {
	s := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings and creates the dump directory if needed.
func (s *Settings) Validate() error {
	if s.StartInfo.Program == "" {
		return errors.New("a program to run is required")
	}
	if s.MaxUnmatchedPathsForWarning < 0 {
		return fmt.Errorf("the maximum number of unmatched paths must not be negative, got %d", s.MaxUnmatchedPathsForWarning)
	}
	for _, d := range s.UnifiedDiffs {
		if d.Path == "" {
			return errors.New("a unified diff path is required")
		}
	}

	if s.DumpOnCrash {
		if s.DumpDirectory == "" {
			return debugger.ErrDumpDirectoryRequired
		}
		dumpDir, err := filepath.Abs(s.DumpDirectory)
		if err != nil {
			return err
		}
		if err = osutil.EnsureDirectory(dumpDir); err != nil {
			return fmt.Errorf("cannot create dump directory: %w", err)
		}
		s.DumpDirectory = dumpDir
	}

	return nil
}

func (s *Settings) DebuggerConfig() debugger.Config {
	return debugger.Config{
		CoverChildren:             s.CoverChildren,
		ContinueAfterCppException: s.ContinueAfterCppException,
		StopOnAssert:              s.StopOnAssert,
		DumpOnCrash:               s.DumpOnCrash,
		DumpDirectory:             s.DumpDirectory,
	}
}

func (s *Settings) DebuggerStartInfo() debugger.StartInfo {
	return debugger.StartInfo{
		Path:             s.StartInfo.Program,
		Args:             s.StartInfo.Arguments,
		WorkingDirectory: s.StartInfo.WorkingDirectory,
	}
}

func (s *Settings) FilterSettings() coverage.FilterSettings {
	return coverage.FilterSettings{
		ModuleIncludes: s.Modules.Include,
		ModuleExcludes: s.Modules.Exclude,
		SourceIncludes: s.Sources.Include,
		SourceExcludes: s.Sources.Exclude,
	}
}

// LoadUnifiedDiffFilters reads every configured unified diff.
func (s *Settings) LoadUnifiedDiffFilters() ([]*coverage.UnifiedDiffFilter, error) {
	filters := make([]*coverage.UnifiedDiffFilter, 0, len(s.UnifiedDiffs))
	for _, d := range s.UnifiedDiffs {
		f, err := coverage.LoadUnifiedDiffFilter(d.Path, d.RootFolder)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
