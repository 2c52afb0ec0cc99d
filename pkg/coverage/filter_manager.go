/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package coverage

import (
	"fmt"
	"slices"
)

// FilterSettings holds the wildcard patterns for modules and source files.
type FilterSettings struct {
	ModuleIncludes []string
	ModuleExcludes []string
	SourceIncludes []string
	SourceExcludes []string
}

// FilterManager combines the wildcard filters with the unified diff filters.
type FilterManager struct {
	modules     *WildcardFilter
	sources     *WildcardFilter
	diffFilters []*UnifiedDiffFilter
}

const (
	separatorLine = "----------------------------------------------------"

	// Debug verbosity lifts the cap on listed paths.
	listAllPathsHint = "To see all files use --verbosity=debug"
)

func NewFilterManager(settings FilterSettings, diffFilters []*UnifiedDiffFilter) *FilterManager {
	return &FilterManager{
		modules:     NewWildcardFilter(settings.ModuleIncludes, settings.ModuleExcludes),
		sources:     NewWildcardFilter(settings.SourceIncludes, settings.SourceExcludes),
		diffFilters: diffFilters,
	}
}

func (fm *FilterManager) IsModuleSelected(filename string) bool {
	return fm.modules.IsSelected(filename)
}

// IsSourceFileSelected requires the wildcard filter and, if there are diff filters, at least one of them.
func (fm *FilterManager) IsSourceFileSelected(filename string) bool {
	if !fm.sources.IsSelected(filename) {
		return false
	}
	if len(fm.diffFilters) == 0 {
		return true
	}

	// Every diff filter is asked so that all of them see the file as matched.
	selected := false
	for _, f := range fm.diffFilters {
		if f.IsSourceFileSelected(filename) {
			selected = true
		}
	}
	return selected
}

// IsLineSelected maps the line to itself if it is executable, otherwise to the closest preceding
// executable line, and asks the diff filters about that line. executableLines must be sorted.
func (fm *FilterManager) IsLineSelected(filename string, line int, executableLines []int) bool {
	if len(fm.diffFilters) == 0 {
		return true
	}

	executableLine, found := executableLineOrPreviousOne(line, executableLines)
	if !found {
		return false
	}

	return slices.ContainsFunc(fm.diffFilters, func(f *UnifiedDiffFilter) bool {
		return f.IsLineSelected(filename, executableLine)
	})
}

func executableLineOrPreviousOne(line int, executableLines []int) (int, bool) {
	i, found := slices.BinarySearch(executableLines, line)
	if found {
		return line, true
	}
	if i == 0 {
		return 0, false
	}
	return executableLines[i-1], true
}

// ComputeWarningMessageLines describes the diff paths that never matched a source file.
// At most maxUnmatchedPaths paths are listed.
func (fm *FilterManager) ComputeWarningMessageLines(maxUnmatchedPaths int) []string {
	unmatched := map[string]struct{}{}
	for _, f := range fm.diffFilters {
		for _, p := range f.UnmatchedPaths() {
			unmatched[p] = struct{}{}
		}
	}
	if len(unmatched) == 0 {
		return nil
	}

	paths := make([]string, 0, len(unmatched))
	for p := range unmatched {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	lines := []string{
		separatorLine,
		fmt.Sprintf("You have %d path(s) inside unified diff file(s) that were ignored", len(paths)),
		"because they did not match any path from pdb files.",
		listAllPathsHint,
	}
	for i, p := range paths {
		if i >= maxUnmatchedPaths {
			lines = append(lines, "\t...")
			break
		}
		lines = append(lines, "\t- "+p)
	}
	return lines
}
