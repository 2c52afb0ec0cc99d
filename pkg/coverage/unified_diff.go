/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package coverage

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// DiffFile is a file of the new revision of a unified diff, with the lines the diff adds to it.
type DiffFile struct {
	Path       string
	AddedLines []int
}

const devNull = "/dev/null"

// ParseUnifiedDiff extracts the added lines of every file in a unified diff.
// Deleted files are skipped.
func ParseUnifiedDiff(content []byte) ([]DiffFile, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(content)
	if err != nil {
		return nil, fmt.Errorf("invalid unified diff: %w", err)
	}

	var files []DiffFile
	for _, fd := range fileDiffs {
		newName := diffFileName(fd.NewName)
		if newName == "" || newName == devNull {
			continue
		}

		file := DiffFile{Path: newName}
		for _, hunk := range fd.Hunks {
			file.AddedLines = append(file.AddedLines, addedLines(hunk)...)
		}
		files = append(files, file)
	}

	return files, nil
}

// Strips the "b/" prefix git adds to new file names.
func diffFileName(name string) string {
	name = strings.TrimSpace(name)
	if rest, found := strings.CutPrefix(name, "b/"); found {
		return rest
	}
	return name
}

func addedLines(hunk *diff.Hunk) []int {
	var lines []int
	current := int(hunk.NewStartLine)

	body := strings.TrimSuffix(string(hunk.Body), "\n")
	if body == "" {
		return nil
	}

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			lines = append(lines, current)
			current++
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, `\`):
			// Removed line or "\ No newline at end of file"
		default:
			current++
		}
	}

	return lines
}

// UnifiedDiffFilter selects the source files and lines a unified diff touches.
type UnifiedDiffFilter struct {
	rootFolder string
	files      []*diffFileSelection
}

type diffFileSelection struct {
	path       string
	normalized string
	lines      map[int]struct{}
	matched    bool
}

// LoadUnifiedDiffFilter reads a unified diff file. When rootFolder is set, diff paths are resolved
// against it; otherwise a diff path selects any source file whose path ends with it.
func LoadUnifiedDiffFilter(diffPath string, rootFolder string) (*UnifiedDiffFilter, error) {
	content, err := os.ReadFile(diffPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read unified diff file: %w", err)
	}
	files, err := ParseUnifiedDiff(content)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", diffPath, err)
	}
	return NewUnifiedDiffFilter(files, rootFolder), nil
}

func NewUnifiedDiffFilter(files []DiffFile, rootFolder string) *UnifiedDiffFilter {
	f := &UnifiedDiffFilter{rootFolder: rootFolder}

	for _, file := range files {
		p := file.Path
		if rootFolder != "" {
			p = path.Join(normalizePath(rootFolder), normalizePath(file.Path))
		}

		sel := &diffFileSelection{
			path:       p,
			normalized: strings.ToLower(normalizePath(p)),
			lines:      make(map[int]struct{}, len(file.AddedLines)),
		}
		for _, line := range file.AddedLines {
			sel.lines[line] = struct{}{}
		}
		f.files = append(f.files, sel)
	}

	return f
}

// IsSourceFileSelected reports whether the diff touches the file. Files that get selected
// are no longer reported by UnmatchedPaths.
func (f *UnifiedDiffFilter) IsSourceFileSelected(filename string) bool {
	sel := f.find(filename)
	if sel == nil {
		return false
	}
	sel.matched = true
	return true
}

func (f *UnifiedDiffFilter) IsLineSelected(filename string, line int) bool {
	sel := f.find(filename)
	if sel == nil {
		return false
	}
	_, found := sel.lines[line]
	return found
}

// UnmatchedPaths returns the diff paths that did not match any selected source file, sorted.
func (f *UnifiedDiffFilter) UnmatchedPaths() []string {
	var paths []string
	for _, sel := range f.files {
		if !sel.matched {
			paths = append(paths, sel.path)
		}
	}
	slices.Sort(paths)
	return paths
}

func (f *UnifiedDiffFilter) find(filename string) *diffFileSelection {
	normalized := strings.ToLower(normalizePath(filename))

	for _, sel := range f.files {
		if f.rootFolder != "" {
			if normalized == sel.normalized {
				return sel
			}
			continue
		}
		if normalized == sel.normalized || strings.HasSuffix(normalized, "/"+sel.normalized) {
			return sel
		}
	}
	return nil
}

func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}
