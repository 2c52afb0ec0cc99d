/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package coverage

import (
	"strings"

	"github.com/tidwall/match"
)

// WildcardFilter selects paths with include and exclude patterns.
// Patterns are case-insensitive, "*" matches any sequence of characters,
// and a pattern matches if it matches any part of the path.
type WildcardFilter struct {
	include []string
	exclude []string
}

func NewWildcardFilter(include []string, exclude []string) *WildcardFilter {
	return &WildcardFilter{
		include: compilePatterns(include),
		exclude: compilePatterns(exclude),
	}
}

// IsSelected returns true if the path matches an include pattern (or there are none)
// and matches no exclude pattern.
func (f *WildcardFilter) IsSelected(path string) bool {
	p := normalizePattern(path, false)

	if len(f.include) > 0 && !matchesAny(p, f.include) {
		return false
	}
	return !matchesAny(p, f.exclude)
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if match.Match(path, pattern) {
			return true
		}
	}
	return false
}

func compilePatterns(patterns []string) []string {
	compiled := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		compiled = append(compiled, "*"+normalizePattern(p, true)+"*")
	}
	return compiled
}

// Lower-cases the text and turns backslashes into forward slashes, so that Windows paths
// do not collide with the matcher escape character. In patterns, "?" is matched literally.
func normalizePattern(s string, isPattern bool) string {
	s = strings.ToLower(strings.ReplaceAll(s, `\`, "/"))
	if isPattern {
		s = strings.ReplaceAll(s, "?", `\?`)
	}
	return s
}
