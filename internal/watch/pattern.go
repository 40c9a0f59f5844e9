// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watch

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternMatcher handles include and exclude glob pattern matching for file paths.
// It uses doublestar for extended glob pattern support including ** for recursive matching.
type PatternMatcher struct {
	includePatterns []string
	excludePatterns []string
}

// NewPatternMatcher creates a pattern matcher. Patterns use doublestar
// syntax:
//   - * matches any sequence of non-path-separators
//   - ** matches any sequence of characters including path separators
//   - ? matches a single non-path-separator character
//   - {a,b} matches either alternative
//
// If includePatterns is empty, all files are included.
// excludePatterns are applied after includePatterns.
func NewPatternMatcher(includePatterns, excludePatterns []string) (*PatternMatcher, error) {
	for _, pattern := range includePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	for _, pattern := range excludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return &PatternMatcher{
		includePatterns: includePatterns,
		excludePatterns: excludePatterns,
	}, nil
}

// Match returns true if the path matches the include patterns and doesn't
// match any exclude patterns. path should be relative to the search root.
func (pm *PatternMatcher) Match(path string) bool {
	return pm.Included(path) && !pm.Excluded(path)
}

// Included reports whether path matches an include pattern.
func (pm *PatternMatcher) Included(path string) bool {
	if len(pm.includePatterns) == 0 {
		return true
	}
	for _, pattern := range pm.includePatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// Excluded reports whether path matches an exclude pattern. It also works
// for directories, so a walk can skip excluded subtrees.
func (pm *PatternMatcher) Excluded(path string) bool {
	for _, pattern := range pm.excludePatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern tries the pattern against the slash-separated path and
// against the base filename.
func matchPattern(pattern, path string) bool {
	if matched, _ := doublestar.Match(pattern, filepath.ToSlash(path)); matched {
		return true
	}
	if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	return false
}

// DefaultExcludePatterns returns common editor temporary files, system
// files and VCS directories that should never be migrated or watched.
func DefaultExcludePatterns() []string {
	return []string{
		// Vim
		"*.swp",
		"*.swo",
		"*.swn",
		".*.sw?",
		// Emacs
		"*~",
		"#*#",
		".#*",
		// System files
		".DS_Store",
		"Thumbs.db",
		// IDE and VCS directories
		"**/.idea/**",
		"**/.vscode/**",
		"**/.git/**",
		"*.tmp",
		"*.temp",
	}
}
