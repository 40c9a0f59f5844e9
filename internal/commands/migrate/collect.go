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

package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tombee/exprmigrate/internal/watch"
	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
	"github.com/tombee/exprmigrate/pkg/trigger"
)

// isGlob reports whether input contains glob syntax.
func isGlob(input string) bool {
	return strings.ContainsAny(input, "*?[{")
}

// collect expands inputs into a sorted list of trigger document paths.
// Directories are walked and filtered by matcher; globs are expanded and
// filtered by the exclude patterns only; plain files are taken as given.
func collect(inputs []string, matcher *watch.PatternMatcher) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, input := range inputs {
		if isGlob(input) {
			matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly())
			if err != nil {
				return nil, &pkgerrors.ValidationError{
					Field:      "path",
					Message:    "invalid pattern " + input + ": " + err.Error(),
					Suggestion: "patterns use doublestar syntax, e.g. alerts/**/*.trigger.yaml",
				}
			}
			for _, m := range matches {
				if !matcher.Excluded(m) {
					add(m)
				}
			}
			continue
		}

		info, err := os.Stat(input)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &pkgerrors.NotFoundError{Resource: "path", ID: input}
			}
			return nil, err
		}

		if !info.IsDir() {
			add(input)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(input, path)
			if err != nil {
				return err
			}
			if d.IsDir() {
				if rel != "." && matcher.Excluded(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher.Match(rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// watchRoots returns the directories to watch for inputs.
func watchRoots(inputs []string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, input := range inputs {
		var root string
		switch {
		case isGlob(input):
			base, _ := doublestar.SplitPattern(filepath.ToSlash(input))
			root = filepath.FromSlash(base)
		default:
			if info, err := os.Stat(input); err == nil && info.IsDir() {
				root = input
			} else {
				root = filepath.Dir(input)
			}
		}
		root = filepath.Clean(root)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)
	return roots
}

// isTriggerDocument reports whether path has a trigger document extension.
func isTriggerDocument(path string) bool {
	_, err := trigger.FormatFromPath(path)
	return err == nil
}
