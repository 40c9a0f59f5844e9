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

package completion

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tombee/exprmigrate/pkg/trigger"
)

const (
	maxDocumentFiles = 100
	maxSearchDepth   = 2
)

// documentFile is a discovered trigger document.
type documentFile struct {
	path    string
	modTime int64
}

// CompleteTriggerDocuments completes trigger document paths below the
// current directory, at most two levels deep. Only files that load as
// trigger documents are offered, newest first, up to 100 of them.
// Directories still complete through the shell's file completion.
func CompleteTriggerDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		files, err := discoverDocuments(".", maxSearchDepth)
		if err != nil || len(files) == 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}

		sort.Slice(files, func(i, j int) bool {
			if files[i].modTime != files[j].modTime {
				return files[i].modTime > files[j].modTime
			}
			return files[i].path < files[j].path
		})

		var paths []string
		for _, f := range files {
			if len(paths) == maxDocumentFiles {
				break
			}
			if strings.HasPrefix(f.path, toComplete) && !slices.Contains(args, f.path) {
				paths = append(paths, f.path)
			}
		}
		return paths, cobra.ShellCompDirectiveDefault
	})
}

// discoverDocuments walks root up to maxDepth directories deep.
func discoverDocuments(root string, maxDepth int) ([]documentFile, error) {
	var files []documentFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		depth := strings.Count(relPath, string(filepath.Separator))
		if depth > maxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if _, err := trigger.FormatFromPath(path); err != nil {
			return nil
		}
		if !isSafeFile(path) || !isTriggerDocument(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, documentFile{path: path, modTime: info.ModTime().Unix()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// isSafeFile rejects symlinks in the final path component.
func isSafeFile(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink == 0
}

// isTriggerDocument reports whether path decodes as a trigger document
// holding at least one named trigger.
func isTriggerDocument(path string) bool {
	doc, err := trigger.Load(path)
	if err != nil {
		return false
	}
	for _, t := range doc.Triggers {
		if t.Name != "" {
			return true
		}
	}
	return false
}
