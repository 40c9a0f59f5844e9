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

// Package watch re-runs work when trigger documents change on disk.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Event operations.
const (
	OpCreated  = "created"
	OpModified = "modified"
	OpDeleted  = "deleted"
	OpRenamed  = "renamed"
)

// Event is a settled change to one file.
type Event struct {
	// Path is the absolute path of the file.
	Path string `json:"path"`

	// Name is the filename without directory component.
	Name string `json:"name"`

	// Op is created, modified, deleted or renamed.
	Op string `json:"op"`

	// IsDir indicates whether the event is for a directory.
	IsDir bool `json:"is_dir"`
}

// NewEvent creates an event for path.
func NewEvent(path, op string, isDir bool) Event {
	return Event{
		Path:  path,
		Name:  filepath.Base(path),
		Op:    op,
		IsDir: isDir,
	}
}

// opName maps an fsnotify operation to an event operation. Chmod-only
// events return "".
func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreated
	case op.Has(fsnotify.Write):
		return OpModified
	case op.Has(fsnotify.Remove):
		return OpDeleted
	case op.Has(fsnotify.Rename):
		return OpRenamed
	default:
		return ""
	}
}
