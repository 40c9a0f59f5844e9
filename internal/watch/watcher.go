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
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tombee/exprmigrate/internal/log"
	"golang.org/x/time/rate"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a change must settle before it is delivered.
	Debounce time.Duration

	// MaxRunsPerSecond caps how often the handler runs. Bursts of one.
	MaxRunsPerSecond float64

	// Filter selects the files whose changes matter. Nil accepts all files.
	Filter func(path string) bool

	// Exclude skips directories during the recursive walk. May be nil.
	Exclude *PatternMatcher

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler is called with each settled batch of events.
type Handler func(ctx context.Context, events []Event)

// Watcher watches directory trees and calls a Handler with debounced,
// rate-limited batches of file events.
type Watcher struct {
	roots   []string
	opts    Options
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a watcher over the given directories, recursively.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %v", opts.Debounce)
	}
	if opts.MaxRunsPerSecond <= 0 {
		return nil, fmt.Errorf("max runs per second must be positive, got %v", opts.MaxRunsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		watcher: fsw,
		limiter: rate.NewLimiter(rate.Limit(opts.MaxRunsPerSecond), 1),
		logger:  log.WithComponent(logger, "watch"),
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := w.addTree(abs); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
		w.roots = append(w.roots, abs)
	}

	return w, nil
}

// Roots returns the absolute root directories being watched.
func (w *Watcher) Roots() []string {
	return w.roots
}

// addTree adds dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.opts.Exclude != nil {
			rel, relErr := filepath.Rel(dir, path)
			if relErr == nil && w.opts.Exclude.Excluded(rel) {
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching directory", slog.String("dir", path))
		return nil
	})
}

// Run delivers batches to handle until ctx is cancelled. Pending events are
// dropped on shutdown. The handler never runs concurrently with itself.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.watcher.Close()

	batches := make(chan []Event)
	debouncer := NewDebouncer(w.opts.Debounce, func(events []Event) {
		select {
		case batches <- events:
		case <-ctx.Done():
		}
	})
	defer func() {
		if dropped := debouncer.Stop(); dropped > 0 {
			w.logger.Debug("dropped pending events", slog.Int("count", dropped))
		}
	}()

	w.logger.Info("file watcher started", slog.Any("roots", w.roots))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher event channel closed")
			}
			if ev, ok := w.translate(event); ok {
				debouncer.Add(ev)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher error channel closed")
			}
			w.logger.Error("file watcher error", log.Error(err))

		case events := <-batches:
			if err := w.limiter.Wait(ctx); err != nil {
				w.logger.Info("file watcher stopped")
				return nil
			}
			w.logger.Debug("delivering changes", slog.Int("count", len(events)))
			handle(ctx, events)
		}
	}
}

// translate turns an fsnotify event into an Event, watching new
// directories as they appear. It returns false for events to ignore.
func (w *Watcher) translate(event fsnotify.Event) (Event, bool) {
	op := opName(event.Op)
	if op == "" {
		return Event{}, false
	}

	isDir := false
	if op == OpCreated {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			isDir = true
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", slog.String("dir", event.Name), log.Error(err))
			}
		}
	}
	if isDir {
		return Event{}, false
	}

	if w.opts.Exclude != nil && w.opts.Exclude.Excluded(event.Name) {
		w.logger.Debug("ignoring excluded file", slog.String(log.FileKey, event.Name))
		return Event{}, false
	}
	if w.opts.Filter != nil && !w.opts.Filter(event.Name) {
		w.logger.Debug("ignoring unrelated file", slog.String(log.FileKey, event.Name))
		return Event{}, false
	}

	w.logger.Debug("file event", slog.String("op", op), slog.String(log.FileKey, event.Name))
	return NewEvent(event.Name, op, false), true
}
