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

package log

import (
	"context"
	"log/slog"
	"time"
)

// Run describes one migration pass for logging purposes.
type Run struct {
	// Trigger is what started the run: "manual" or "watch".
	Trigger string

	// Paths are the inputs the run was asked to process.
	Paths []string

	// Mode is "report", "write" or "check".
	Mode string
}

// RunStats summarizes a finished run.
type RunStats struct {
	Files     int
	Converted int
	Unchanged int
	Failed    int
}

// LogRunStart logs the beginning of a migration run.
func LogRunStart(logger *slog.Logger, run *Run) {
	logger.Info("migration run started",
		EventKey, "run_start",
		"source", run.Trigger,
		"mode", run.Mode,
		"inputs", len(run.Paths),
	)
}

// LogRunResult logs the outcome of a migration run.
func LogRunResult(logger *slog.Logger, run *Run, stats RunStats, duration time.Duration, err error) {
	attrs := []any{
		EventKey, "run_end",
		"source", run.Trigger,
		"mode", run.Mode,
		"files", stats.Files,
		"converted", stats.Converted,
		"unchanged", stats.Unchanged,
		"failed", stats.Failed,
		DurationKey, duration.Milliseconds(),
	}

	level := slog.LevelInfo
	message := "migration run completed"
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		level = slog.LevelError
		message = "migration run failed"
	} else if stats.Failed > 0 {
		level = slog.LevelWarn
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// RunLogger wraps migration runs with start and result logging.
type RunLogger struct {
	logger *slog.Logger
}

// NewRunLogger creates a RunLogger.
func NewRunLogger(logger *slog.Logger) *RunLogger {
	return &RunLogger{logger: logger}
}

// Handle runs fn and logs it. The stats and error from fn are returned
// unchanged.
func (r *RunLogger) Handle(run *Run, fn func() (RunStats, error)) (RunStats, error) {
	start := time.Now()
	LogRunStart(r.logger, run)

	stats, err := fn()

	LogRunResult(r.logger, run, stats, time.Since(start), err)
	return stats, err
}
