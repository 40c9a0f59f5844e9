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
	"log/slog"

	"github.com/tombee/exprmigrate/internal/commands/shared"
	"github.com/tombee/exprmigrate/internal/log"
	"github.com/tombee/exprmigrate/pkg/expression"
	"github.com/tombee/exprmigrate/pkg/trigger"
)

// Trigger statuses.
const (
	StatusConverted = "converted"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
)

// TriggerReport is the outcome for one trigger.
type TriggerReport struct {
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	Legacy     bool              `json:"legacy"`
	Original   string            `json:"original,omitempty"`
	Expression string            `json:"expression,omitempty"`
	Error      *shared.JSONError `json:"error,omitempty"`
}

// FileReport is the outcome for one trigger document.
type FileReport struct {
	Path     string            `json:"path"`
	Format   string            `json:"format,omitempty"`
	Triggers []TriggerReport   `json:"triggers"`
	Written  bool              `json:"written"`
	Error    *shared.JSONError `json:"error,omitempty"`
}

// Summary totals a run.
type Summary struct {
	Files     int `json:"files"`
	Converted int `json:"converted"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Legacy    int `json:"legacy"`
	Written   int `json:"written"`
	// Invalid counts documents that could not be loaded or saved.
	Invalid int `json:"invalid"`
}

// Report is the outcome of a run.
type Report struct {
	Files   []FileReport `json:"files"`
	Summary Summary      `json:"summary"`
}

// Migrator converts the legacy expressions in trigger documents.
type Migrator struct {
	// Checker, when set, verifies converted expressions in the target engine.
	Checker *expression.Checker
	Logger  *slog.Logger

	// Write saves documents whose expressions changed. Documents with a
	// failed trigger are never written.
	Write bool
}

// Run migrates every document in paths.
func (m *Migrator) Run(paths []string) *Report {
	report := &Report{Files: make([]FileReport, 0, len(paths))}
	for _, path := range paths {
		fr := m.migrateFile(path)
		report.add(fr)
	}
	return report
}

func (r *Report) add(fr FileReport) {
	r.Files = append(r.Files, fr)
	r.Summary.Files++
	if fr.Error != nil {
		r.Summary.Invalid++
	}
	if fr.Written {
		r.Summary.Written++
	}
	for _, tr := range fr.Triggers {
		switch tr.Status {
		case StatusConverted:
			r.Summary.Converted++
		case StatusUnchanged:
			r.Summary.Unchanged++
		case StatusFailed:
			r.Summary.Failed++
		}
		if tr.Legacy {
			r.Summary.Legacy++
		}
	}
}

// RunStats converts the summary for run logging.
func (r *Report) RunStats() log.RunStats {
	return log.RunStats{
		Files:     r.Summary.Files,
		Converted: r.Summary.Converted,
		Unchanged: r.Summary.Unchanged,
		Failed:    r.Summary.Failed + r.Summary.Invalid,
	}
}

func (m *Migrator) migrateFile(path string) FileReport {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = log.WithFile(logger, path)
	fr := FileReport{Path: path, Triggers: []TriggerReport{}}

	doc, err := trigger.Load(path)
	if err != nil {
		logger.Error("cannot load trigger document", log.Error(err))
		fr.Error = shared.NewJSONError(err)
		return fr
	}
	fr.Format = string(doc.Format)

	normalizer := &trigger.Normalizer{Logger: logger, Checker: m.Checker}

	changed, failed := false, false
	for _, t := range doc.Triggers {
		candidate := t.Clone()
		change, err := normalizer.Normalize(candidate)

		tr := TriggerReport{
			Name:     t.Name,
			Legacy:   change.Legacy,
			Original: change.Original,
		}
		switch {
		case err != nil:
			failed = true
			tr.Status = StatusFailed
			tr.Error = shared.NewJSONError(err)
			logger.Warn("trigger not migrated", slog.String(log.TriggerKey, t.Name), log.Error(err))
		case change.Changed():
			changed = true
			tr.Status = StatusConverted
			tr.Expression = change.Expression
			t.Expression = change.Expression
		default:
			tr.Status = StatusUnchanged
			tr.Expression = change.Expression
		}
		fr.Triggers = append(fr.Triggers, tr)
	}

	if !m.Write || !changed {
		return fr
	}
	if failed {
		logger.Warn("document has failed triggers, not writing")
		return fr
	}
	if err := trigger.Save(doc); err != nil {
		logger.Error("cannot save trigger document", log.Error(err))
		fr.Error = shared.NewJSONError(err)
		return fr
	}
	fr.Written = true
	logger.Info("trigger document written")
	return fr
}
