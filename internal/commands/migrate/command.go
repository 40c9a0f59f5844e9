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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tombee/exprmigrate/internal/commands/completion"
	"github.com/tombee/exprmigrate/internal/commands/shared"
	"github.com/tombee/exprmigrate/internal/config"
	"github.com/tombee/exprmigrate/internal/log"
	"github.com/tombee/exprmigrate/internal/watch"
	"github.com/tombee/exprmigrate/pkg/expression"
)

// Run modes.
const (
	ModeReport = "report"
	ModeWrite  = "write"
	ModeCheck  = "check"
)

type options struct {
	write bool
	check bool
	watch bool
}

func (o options) mode() string {
	switch {
	case o.write:
		return ModeWrite
	case o.check:
		return ModeCheck
	default:
		return ModeReport
	}
}

func (o options) validate() error {
	if o.check && (o.write || o.watch) {
		return shared.NewInvalidInputError("--check cannot be combined with --write or --watch", nil)
	}
	return nil
}

// NewCommand creates the migrate command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "migrate [path|glob...]",
		Short: "Convert legacy expressions in trigger documents",
		Long: `Migrate loads trigger documents, converts every legacy
"STATE if CONDITION else STATE" expression to the ternary syntax and reports
what changed.

Arguments may be files, directories or doublestar globs. Directories are
searched with the configured include patterns. With no arguments the current
directory is searched.

Nothing is written unless --write is given. A document is only written when
every trigger in it converted cleanly.

Exit codes:
  0  success
  1  one or more triggers could not be converted
  2  invalid input, config or document
  3  legacy expressions found (--check)

See also: exprmigrate translate`,
		Example: `  # Report what would change
  exprmigrate migrate alerts/

  # Rewrite documents in place
  exprmigrate migrate --write 'alerts/**/*.trigger.yaml'

  # Fail CI when legacy expressions remain
  exprmigrate migrate --check

  # Keep converting while editing
  exprmigrate migrate --watch --write alerts/`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		ValidArgsFunction: completion.CompleteTriggerDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Save converted documents in place")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Exit with code 3 if any legacy expression is found")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run when trigger documents change")

	return cmd
}

// session holds everything a run needs.
type session struct {
	inputs   []string
	matcher  *watch.PatternMatcher
	migrator *Migrator
	logger   *slog.Logger
	mode     string
}

func runMigrate(cmd *cobra.Command, args []string, opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())

	s, err := newSession(cfg, args, opts, logger)
	if err != nil {
		return err
	}

	if opts.watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.watch(ctx, cfg.Watch, cmd)
	}

	report, err := s.run()
	if err != nil {
		return err
	}
	if err := s.print(cmd, report); err != nil {
		return err
	}
	return s.exitError(report)
}

func newSession(cfg *config.Config, args []string, opts options, logger *slog.Logger) (*session, error) {
	exclude := append(append([]string(nil), cfg.Migrate.Exclude...), watch.DefaultExcludePatterns()...)
	matcher, err := watch.NewPatternMatcher(cfg.Migrate.Include, exclude)
	if err != nil {
		return nil, shared.NewInvalidInputError("building path patterns", err)
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	m := &Migrator{Logger: logger, Write: opts.write}
	if cfg.Migrate.VerifyTarget {
		m.Checker = expression.NewChecker()
	}

	return &session{
		inputs:   inputs,
		matcher:  matcher,
		migrator: m,
		logger:   logger,
		mode:     opts.mode(),
	}, nil
}

// run collects the documents and migrates them. Only input errors are
// returned; per-document problems are in the report.
func (s *session) run() (*Report, error) {
	paths, err := collect(s.inputs, s.matcher)
	if err != nil {
		return nil, shared.NewInvalidInputError("", err)
	}
	if len(paths) == 0 {
		s.logger.Warn("no trigger documents found", slog.Any("inputs", s.inputs))
	}
	return s.migrator.Run(paths), nil
}

func (s *session) print(cmd *cobra.Command, report *Report) error {
	if shared.GetJSON() {
		return writeJSON(cmd.OutOrStdout(), s.mode, report, s.exitError(report) == nil)
	}
	writeText(cmd.OutOrStdout(), s.mode, report)
	return nil
}

// exitError maps a report to the command's exit status. Invalid documents
// win over failed triggers, which win over --check findings.
func (s *session) exitError(report *Report) error {
	sum := report.Summary
	switch {
	case sum.Invalid > 0:
		return &shared.ExitError{
			Code:    shared.ExitInvalidInput,
			Message: fmt.Sprintf("%d of %d document(s) could not be processed", sum.Invalid, sum.Files),
		}
	case sum.Failed > 0:
		return shared.NewConvertFailedError(fmt.Sprintf("%d trigger(s) could not be converted", sum.Failed), nil)
	case s.mode == ModeCheck && sum.Legacy > 0:
		return shared.NewLegacyFoundError(sum.Legacy)
	}
	return nil
}

// watch runs once and then again after every settled batch of changes
// until ctx is done. Run failures are reported but do not stop watching.
func (s *session) watch(ctx context.Context, wc config.WatchConfig, cmd *cobra.Command) error {
	runLogger := log.NewRunLogger(s.logger)
	runOnce := func(source string) {
		_, _ = runLogger.Handle(&log.Run{Trigger: source, Paths: s.inputs, Mode: s.mode}, func() (log.RunStats, error) {
			report, err := s.run()
			if err != nil {
				return log.RunStats{}, err
			}
			if err := s.print(cmd, report); err != nil {
				return report.RunStats(), err
			}
			return report.RunStats(), nil
		})
	}

	runOnce("manual")

	w, err := watch.New(watchRoots(s.inputs), watch.Options{
		Debounce:         wc.Debounce,
		MaxRunsPerSecond: wc.MaxRunsPerSecond,
		Filter:           isTriggerDocument,
		Exclude:          s.matcher,
		Logger:           s.logger,
	})
	if err != nil {
		return shared.NewInvalidInputError("starting watcher", err)
	}

	err = w.Run(ctx, func(ctx context.Context, events []watch.Event) {
		s.logger.Debug("change batch", slog.Int("events", len(events)))
		runOnce("watch")
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
