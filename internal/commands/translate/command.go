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

package translate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tombee/exprmigrate/internal/commands/shared"
	"github.com/tombee/exprmigrate/pkg/expression"
	"github.com/tombee/exprmigrate/pkg/legacy"
)

// Result is the outcome for one expression.
type Result struct {
	Source string            `json:"source"`
	Target string            `json:"target,omitempty"`
	Error  *shared.JSONError `json:"error,omitempty"`
}

// NewCommand creates the translate command
func NewCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "translate [expression...]",
		Short: "Translate legacy expressions to ternary syntax",
		Long: `Translate converts expressions written in the legacy
"STATE if CONDITION else STATE" syntax to the ternary syntax used by the
alerting engine.

Each argument is one expression. With no arguments and piped input, every
non-blank line of stdin is one expression.

With --verify, every translation is compiled by the target engine before it
is printed.

See also: exprmigrate migrate`,
		Example: `  # Translate one expression
  exprmigrate translate "ERROR if t1>90 else WARN if t1>80 else OK"

  # Translate a list of expressions
  cut -f3 triggers.tsv | exprmigrate translate --verify

  # Machine-readable results
  exprmigrate translate --json "ERROR if t1>0 else OK"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, verify)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Compile each translation with the target engine")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, verify bool) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())

	sources := args
	if len(sources) == 0 {
		if shared.IsTerminal(cmd.InOrStdin()) {
			return shared.NewInvalidInputError("no expressions given", nil)
		}
		sources, err = readLines(cmd.InOrStdin())
		if err != nil {
			return shared.NewInvalidInputError("reading stdin", err)
		}
		if len(sources) == 0 {
			return shared.NewInvalidInputError("no expressions on stdin", nil)
		}
	}

	var checker *expression.Checker
	if verify {
		checker = expression.NewChecker()
	}

	results := make([]Result, 0, len(sources))
	failed := 0
	for _, source := range sources {
		r := translateOne(source, checker)
		if r.Error != nil {
			failed++
			logger.Debug("translation failed", "source", source, "code", r.Error.Code)
		}
		results = append(results, r)
	}

	if shared.GetJSON() {
		resp := struct {
			shared.JSONResponse
			Results []Result `json:"results"`
		}{
			JSONResponse: shared.NewJSONResponse("translate", failed == 0),
			Results:      results,
		}
		if err := shared.EmitJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if failed > 0 {
			return &shared.ExitError{Code: shared.ExitConvertFailed}
		}
		return nil
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintln(errOut, shared.RenderError(r.Error.Message))
			if r.Error.Suggestion != "" && !shared.GetQuiet() {
				fmt.Fprintln(errOut, "  "+shared.Muted.Render(r.Error.Suggestion))
			}
			continue
		}
		fmt.Fprintln(out, r.Target)
	}

	if failed > 0 {
		return shared.NewConvertFailedError(fmt.Sprintf("%d of %d expression(s) could not be translated", failed, len(results)), nil)
	}
	return nil
}

func translateOne(source string, checker *expression.Checker) Result {
	target, err := legacy.Translate(source)
	if err == nil && checker != nil {
		err = checker.Check(target)
	}
	if err != nil {
		return Result{Source: source, Error: shared.NewJSONError(err)}
	}
	return Result{Source: source, Target: target}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
