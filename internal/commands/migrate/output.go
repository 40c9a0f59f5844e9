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
	"fmt"
	"io"

	"github.com/tombee/exprmigrate/internal/commands/shared"
)

// jsonReport is the --json envelope.
type jsonReport struct {
	shared.JSONResponse
	Mode    string       `json:"mode"`
	Files   []FileReport `json:"files"`
	Summary Summary      `json:"summary"`
}

func writeJSON(w io.Writer, mode string, report *Report, success bool) error {
	return shared.EmitJSON(w, jsonReport{
		JSONResponse: shared.NewJSONResponse("migrate", success),
		Mode:         mode,
		Files:        report.Files,
		Summary:      report.Summary,
	})
}

// writeText prints one block per document and a closing summary line.
// Unchanged triggers are only listed with --verbose.
func writeText(w io.Writer, mode string, report *Report) {
	verbose := shared.GetVerbose()
	quiet := shared.GetQuiet()

	for _, fr := range report.Files {
		if fr.Error != nil {
			fmt.Fprintln(w, shared.RenderHeader(fr.Path))
			fmt.Fprintln(w, "  "+shared.RenderError(fr.Error.Message))
			if fr.Error.Suggestion != "" && !quiet {
				fmt.Fprintln(w, "    "+shared.Muted.Render(fr.Error.Suggestion))
			}
			continue
		}
		if quiet || !fileHasNews(fr, verbose) {
			continue
		}

		header := fr.Path
		if fr.Written {
			header += " " + shared.Muted.Render("(written)")
		}
		fmt.Fprintln(w, shared.RenderHeader(header))

		for _, tr := range fr.Triggers {
			switch tr.Status {
			case StatusConverted:
				fmt.Fprintf(w, "  %s: %s\n", tr.Name, shared.RenderRewrite(tr.Original, tr.Expression))
			case StatusFailed:
				fmt.Fprintln(w, "  "+shared.RenderError(tr.Error.Message))
				if tr.Error.Suggestion != "" {
					fmt.Fprintln(w, "    "+shared.Muted.Render(tr.Error.Suggestion))
				}
			default:
				if verbose {
					fmt.Fprintln(w, "  "+shared.RenderUnchanged(tr.Name))
				}
			}
		}
	}

	fmt.Fprintln(w, summaryLine(mode, report.Summary))
}

func fileHasNews(fr FileReport, verbose bool) bool {
	if verbose {
		return true
	}
	for _, tr := range fr.Triggers {
		if tr.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

func summaryLine(mode string, s Summary) string {
	msg := fmt.Sprintf("%d file(s): %d converted, %d unchanged, %d failed",
		s.Files, s.Converted, s.Unchanged, s.Failed)
	if s.Invalid > 0 {
		msg += fmt.Sprintf(", %d invalid document(s)", s.Invalid)
	}

	switch {
	case s.Failed > 0 || s.Invalid > 0:
		return shared.RenderError(msg)
	case mode == ModeWrite:
		return shared.RenderOK(msg + fmt.Sprintf(", %d written", s.Written))
	case mode == ModeCheck && s.Legacy > 0:
		return shared.RenderWarn(msg + fmt.Sprintf(", %d legacy expression(s) remain", s.Legacy))
	case s.Converted > 0:
		return shared.RenderWarn(msg + " (dry run, use --write to save)")
	default:
		return shared.RenderOK(msg)
	}
}
