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

package version

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/tombee/exprmigrate/internal/commands/shared"
)

const engineModule = "github.com/expr-lang/expr"

// VersionInfo contains version metadata
type VersionInfo struct {
	shared.JSONResponse
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`

	// Engine is the expr-lang version used to verify translations.
	Engine string `json:"engine,omitempty"`
}

// NewCommand creates the version command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date and target engine version for exprmigrate.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

// Info collects the version metadata of the running binary.
func Info() VersionInfo {
	v, c, b := shared.GetVersion()
	info := VersionInfo{
		JSONResponse: shared.NewJSONResponse("version", true),
		Version:      v,
		Commit:       c,
		BuildDate:    b,
		GoVersion:    runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == engineModule {
				info.Engine = dep.Version
				break
			}
		}
	}
	return info
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := Info()

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), info)
	}

	cmd.Printf("exprmigrate version %s\n", info.Version)
	cmd.Printf("  commit:     %s\n", info.Commit)
	cmd.Printf("  build date: %s\n", info.BuildDate)
	cmd.Printf("  go:         %s\n", info.GoVersion)
	if info.Engine != "" {
		cmd.Printf("  engine:     expr %s\n", info.Engine)
	}

	return nil
}
