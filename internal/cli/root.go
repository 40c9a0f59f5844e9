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

package cli

import (
	"github.com/spf13/cobra"
	"github.com/tombee/exprmigrate/internal/commands/shared"
)

// Command groups shown by help --json.
const (
	GroupMigration = "migration"
	GroupInfo      = "info"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for exprmigrate
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exprmigrate",
		Short: "exprmigrate - convert legacy trigger expressions",
		Long: `exprmigrate converts alerting trigger expressions written in the legacy
"STATE if CONDITION else STATE" syntax to the ternary syntax
"(CONDITION) ? STATE : STATE" used by the alerting engine.

Run 'exprmigrate translate' to convert single expressions.
Run 'exprmigrate migrate' to convert trigger documents on disk.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, quiet, json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/exprmigrate/config.yaml)")

	return cmd
}

// AddCommand adds sub to root under group.
func AddCommand(root, sub *cobra.Command, group string) {
	if sub.Annotations == nil {
		sub.Annotations = map[string]string{}
	}
	sub.Annotations["group"] = group
	root.AddCommand(sub)
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
