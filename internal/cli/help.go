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
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tombee/exprmigrate/internal/commands/shared"
)

// GroupOther collects commands registered without a group.
const GroupOther = "other"

// groupOrder is the order help lists command groups in.
var groupOrder = []string{GroupMigration, GroupInfo, GroupOther}

// FlagHelp describes one flag in help --json output.
type FlagHelp struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required,omitempty"`
}

// CommandHelp describes a command in help --json output.
type CommandHelp struct {
	Name        string     `json:"name"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Usage       string     `json:"usage"`
	Group       string     `json:"group"`
	Aliases     []string   `json:"aliases,omitempty"`
	Examples    string     `json:"examples,omitempty"`
	Flags       []FlagHelp `json:"flags,omitempty"`
}

// GroupHelp lists the commands of one group.
type GroupHelp struct {
	Name     string        `json:"name"`
	Commands []CommandHelp `json:"commands"`
}

// HelpResponse is the help --json payload. Groups is set when help runs
// without arguments, Target when it describes a single command.
type HelpResponse struct {
	shared.JSONResponse
	Groups      []GroupHelp  `json:"groups,omitempty"`
	Target      *CommandHelp `json:"target,omitempty"`
	GlobalFlags []FlagHelp   `json:"global_flags"`
}

// NewHelpCommand creates the help command for root. With the global --json
// flag it prints command and flag metadata for scripts.
func NewHelpCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help shows usage for exprmigrate or one of its commands.

Run 'exprmigrate help migrate' for the document migration flags.
Add --json to get command and flag metadata for scripts.`,
		Args: cobra.ArbitraryArgs,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() && strings.HasPrefix(c.Name(), toComplete) {
					names = append(names, c.Name())
				}
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if !shared.GetJSON() {
					return root.Help()
				}
				return shared.EmitJSON(cmd.OutOrStdout(), HelpResponse{
					JSONResponse: shared.NewJSONResponse("help", true),
					Groups:       describeGroups(root),
					GlobalFlags:  describeFlags(root.PersistentFlags()),
				})
			}

			target, _, err := root.Find(args)
			if err != nil || target == root {
				return shared.NewInvalidInputError(fmt.Sprintf("unknown command %q", strings.Join(args, " ")), nil)
			}
			if !shared.GetJSON() {
				return target.Help()
			}
			desc := describeCommand(target)
			return shared.EmitJSON(cmd.OutOrStdout(), HelpResponse{
				JSONResponse: shared.NewJSONResponse("help "+target.Name(), true),
				Target:       &desc,
				GlobalFlags:  describeFlags(root.PersistentFlags()),
			})
		},
	}
}

// describeGroups lists the available subcommands of root by group, each
// group sorted by command name.
func describeGroups(root *cobra.Command) []GroupHelp {
	byGroup := map[string][]CommandHelp{}
	for _, c := range root.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		desc := describeCommand(c)
		byGroup[desc.Group] = append(byGroup[desc.Group], desc)
	}

	var groups []GroupHelp
	for _, name := range groupOrder {
		commands := byGroup[name]
		if len(commands) == 0 {
			continue
		}
		sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })
		groups = append(groups, GroupHelp{Name: name, Commands: commands})
	}
	return groups
}

func describeCommand(c *cobra.Command) CommandHelp {
	group := c.Annotations["group"]
	if group == "" {
		group = GroupOther
	}
	return CommandHelp{
		Name:        c.Name(),
		Summary:     c.Short,
		Description: c.Long,
		Usage:       c.UseLine(),
		Group:       group,
		Aliases:     c.Aliases,
		Examples:    c.Example,
		Flags:       describeFlags(c.LocalFlags()),
	}
}

// describeFlags lists the visible flags of fs in name order.
func describeFlags(fs *pflag.FlagSet) []FlagHelp {
	var flags []FlagHelp
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
		flags = append(flags, FlagHelp{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
			Required:  required,
		})
	})
	return flags
}
