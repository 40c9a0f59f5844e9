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

package expression

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// targetAliasPattern matches metric aliases: t1 refers to the first target.
var targetAliasPattern = regexp.MustCompile(`^t([1-9][0-9]*)$`)

// identifierCollector gathers the names an expression refers to.
type identifierCollector struct {
	names map[string]bool
}

func (c *identifierCollector) Visit(node *ast.Node) {
	if ident, ok := (*node).(*ast.IdentifierNode); ok {
		c.names[ident.Value] = true
	}
}

// References returns the sorted, unique names used by an expression in the
// target syntax.
func References(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parsing expression: %w", err)
	}

	collector := &identifierCollector{names: make(map[string]bool)}
	ast.Walk(&tree.Node, collector)

	names := make([]string, 0, len(collector.names))
	for name := range collector.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateTargetReferences checks that every metric alias in the expression
// (t1, t2, ...) has a target. targetCount is the number of targets on the
// trigger.
//
//	err := ValidateTargetReferences("t2 > 0 ? ERROR : OK", 1)
//	// Returns error (t2 needs a second target)
func ValidateTargetReferences(expression string, targetCount int) error {
	if expression == "" {
		return nil
	}

	names, err := References(expression)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range names {
		m := targetAliasPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil || index > targetCount {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf(
			"expression references target(s) without a matching target: %s (trigger has %d target(s))",
			strings.Join(missing, ", "),
			targetCount,
		)
	}
	return nil
}
