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

package trigger

import (
	"log/slog"
	"strings"

	"github.com/tombee/exprmigrate/internal/log"
	"github.com/tombee/exprmigrate/pkg/errors"
	"github.com/tombee/exprmigrate/pkg/expression"
	"github.com/tombee/exprmigrate/pkg/legacy"
)

// IsLegacyExpression reports whether an expression looks like the
// deprecated "STATE if CONDITION else STATE" syntax.
func IsLegacyExpression(expr string) bool {
	lower := strings.ToLower(expr)
	return strings.Contains(lower, " else ") && strings.Contains(lower, "if")
}

// ConvertExpression returns the expression in ternary syntax. Expressions
// that are not legacy are returned unchanged. legacy is true when a
// conversion happened.
func ConvertExpression(expr string) (converted string, isLegacy bool, err error) {
	if !IsLegacyExpression(expr) {
		return expr, false, nil
	}
	converted, err = legacy.Translate(expr)
	if err != nil {
		return "", true, err
	}
	return converted, true, nil
}

// Change describes what normalization did to a trigger's expression.
type Change struct {
	// Trigger is the trigger name.
	Trigger string

	// Original is the expression before normalization.
	Original string

	// Expression is the expression after normalization.
	Expression string

	// Legacy is true when Original used the legacy syntax.
	Legacy bool
}

// Changed reports whether the expression was rewritten.
func (c Change) Changed() bool {
	return c.Original != c.Expression
}

// Normalizer prepares triggers for the alerting API: it fills defaults,
// converts legacy expressions and resolves the trigger type.
type Normalizer struct {
	// Logger receives deprecation warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// Checker, when set, compiles every non-empty expression in the target
	// syntax and checks its metric aliases against the trigger's targets.
	Checker *expression.Checker
}

// Normalize updates t in place. On a conversion failure t is left with its
// original expression and the *legacy.ConvertError is returned wrapped.
func (n *Normalizer) Normalize(t *Trigger) (Change, error) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String(log.TriggerKey, t.Name))

	change := Change{Trigger: t.Name, Original: t.Expression, Expression: t.Expression}

	t.applyDefaults()
	if err := t.Schedule.Normalize(); err != nil {
		return change, errors.Wrapf(err, "trigger %q", t.Name)
	}

	converted, isLegacy, err := ConvertExpression(t.Expression)
	change.Legacy = isLegacy
	if err != nil {
		return change, errors.Wrapf(err, "trigger %q", t.Name)
	}
	if isLegacy {
		logger.Warn("legacy expression syntax is deprecated, converted to ternary syntax",
			slog.String(log.ExpressionKey, t.Expression),
			slog.String("converted", converted))
		t.Expression = converted
		change.Expression = converted
	}

	if n.Checker != nil && t.Expression != "" {
		if err := n.Checker.Check(t.Expression); err != nil {
			return change, errors.Wrapf(err, "trigger %q", t.Name)
		}
		if err := expression.ValidateTargetReferences(t.Expression, len(t.Targets)); err != nil {
			return change, errors.Wrapf(err, "trigger %q", t.Name)
		}
	}

	t.TriggerType = t.ResolveType()

	if err := t.Validate(); err != nil {
		return change, err
	}

	log.Trace(logger, "trigger normalized", slog.String("trigger_type", t.TriggerType))
	return change, nil
}
