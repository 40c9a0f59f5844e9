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
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tombee/exprmigrate/pkg/errors"
)

// Checker validates expressions in the target syntax.
type Checker struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewChecker creates a checker with an empty compile cache.
func NewChecker() *Checker {
	return &Checker{
		cache: make(map[string]*vm.Program),
	}
}

// Check reports whether the target engine would accept the expression.
// Names are not resolved: metric aliases and states are only known at
// evaluation time.
func (c *Checker) Check(expression string) error {
	if expression == "" {
		return &errors.ValidationError{
			Field:      "expression",
			Message:    "expression is empty",
			Suggestion: "write a ternary such as: t1 > 10 ? ERROR : OK",
		}
	}

	if _, err := c.compile(expression); err != nil {
		return &errors.ValidationError{
			Field:      "expression",
			Message:    fmt.Sprintf("target engine rejects %q: %s", expression, err.Error()),
			Suggestion: "check operator spelling and parentheses; names must not clash with engine keywords",
		}
	}
	return nil
}

func (c *Checker) compile(expression string) (*vm.Program, error) {
	c.mu.RLock()
	if prog, ok := c.cache[expression]; ok {
		c.mu.RUnlock()
		return prog, nil
	}
	c.mu.RUnlock()

	prog, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[expression] = prog
	c.mu.Unlock()

	return prog, nil
}

// CacheSize returns the number of compiled expressions held.
func (c *Checker) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
