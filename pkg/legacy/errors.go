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

package legacy

import (
	"errors"
	"fmt"

	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
)

// Kind classifies why a legacy expression could not be converted.
type Kind string

const (
	// KindSyntax means the source is not a single well-formed expression.
	KindSyntax Kind = "syntax"
	// KindShape means the expression parsed but is not a conditional chain
	// with name leaves.
	KindShape Kind = "shape"
	// KindUnknownOperator means a comparison or logic operator has no
	// equivalent in the target syntax.
	KindUnknownOperator Kind = "unknown_operator"
	// KindUnknownNode means a condition contains something other than names,
	// numbers, comparisons and and/or combinations.
	KindUnknownNode Kind = "unknown_node"
)

// SyntaxError reports a lexical or grammatical failure.
type SyntaxError struct {
	Position

	// Token is the offending source text, empty at end of input.
	Token string

	// Message describes what the parser expected.
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error at line %d, column %d near %q: %s", e.Line, e.Column, e.Token, e.Message)
	}
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ShapeError reports a tree that parsed but does not have the
// "NAME if CONDITION else (NAME | conditional)" shape.
type ShapeError struct {
	// Description explains which rule the tree broke.
	Description string

	// Node is the dump of the offending sub-tree.
	Node string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected expression shape: %s: %s", e.Description, e.Node)
}

// UnknownOperatorError reports an operator outside the supported set.
type UnknownOperatorError struct {
	Operator string
	Node     string
}

// Error implements the error interface.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q in %s", e.Operator, e.Node)
}

// UnknownNodeError reports an unsupported node where a comparator is expected.
type UnknownNodeError struct {
	Node string
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown comparator %s", e.Node)
}

// ConvertError is the single error type returned by Translate. Cause holds
// one of *SyntaxError, *ShapeError, *UnknownOperatorError or
// *UnknownNodeError.
type ConvertError struct {
	// Source is the legacy expression that failed to convert.
	Source string

	// Cause is the classified failure.
	Cause error
}

var (
	_ pkgerrors.UserVisibleError = (*ConvertError)(nil)
	_ pkgerrors.ErrorClassifier  = (*ConvertError)(nil)
)

// Error implements the error interface.
func (e *ConvertError) Error() string {
	return fmt.Sprintf("convert error: %q: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// Kind classifies the cause. An unclassified cause reports KindSyntax.
func (e *ConvertError) Kind() Kind {
	var (
		shapeErr *ShapeError
		opErr    *UnknownOperatorError
		nodeErr  *UnknownNodeError
	)
	switch {
	case errors.As(e.Cause, &shapeErr):
		return KindShape
	case errors.As(e.Cause, &opErr):
		return KindUnknownOperator
	case errors.As(e.Cause, &nodeErr):
		return KindUnknownNode
	default:
		return KindSyntax
	}
}

// IsUserVisible implements pkgerrors.UserVisibleError.
func (e *ConvertError) IsUserVisible() bool {
	return true
}

// UserMessage implements pkgerrors.UserVisibleError.
func (e *ConvertError) UserMessage() string {
	return fmt.Sprintf("cannot convert legacy expression %q", e.Source)
}

// Suggestion implements pkgerrors.UserVisibleError.
func (e *ConvertError) Suggestion() string {
	switch e.Kind() {
	case KindShape:
		return "legacy expressions must read STATE if CONDITION else STATE; rewrite it directly as (CONDITION) ? STATE : STATE"
	case KindUnknownOperator:
		return "only <, >, <=, >=, ==, != comparisons joined by and/or can be converted"
	case KindUnknownNode:
		return "conditions may only compare metric names with names or numbers"
	default:
		return "check that the expression is a single VALUE if CONDITION else VALUE chain"
	}
}

// ErrorType implements pkgerrors.ErrorClassifier.
func (e *ConvertError) ErrorType() string {
	return "convert"
}

// IsRetryable implements pkgerrors.ErrorClassifier. Conversion is a pure
// function of its input.
func (e *ConvertError) IsRetryable() bool {
	return false
}
