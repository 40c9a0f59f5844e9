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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/exprmigrate/pkg/errors"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitConvertFailed = 1 // an expression or trigger could not be converted
	ExitInvalidInput  = 2 // bad arguments, unreadable documents or config
	ExitLegacyFound   = 3 // migrate --check found legacy expressions
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewConvertFailedError creates an error for expressions or triggers that
// could not be converted.
func NewConvertFailedError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitConvertFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for bad arguments, documents or
// configuration.
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidInput,
		Message: msg,
		Cause:   cause,
	}
}

// NewLegacyFoundError creates the error returned by migrate --check when
// legacy expressions remain.
func NewLegacyFoundError(count int) *ExitError {
	return &ExitError{
		Code:    ExitLegacyFound,
		Message: fmt.Sprintf("%d trigger(s) still use legacy expression syntax", count),
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var (
		configErr   *pkgerrors.ConfigError
		validErr    *pkgerrors.ValidationError
		notFoundErr *pkgerrors.NotFoundError
		docErr      *pkgerrors.DocumentError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &validErr),
		errors.As(err, &notFoundErr), errors.As(err, &docErr):
		return ExitInvalidInput
	}
	return ExitConvertFailed
}

// PrintError writes err and any user-facing suggestion to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}
	printUserVisibleSuggestion(w, err)
}

// HandleExitError prints err to stderr and exits with its exit code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// printUserVisibleSuggestion prints the suggestion of the first
// UserVisibleError or ValidationError in the chain.
func printUserVisibleSuggestion(w io.Writer, err error) {
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				if suggestion := userErr.Suggestion(); suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}
		if validErr, ok := err.(*pkgerrors.ValidationError); ok {
			if validErr.Suggestion != "" {
				fmt.Fprintf(w, "\nSuggestion: %s\n", validErr.Suggestion)
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
