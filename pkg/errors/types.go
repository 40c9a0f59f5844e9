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

package errors

import (
	"fmt"
)

// ValidationError reports invalid user input such as a malformed trigger
// field or an unknown schedule day.
type ValidationError struct {
	// Field names the offending input, e.g. "sched.days" or "ttl_state".
	Field string

	// Message describes what is wrong.
	Message string

	// Suggestion tells the user how to fix it.
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError reports a missing resource, e.g. a trigger file.
type NotFoundError struct {
	// Resource is the kind of thing that was looked up ("file", "trigger").
	Resource string

	// ID identifies it (a path or a trigger name).
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError reports a problem with the configuration file or environment.
type ConfigError struct {
	// Key is the configuration key at fault ("migrate.include", "log.level").
	Key string

	// Reason explains the problem.
	Reason string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// DocumentError reports a trigger document that could not be decoded or
// encoded.
type DocumentError struct {
	// Path is the file the document came from. Empty for in-memory data.
	Path string

	// Format is the document format ("yaml", "json", "jsonc").
	Format string

	// Cause is the decoder or encoder error.
	Cause error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid %s document %s: %v", e.Format, e.Path, e.Cause)
	}
	return fmt.Sprintf("invalid %s document: %v", e.Format, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *DocumentError) IsUserVisible() bool {
	return true
}

// UserMessage implements UserVisibleError.
func (e *DocumentError) UserMessage() string {
	return e.Error()
}

// Suggestion implements UserVisibleError.
func (e *DocumentError) Suggestion() string {
	return "trigger documents must hold a trigger object, a list of triggers, or {\"list\": [...]}"
}
