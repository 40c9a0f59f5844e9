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

// UserVisibleError is implemented by errors that carry a message and an
// actionable suggestion for CLI users. The CLI walks the error chain and
// prints the suggestion of the first UserVisibleError it finds.
type UserVisibleError interface {
	error

	// IsUserVisible reports whether the error should be shown as is.
	IsUserVisible() bool

	// UserMessage is a short, jargon-free description.
	UserMessage() string

	// Suggestion is guidance for fixing the problem, or "".
	Suggestion() string
}

// ErrorClassifier lets callers branch on an error's category.
type ErrorClassifier interface {
	error

	// ErrorType names the category, e.g. "convert" or "validation".
	ErrorType() string

	// IsRetryable reports whether repeating the operation could succeed.
	IsRetryable() bool
}
