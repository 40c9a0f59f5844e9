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

// Package legacy translates deprecated trigger expressions into the ternary
// syntax understood by the alert evaluation engine.
//
// Legacy expressions are conditional chains of the form
//
//	ERROR if t1 > 10 else WARN if t1 > 5 else OK
//
// whose conditions are comparisons between metric names and numbers,
// optionally combined with "and" / "or". Translate rewrites them as
//
//	(t1 > 10) ? ERROR : ((t1 > 5) ? WARN : OK)
//
// The translation runs in three stages:
//
//   - Parse: a recursive-descent parser builds a typed expression tree.
//   - Shape validation: the root must be a conditional whose "then" branches
//     are names and whose "else" branches are names or nested conditionals.
//   - Translation: the tree is emitted bottom-up with explicit parentheses.
//
// Every failure is reported as a *ConvertError wrapping one of
// *SyntaxError, *ShapeError, *UnknownOperatorError or *UnknownNodeError.
// Translate has no shared state and is safe for concurrent use.
package legacy
