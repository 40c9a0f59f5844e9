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

// Package expression checks trigger expressions against the target engine's
// grammar.
//
// Trigger expressions are evaluated remotely by an engine whose syntax is the
// ternary/comparison/boolean subset of expr-lang:
//
//	t1 > 10 ? ERROR : (t1 > 5 ? WARN : OK)
//	(t1 > 1 && t2 <= 0) ? WARN : OK
//
// Checker compiles expressions with github.com/expr-lang/expr so that a
// migrated expression is known to be accepted before it is written out.
// Compiled programs are cached; Checker is safe for concurrent use.
//
// References and ValidateTargetReferences inspect the parsed expression to
// find metric aliases (t1, t2, ...) and make sure each alias has a matching
// target on the trigger.
package expression
