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

// validateShape checks that root is a conditional chain whose then-branches
// are names and whose else-branches are names or further conditionals.
func validateShape(root Node) (*Conditional, error) {
	cond, ok := root.(*Conditional)
	if !ok {
		return nil, &ShapeError{Description: "expression is not a conditional", Node: Dump(root)}
	}

	for c := cond; c != nil; {
		if _, ok := c.Then.(*Identifier); !ok {
			return nil, &ShapeError{Description: "value before \"if\" must be a name", Node: Dump(c.Then)}
		}

		switch next := c.Else.(type) {
		case *Identifier:
			c = nil
		case *Conditional:
			c = next
		default:
			return nil, &ShapeError{Description: "value after \"else\" must be a name or another conditional", Node: Dump(c.Else)}
		}
	}

	return cond, nil
}
