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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, col int) Position {
	return Position{Line: line, Column: col}
}

func TestParse_Tree(t *testing.T) {
	got, err := Parse("ERROR if t1>11 else OK")
	require.NoError(t, err)

	want := &Conditional{
		Position: pos(1, 1),
		Condition: &Comparison{
			Position:    pos(1, 10),
			Left:        &Identifier{Position: pos(1, 10), Name: "t1"},
			Operators:   []CompareOp{OpGreater},
			Comparators: []Node{&NumberLiteral{Position: pos(1, 13), Int: 11}},
		},
		Then: &Identifier{Position: pos(1, 1), Name: "ERROR"},
		Else: &Identifier{Position: pos(1, 21), Name: "OK"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_BooleanPrecedence(t *testing.T) {
	got, err := Parse("a or b and c or d")
	require.NoError(t, err)

	want := &BooleanCombination{
		Position: pos(1, 1),
		Operator: LogicOr,
		Operands: []Node{
			&Identifier{Position: pos(1, 1), Name: "a"},
			&BooleanCombination{
				Position: pos(1, 6),
				Operator: LogicAnd,
				Operands: []Node{
					&Identifier{Position: pos(1, 6), Name: "b"},
					&Identifier{Position: pos(1, 12), Name: "c"},
				},
			},
			&Identifier{Position: pos(1, 17), Name: "d"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a + b * c", "BinaryOp(op=+, left=Identifier(a), right=BinaryOp(op=*, left=Identifier(b), right=Identifier(c)))"},
		{"a | b & c", "BinaryOp(op=|, left=Identifier(a), right=BinaryOp(op=&, left=Identifier(b), right=Identifier(c)))"},
		{"-a ** 2", "UnaryOp(op=-, operand=BinaryOp(op=**, left=Identifier(a), right=Number(2)))"},
		{"-2", "Number(-2)"},
		{"~a", "UnaryOp(op=~, operand=Identifier(a))"},
		{"a << 1 < b", "Comparison(left=BinaryOp(op=<<, left=Identifier(a), right=Number(1)), ops=[<], comparators=[Identifier(b)])"},
		{"not a", "UnaryOp(op=not, operand=Identifier(a))"},
		{"a is not b", "Comparison(left=Identifier(a), ops=[is not], comparators=[Identifier(b)])"},
		{"'x' == None", "Comparison(left=String(\"x\"), ops=[==], comparators=[Constant(None)])"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Dump(got))
		})
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	tests := []struct {
		expr  string
		want  Position
		token string
	}{
		{"ERROR if t1 > 1 else", pos(1, 21), ""},
		{"ERROR if (t1 > 1\n  and t2 >) else OK", pos(2, 11), ")"},
		{"ERROR if t1 > 1 else OK OK", pos(1, 25), "OK"},
		{"ERROR if t1 >= 1 else ?", pos(1, 23), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)

			synErr, ok := err.(*SyntaxError)
			require.True(t, ok, "expected *SyntaxError, got %T", err)
			assert.Equal(t, tt.want, synErr.Position)
			assert.Equal(t, tt.token, synErr.Token)
		})
	}
}

func TestLex_Tokens(t *testing.T) {
	tokens, err := lex("A if t1>=2.5 and x != 'y'\n")
	require.NoError(t, err)

	var kinds []tokenKind
	var texts []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
		texts = append(texts, tok.text)
	}

	assert.Equal(t, []tokenKind{
		tokenName, tokenKeyword, tokenName, tokenOperator, tokenNumber,
		tokenKeyword, tokenName, tokenOperator, tokenString, tokenNewline, tokenEOF,
	}, kinds)
	assert.Equal(t, []string{"A", "if", "t1", ">=", "2.5", "and", "x", "!=", "y", "\n", ""}, texts)
}
