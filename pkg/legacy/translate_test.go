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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_SingleComparison(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"ERROR if t1>11 else OK", "(t1 > 11) ? ERROR : OK"},
		{"ERROR if t2==12 else OK", "(t2 == 12) ? ERROR : OK"},
		{"ERROR if t3!=13 else OK", "(t3 != 13) ? ERROR : OK"},
		{"ERROR if t4<=14 else OK", "(t4 <= 14) ? ERROR : OK"},
		{"ERROR if t5>=15 else OK", "(t5 >= 15) ? ERROR : OK"},
		{"KOKO if t6<t7 else OKOK", "(t6 < t7) ? KOKO : OKOK"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Translate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_Chains(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{
			name: "right associative nesting",
			expr: "ERROR if t1>1 else FOO if t2>2 else BAR if t3>3 else BAZ",
			want: "(t1 > 1) ? ERROR : ((t2 > 2) ? FOO : ((t3 > 3) ? BAR : BAZ))",
		},
		{
			name: "boolean combination in nested condition",
			expr: "ERROR if t1>1 else FOO if t2>2 and (tx >3 or ty == 3) else BAR if t3>3 else BAZ",
			want: "(t1 > 1) ? ERROR : (((t2 > 2) && ((tx > 3) || (ty == 3))) ? FOO : ((t3 > 3) ? BAR : BAZ))",
		},
		{
			name: "flattened or chain",
			expr: "ERROR if t1 > 1 or t2 > 2 or t3 > 3 else OK",
			want: "((t1 > 1) || (t2 > 2) || (t3 > 3)) ? ERROR : OK",
		},
		{
			name: "and binds tighter than or",
			expr: "ERROR if t1 > 1 or t2 > 2 and t3 > 3 else OK",
			want: "((t1 > 1) || ((t2 > 2) && (t3 > 3))) ? ERROR : OK",
		},
		{
			name: "bare names in combination",
			expr: "ERROR if a and b else OK",
			want: "((a) && (b)) ? ERROR : OK",
		},
		{
			name: "parenthesized else branch",
			expr: "ERROR if t1>1 else (WARN if t2>2 else OK)",
			want: "(t1 > 1) ? ERROR : ((t2 > 2) ? WARN : OK)",
		},
		{
			name: "newlines inside parentheses",
			expr: "ERROR if (t1 > 1 and\n    t2 > 2) else OK",
			want: "((t1 > 1) && (t2 > 2)) ? ERROR : OK",
		},
		{
			name: "line continuation",
			expr: "ERROR if t1 > 1 \\\n else OK",
			want: "(t1 > 1) ? ERROR : OK",
		},
		{
			name: "boolean on the right of a comparison is not regrouped",
			expr: "ERROR if t1 > (t2 or t3) else OK",
			want: "(t1 > (t2) || (t3)) ? ERROR : OK",
		},
		{
			name: "leading blank lines",
			expr: "\n\nERROR if t1>1 else OK",
			want: "(t1 > 1) ? ERROR : OK",
		},
		{
			name: "trailing newline and comment",
			expr: "ERROR if t1>1 else OK  # page on-call\n",
			want: "(t1 > 1) ? ERROR : OK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_Numbers(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"ERROR if t1 > 1.5 else OK", "(t1 > 1.5) ? ERROR : OK"},
		{"ERROR if t1 > 1.0 else OK", "(t1 > 1.0) ? ERROR : OK"},
		{"ERROR if t1 > .25 else OK", "(t1 > 0.25) ? ERROR : OK"},
		{"ERROR if t1 > 1e3 else OK", "(t1 > 1000.0) ? ERROR : OK"},
		{"ERROR if t1 > 1_000 else OK", "(t1 > 1000) ? ERROR : OK"},
		{"ERROR if t1 > 00 else OK", "(t1 > 0) ? ERROR : OK"},
		{"ERROR if t1 > 0.5 else OK", "(t1 > 0.5) ? ERROR : OK"},
		{"ERROR if t1 > 1e20 else OK", "(t1 > 1e+20) ? ERROR : OK"},
		{"ERROR if t1 < 0.00001 else OK", "(t1 < 1e-05) ? ERROR : OK"},
		{"ERROR if t1 < -5 else OK", "(t1 < -5) ? ERROR : OK"},
		{"ERROR if t1 < -0.5 else OK", "(t1 < -0.5) ? ERROR : OK"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Translate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_StockAlertOverride(t *testing.T) {
	got, err := Translate("ERROR if t1>0 or t2>0 else OK")
	require.NoError(t, err)
	assert.Equal(t, "t1 > 0 ? ERROR : OK", got)

	// Only the exact string is special-cased.
	got, err = Translate("ERROR if t1 > 0 or t2 > 0 else OK")
	require.NoError(t, err)
	assert.Equal(t, "((t1 > 0) || (t2 > 0)) ? ERROR : OK", got)
}

func TestTranslate_Failures(t *testing.T) {
	tests := []struct {
		name string
		expr string
		kind Kind
	}{
		{name: "bare name", expr: "kokoko", kind: KindShape},
		{name: "assignment", expr: "True = False", kind: KindSyntax},
		{name: "bad indent and statements", expr: "      bad\nindent;;;;;;;;;a=2;;;;;", kind: KindSyntax},
		{name: "empty", expr: "", kind: KindSyntax},
		{name: "whitespace only", expr: "   \n", kind: KindSyntax},
		{name: "bitwise and", expr: "ERROR if t1&11 else OK", kind: KindUnknownNode},
		{name: "missing else value", expr: "ERROR if t2>11 else", kind: KindSyntax},
		{name: "missing then value", expr: "if t1>11 else", kind: KindSyntax},
		{name: "missing then value with name", expr: "if t111 else OK", kind: KindSyntax},
		{name: "missing else", expr: "ERROR if t1 > 1", kind: KindSyntax},
		{name: "unbalanced parenthesis", expr: "ERROR if (t1 > 1 else OK", kind: KindSyntax},
		{name: "invalid character", expr: "ERROR if t1 $ 2 else OK", kind: KindSyntax},
		{name: "unterminated string", expr: "ERROR if t1 > 'x else OK", kind: KindSyntax},
		{name: "keyword as value", expr: "ERROR if t1 > 1 else pass", kind: KindSyntax},
		{name: "newline splits expression", expr: "ERROR if t1 > 1\nelse OK", kind: KindSyntax},
		{name: "leading zero integer", expr: "ERROR if t1 > 011 else OK", kind: KindSyntax},
		{name: "number glued to name", expr: "ERROR if t1 > 1x else OK", kind: KindSyntax},
		{name: "literal on the left", expr: "ERROR if 5 < t1 else OK", kind: KindShape},
		{name: "chained comparison", expr: "ERROR if 1 < t1 < 5 else OK", kind: KindShape},
		{name: "number as then value", expr: "1 if t1 > 1 else OK", kind: KindShape},
		{name: "string as else value", expr: "ERROR if t1 > 1 else 'OK'", kind: KindShape},
		{name: "comparison as else value", expr: "ERROR if t1 > 1 else t2 > 2", kind: KindShape},
		{name: "membership operator", expr: "ERROR if t1 in t2 else OK", kind: KindUnknownOperator},
		{name: "negated membership", expr: "ERROR if t1 not in t2 else OK", kind: KindUnknownOperator},
		{name: "identity operator", expr: "ERROR if t1 is not None else OK", kind: KindUnknownOperator},
		{name: "negation", expr: "ERROR if not t1 > 1 else OK", kind: KindUnknownNode},
		{name: "arithmetic", expr: "ERROR if t1 > t2 + 1 else OK", kind: KindUnknownNode},
		{name: "string comparator", expr: "ERROR if t1 == 'down' else OK", kind: KindUnknownNode},
		{name: "constant comparator", expr: "ERROR if t1 == True else OK", kind: KindUnknownNode},
		{name: "conditional as condition", expr: "ERROR if (t1 if t2 > 1 else t3) else OK", kind: KindUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.expr)
			require.Error(t, err)
			assert.Empty(t, got)

			var convErr *ConvertError
			require.True(t, errors.As(err, &convErr), "expected *ConvertError, got %T", err)
			assert.Equal(t, tt.expr, convErr.Source)
			assert.Equal(t, tt.kind, convErr.Kind())
		})
	}
}

func TestTranslate_ErrorCauses(t *testing.T) {
	_, err := Translate("ERROR if t1&11 else OK")
	var nodeErr *UnknownNodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "BinaryOp(op=&, left=Identifier(t1), right=Number(11))", nodeErr.Node)

	_, err = Translate("ERROR if t1 in t2 else OK")
	var opErr *UnknownOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "in", opErr.Operator)
	assert.Contains(t, opErr.Node, "Comparison(left=Identifier(t1)")

	_, err = Translate("kokoko")
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "Identifier(kokoko)", shapeErr.Node)

	_, err = Translate("ERROR if t1 $ 2 else OK")
	var synErr *SyntaxError
	require.True(t, errors.As(err, &synErr))
	assert.Equal(t, Position{Line: 1, Column: 13}, synErr.Position)
	assert.Equal(t, "$", synErr.Token)
}

func TestTranslate_Deterministic(t *testing.T) {
	const expr = "ERROR if t1>1 else FOO if t2>2 and (tx >3 or ty == 3) else BAZ"
	want := MustTranslate(expr)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Translate(expr)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestMustTranslate_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustTranslate("kokoko")
	})
}
