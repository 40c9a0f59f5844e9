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
	"math"
	"strconv"
	"strings"
)

// Position is a 1-based line and column in the source expression.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself so that embedding types satisfy Node.
func (p Position) Pos() Position {
	return p
}

// Node is an element of a parsed legacy expression.
type Node interface {
	Pos() Position
	node()
}

// CompareOp is a comparison operator as written in the legacy syntax.
type CompareOp string

const (
	OpLess         CompareOp = "<"
	OpGreater      CompareOp = ">"
	OpLessEqual    CompareOp = "<="
	OpGreaterEqual CompareOp = ">="
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
	OpIn           CompareOp = "in"
	OpNotIn        CompareOp = "not in"
	OpIs           CompareOp = "is"
	OpIsNot        CompareOp = "is not"
)

// LogicOp joins the operands of a BooleanCombination.
type LogicOp string

const (
	LogicAnd LogicOp = "and"
	LogicOr  LogicOp = "or"
)

// NumberLiteral is an integer or floating point literal.
type NumberLiteral struct {
	Position
	IsFloat bool
	Int     int64
	Float   float64
}

// String prints the literal in canonical decimal form. Floats at or above
// 1e16, or below 1e-4, use exponent notation.
func (n *NumberLiteral) String() string {
	if !n.IsFloat {
		return strconv.FormatInt(n.Int, 10)
	}
	if abs := math.Abs(n.Float); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(n.Float, 'e', -1, 64)
	}
	s := strconv.FormatFloat(n.Float, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Identifier is a bare name such as a metric alias (t1) or a state (OK).
type Identifier struct {
	Position
	Name string
}

// StringLiteral is a quoted string. Conditions cannot use it.
type StringLiteral struct {
	Position
	Value string
}

// Constant is one of True, False or None. Conditions cannot use it.
type Constant struct {
	Position
	Name string
}

// Comparison is a comparison chain. Operators and Comparators have the same
// length; only single-operator chains are translatable.
type Comparison struct {
	Position
	Left        Node
	Operators   []CompareOp
	Comparators []Node
}

// BooleanCombination joins two or more operands with the same logic operator.
type BooleanCombination struct {
	Position
	Operator LogicOp
	Operands []Node
}

// Conditional is "Then if Condition else Else".
type Conditional struct {
	Position
	Condition Node
	Then      Node
	Else      Node
}

// UnaryOp is a prefix operator: not, -, + or ~.
type UnaryOp struct {
	Position
	Operator string
	Operand  Node
}

// BinaryOp is an arithmetic, shift or bitwise operation.
type BinaryOp struct {
	Position
	Operator string
	Left     Node
	Right    Node
}

func (*NumberLiteral) node()      {}
func (*Identifier) node()         {}
func (*StringLiteral) node()      {}
func (*Constant) node()           {}
func (*Comparison) node()         {}
func (*BooleanCombination) node() {}
func (*Conditional) node()        {}
func (*UnaryOp) node()            {}
func (*BinaryOp) node()           {}

// Dump renders a node and its children for diagnostics, e.g.
//
//	Comparison(left=Identifier(t1), ops=[>], comparators=[Number(11)])
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n)
	return b.String()
}

func dump(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *NumberLiteral:
		b.WriteString("Number(" + n.String() + ")")
	case *Identifier:
		b.WriteString("Identifier(" + n.Name + ")")
	case *StringLiteral:
		b.WriteString("String(" + strconv.Quote(n.Value) + ")")
	case *Constant:
		b.WriteString("Constant(" + n.Name + ")")
	case *Comparison:
		b.WriteString("Comparison(left=")
		dump(b, n.Left)
		b.WriteString(", ops=[")
		for i, op := range n.Operators {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(op))
		}
		b.WriteString("], comparators=")
		dumpList(b, n.Comparators)
		b.WriteString(")")
	case *BooleanCombination:
		b.WriteString("BooleanCombination(op=" + string(n.Operator) + ", operands=")
		dumpList(b, n.Operands)
		b.WriteString(")")
	case *Conditional:
		b.WriteString("Conditional(condition=")
		dump(b, n.Condition)
		b.WriteString(", then=")
		dump(b, n.Then)
		b.WriteString(", else=")
		dump(b, n.Else)
		b.WriteString(")")
	case *UnaryOp:
		b.WriteString("UnaryOp(op=" + n.Operator + ", operand=")
		dump(b, n.Operand)
		b.WriteString(")")
	case *BinaryOp:
		b.WriteString("BinaryOp(op=" + n.Operator + ", left=")
		dump(b, n.Left)
		b.WriteString(", right=")
		dump(b, n.Right)
		b.WriteString(")")
	}
}

func dumpList(b *strings.Builder, nodes []Node) {
	b.WriteString("[")
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		dump(b, n)
	}
	b.WriteString("]")
}
