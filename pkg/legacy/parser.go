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
	"fmt"
	"strconv"
	"strings"
)

// binaryLevels lists binary operators from loosest to tightest binding,
// below comparisons and above unary operators.
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "//", "%"},
}

var compareOps = map[string]CompareOp{
	"<":  OpLess,
	">":  OpGreater,
	"<=": OpLessEqual,
	">=": OpGreaterEqual,
	"==": OpEqual,
	"!=": OpNotEqual,
}

// Parse parses a single legacy expression into a tree. It reports failures
// as *SyntaxError and performs no shape validation.
func Parse(source string) (Node, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	p.skipNewlines()
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipNewlines()
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.unexpected(tok, "expected end of expression")
	}
	return n, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

// skipNewlines steps over blank lines around the expression.
func (p *parser) skipNewlines() {
	for p.peek().kind == tokenNewline {
		p.pos++
	}
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.kind == tokenKeyword && tok.text == word
}

func (p *parser) isOperator(ops ...string) bool {
	tok := p.peek()
	if tok.kind != tokenOperator {
		return false
	}
	for _, op := range ops {
		if tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expectKeyword(word string) error {
	if !p.isKeyword(word) {
		return p.unexpected(p.peek(), fmt.Sprintf("expected %q", word))
	}
	p.advance()
	return nil
}

func (p *parser) unexpected(tok token, msg string) *SyntaxError {
	switch tok.kind {
	case tokenEOF:
		return &SyntaxError{Position: tok.pos, Message: "unexpected end of input, " + msg}
	case tokenNewline:
		return &SyntaxError{Position: tok.pos, Message: "unexpected newline, " + msg}
	default:
		return &SyntaxError{Position: tok.pos, Token: tok.text, Message: msg}
	}
}

// expression := disjunction [ "if" disjunction "else" expression ]
func (p *parser) parseExpression() (Node, error) {
	body, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return body, nil
	}

	p.advance()
	cond, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	orElse, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Conditional{Position: body.Pos(), Condition: cond, Then: body, Else: orElse}, nil
}

func (p *parser) parseDisjunction() (Node, error) {
	return p.parseLogic(LogicOr, p.parseConjunction)
}

func (p *parser) parseConjunction() (Node, error) {
	return p.parseLogic(LogicAnd, p.parseInversion)
}

// parseLogic collects a flat chain of operands joined by the same keyword.
func (p *parser) parseLogic(op LogicOp, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword(string(op)) {
		return first, nil
	}

	combo := &BooleanCombination{Position: first.Pos(), Operator: op, Operands: []Node{first}}
	for p.isKeyword(string(op)) {
		p.advance()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		combo.Operands = append(combo.Operands, next)
	}
	return combo, nil
}

// inversion := "not" inversion | comparison
func (p *parser) parseInversion() (Node, error) {
	if !p.isKeyword("not") {
		return p.parseComparison()
	}

	tok := p.advance()
	operand, err := p.parseInversion()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Position: tok.pos, Operator: "not", Operand: operand}, nil
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	var cmp *Comparison
	for {
		op, ok := p.compareOp()
		if !ok {
			break
		}
		right, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if cmp == nil {
			cmp = &Comparison{Position: left.Pos(), Left: left}
		}
		cmp.Operators = append(cmp.Operators, op)
		cmp.Comparators = append(cmp.Comparators, right)
	}

	if cmp == nil {
		return left, nil
	}
	return cmp, nil
}

// compareOp consumes a comparison operator if one is next.
func (p *parser) compareOp() (CompareOp, bool) {
	tok := p.peek()
	switch {
	case tok.kind == tokenOperator:
		op, ok := compareOps[tok.text]
		if ok {
			p.advance()
		}
		return op, ok
	case tok.kind != tokenKeyword:
		return "", false
	case tok.text == "in":
		p.advance()
		return OpIn, true
	case tok.text == "not" && p.peekAt(1).kind == tokenKeyword && p.peekAt(1).text == "in":
		p.advance()
		p.advance()
		return OpNotIn, true
	case tok.text == "is":
		p.advance()
		if p.isKeyword("not") {
			p.advance()
			return OpIsNot, true
		}
		return OpIs, true
	}
	return "", false
}

func (p *parser) parseBinary(level int) (Node, error) {
	if level == len(binaryLevels) {
		return p.parseFactor()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.isOperator(binaryLevels[level]...) {
		op := p.advance().text
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Position: left.Pos(), Operator: op, Left: left, Right: right}
	}
	return left, nil
}

// factor := ("+"|"-"|"~") factor | power
func (p *parser) parseFactor() (Node, error) {
	if !p.isOperator("+", "-", "~") {
		return p.parsePower()
	}

	tok := p.advance()
	operand, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	if num, ok := operand.(*NumberLiteral); ok && tok.text == "-" {
		num.Position = tok.pos
		num.Int = -num.Int
		num.Float = -num.Float
		return num, nil
	}
	return &UnaryOp{Position: tok.pos, Operator: tok.text, Operand: operand}, nil
}

// power := atom [ "**" factor ]
func (p *parser) parsePower() (Node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.isOperator("**") {
		return base, nil
	}

	p.advance()
	exp, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Position: base.Pos(), Operator: "**", Left: base, Right: exp}, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenName:
		p.advance()
		return &Identifier{Position: tok.pos, Name: tok.text}, nil
	case tokenNumber:
		p.advance()
		return parseNumber(tok)
	case tokenString:
		p.advance()
		return &StringLiteral{Position: tok.pos, Value: tok.text}, nil
	case tokenKeyword:
		switch tok.text {
		case "True", "False", "None":
			p.advance()
			return &Constant{Position: tok.pos, Name: tok.text}, nil
		}
	case tokenOperator:
		if tok.text == "(" {
			p.advance()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.isOperator(")") {
				return nil, p.unexpected(p.peek(), `expected ")"`)
			}
			p.advance()
			return inner, nil
		}
	}
	return nil, p.unexpected(tok, "expected a name, number or parenthesized expression")
}

func parseNumber(tok token) (Node, error) {
	text := strings.ReplaceAll(tok.text, "_", "")
	if !strings.ContainsAny(text, ".eE") {
		if len(text) > 1 && text[0] == '0' && strings.Trim(text, "0") != "" {
			return nil, &SyntaxError{Position: tok.pos, Token: tok.text, Message: "leading zeros in decimal integer literals are not permitted"}
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Position: tok.pos, Token: tok.text, Message: "integer literal out of range"}
		}
		return &NumberLiteral{Position: tok.pos, Int: v}, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &SyntaxError{Position: tok.pos, Token: tok.text, Message: "invalid float literal"}
	}
	return &NumberLiteral{Position: tok.pos, IsFloat: true, Float: v}, nil
}
