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
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNewline
	tokenName
	tokenKeyword
	tokenNumber
	tokenString
	tokenOperator
)

type token struct {
	kind tokenKind
	text string
	pos  Position
}

// keywords are reserved words of the legacy syntax's host language. Only a
// handful are meaningful in an expression; the rest are rejected by the
// parser instead of being mistaken for metric names.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// operators are ordered longest first so that "<=" wins over "<".
var operators = []string{
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=",
	"<", ">", "+", "-", "*", "/", "%", "&", "|", "^", "~",
	"(", ")", "[", "]", "{", "}", "=", ",", ".", ":", ";", "@",
}

type lexer struct {
	src    string
	offset int
	line   int
	col    int
	depth  int
	tokens []token
}

// lex splits source into tokens. Newlines inside brackets and escaped
// newlines are whitespace; other newlines become tokenNewline.
func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	for {
		l.skipSpace()
		if l.offset >= len(l.src) {
			l.emit(tokenEOF, "", l.position())
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) emit(kind tokenKind, text string, pos Position) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: pos})
}

func (l *lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *lexer) advance(n int) {
	for _, r := range l.src[l.offset : l.offset+n] {
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	l.offset += n
}

func (l *lexer) skipSpace() {
	for l.offset < len(l.src) {
		switch c := l.src[l.offset]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			l.advance(1)
		case c == '\\' && strings.HasPrefix(l.src[l.offset+1:], "\n"):
			l.advance(2)
		case c == '\n' && l.depth > 0:
			l.advance(1)
		case c == '#':
			end := strings.IndexByte(l.src[l.offset:], '\n')
			if end < 0 {
				end = len(l.src) - l.offset
			}
			l.advance(end)
		default:
			return
		}
	}
}

func (l *lexer) next() error {
	pos := l.position()
	r := l.peekRune()

	switch {
	case r == '\n':
		l.advance(1)
		l.emit(tokenNewline, "\n", pos)
		return nil
	case isNameStart(r):
		start := l.offset
		for l.offset < len(l.src) && isNamePart(l.peekRune()) {
			l.advance(utf8.RuneLen(l.peekRune()))
		}
		text := l.src[start:l.offset]
		if keywords[text] {
			l.emit(tokenKeyword, text, pos)
		} else {
			l.emit(tokenName, text, pos)
		}
		return nil
	case isDigit(r) || (r == '.' && l.offset+1 < len(l.src) && isDigit(rune(l.src[l.offset+1]))):
		return l.lexNumber(pos)
	case r == '\'' || r == '"':
		return l.lexString(pos, byte(r))
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.offset:], op) {
			switch op {
			case "(", "[", "{":
				l.depth++
			case ")", "]", "}":
				if l.depth > 0 {
					l.depth--
				}
			}
			l.advance(len(op))
			l.emit(tokenOperator, op, pos)
			return nil
		}
	}

	return &SyntaxError{Position: pos, Token: string(r), Message: "invalid character"}
}

func (l *lexer) lexNumber(pos Position) error {
	start := l.offset
	digits := func() {
		for l.offset < len(l.src) {
			c := l.src[l.offset]
			if !isDigit(rune(c)) && c != '_' {
				return
			}
			l.advance(1)
		}
	}

	digits()
	if l.offset < len(l.src) && l.src[l.offset] == '.' {
		l.advance(1)
		digits()
	}
	if l.offset < len(l.src) && (l.src[l.offset] == 'e' || l.src[l.offset] == 'E') {
		l.advance(1)
		if l.offset < len(l.src) && (l.src[l.offset] == '+' || l.src[l.offset] == '-') {
			l.advance(1)
		}
		expStart := l.offset
		digits()
		if l.offset == expStart {
			return &SyntaxError{Position: pos, Token: l.src[start:l.offset], Message: "invalid number literal"}
		}
	}
	if l.offset < len(l.src) && isNamePart(l.peekRune()) {
		return &SyntaxError{Position: pos, Token: l.src[start : l.offset+1], Message: "invalid number literal"}
	}

	l.emit(tokenNumber, l.src[start:l.offset], pos)
	return nil
}

func (l *lexer) lexString(pos Position, quote byte) error {
	var b strings.Builder
	l.advance(1)
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == quote:
			l.advance(1)
			l.emit(tokenString, b.String(), pos)
			return nil
		case c == '\n':
			return &SyntaxError{Position: pos, Message: "unterminated string literal"}
		case c == '\\' && l.offset+1 < len(l.src):
			b.WriteByte(l.src[l.offset+1])
			l.advance(2)
		default:
			b.WriteByte(c)
			l.advance(1)
		}
	}
	return &SyntaxError{Position: pos, Message: "unterminated string literal"}
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
