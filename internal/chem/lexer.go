package chem

import "strings"

// Lexer tokenizes a formula. Whitespace is skipped, so the lexer works on
// both raw and normalized text.
//
// A NUMBER is only produced at the start of a term (input start, after "+"
// or after "==="); digits anywhere else belong to the compound name, which
// keeps "H2SO4" a single NAME while "3H2SO4" is NUMBER NAME.
type Lexer struct {
	input     string
	pos       int
	termStart bool
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, termStart: true}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}
	if l.pos >= len(l.input) {
		tok.Type = TokenEOF
		return tok
	}

	ch := l.input[l.pos]
	switch {
	case ch == '+':
		tok.Type = TokenPlus
		tok.Literal = "+"
		l.pos++
		l.termStart = true
	case ch == '=':
		if strings.HasPrefix(l.input[l.pos:], yieldLiteral) {
			tok.Type = TokenYield
			tok.Literal = yieldLiteral
			l.pos += len(yieldLiteral)
			l.termStart = true
		} else {
			tok.Type = TokenIllegal
			tok.Literal = l.readEquals()
		}
	case l.termStart && isDigit(ch):
		tok.Type = TokenNumber
		tok.Literal = l.readNumber()
		l.termStart = false
	default:
		tok.Type = TokenName
		tok.Literal = l.readName()
		l.termStart = false
	}
	return tok
}

// Tokens lexes the whole input, including the trailing EOF token.
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

// readNumber reads a run of decimal digits.
func (l *Lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

// readName reads everything up to the next "+", "=" or whitespace.
func (l *Lexer) readName() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '+' || ch == '=' || isSpace(ch) {
			break
		}
		l.pos++
	}
	return l.input[start:l.pos]
}

// readEquals reads a run of "=" shorter than the yield separator.
func (l *Lexer) readEquals() string {
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] == '=' && l.pos-start < len(yieldLiteral)-1 {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
