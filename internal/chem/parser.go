package chem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser errors
var (
	ErrMalformedFormula = errors.New("malformed formula")
	ErrUnknownCompound  = errors.New("unknown chemical compound")
)

// SyntaxError reports a formula that violates the formula grammar. It is a
// programming error in the formula text and is never recovered from.
type SyntaxError struct {
	Raw string
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %q: %s at position %d", ErrMalformedFormula, e.Raw, e.Msg, e.Pos)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedFormula
}

// UnknownCompoundError reports a formula term naming a compound that is not
// in the name registry.
type UnknownCompoundError struct {
	ID    FormulaID
	Raw   string
	Token string
}

func (e *UnknownCompoundError) Error() string {
	return fmt.Sprintf("%s %q in formula %d (%s)", ErrUnknownCompound, e.Token, e.ID, e.Raw)
}

func (e *UnknownCompoundError) Unwrap() error {
	return ErrUnknownCompound
}

// ParseFormula parses raw into a formula with the given id, resolving every
// compound name through names.
//
// A raw text without exactly one "===" or otherwise breaking the grammar
// returns a nil formula and a *SyntaxError. When a name cannot be resolved
// the returned formula is non-nil but Empty, alongside an
// *UnknownCompoundError naming the offending token.
func ParseFormula(names NameLookup, id FormulaID, raw string, opts ...FormulaOption) (*Formula, error) {
	if n := strings.Count(raw, yieldLiteral); n != 1 {
		return nil, &SyntaxError{
			Raw: raw,
			Pos: strings.Index(raw, yieldLiteral),
			Msg: fmt.Sprintf("expected exactly one %q separator, found %d", yieldLiteral, n),
		}
	}

	normalized := stripWhitespace(raw)
	left, right, err := newFormulaParser(normalized).parse()
	if err != nil {
		return nil, err
	}

	f := &Formula{id: id, raw: normalized}
	for _, opt := range opts {
		opt(f)
	}

	input, err := resolveSide(names, left)
	if err != nil {
		return f, &UnknownCompoundError{ID: id, Raw: normalized, Token: err.Error()}
	}
	output, err := resolveSide(names, right)
	if err != nil {
		return f, &UnknownCompoundError{ID: id, Raw: normalized, Token: err.Error()}
	}

	f.input = input
	f.output = output
	return f, nil
}

// MustParseFormula is like ParseFormula but panics on any error.
func MustParseFormula(names NameLookup, id FormulaID, raw string, opts ...FormulaOption) *Formula {
	f, err := ParseFormula(names, id, raw, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseCompounds parses the terms of one formula side ("3H2SO4", "Zn") and
// resolves them through names. It fails on the first malformed or unknown
// term.
func ParseCompounds(names NameLookup, terms []string) ([]Reactant, error) {
	parsed := make([]termSyntax, 0, len(terms))
	for _, term := range terms {
		normalized := stripWhitespace(term)
		p := newFormulaParser(normalized)
		ts, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenEOF {
			return nil, p.errorf("unexpected %s %q after term", p.current.Type, p.current.Literal)
		}
		parsed = append(parsed, ts)
	}

	reactants, err := resolveSide(names, parsed)
	if err != nil {
		return nil, &UnknownCompoundError{Raw: strings.Join(terms, "+"), Token: err.Error()}
	}
	return reactants, nil
}

// termSyntax is a parsed but unresolved formula term.
type termSyntax struct {
	name        string
	coefficient int32
}

// formulaParser parses the formula grammar:
//
//	formula = side "===" side
//	side    = term { "+" term }
//	term    = [ NUMBER ] NAME
type formulaParser struct {
	lexer   *Lexer
	input   string
	current Token
}

func newFormulaParser(input string) *formulaParser {
	p := &formulaParser{lexer: NewLexer(input), input: input}
	p.nextToken()
	return p
}

func (p *formulaParser) nextToken() {
	p.current = p.lexer.NextToken()
}

func (p *formulaParser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Raw: p.input, Pos: p.current.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *formulaParser) parse() (left, right []termSyntax, err error) {
	left, err = p.parseSide()
	if err != nil {
		return nil, nil, err
	}

	if p.current.Type != TokenYield {
		return nil, nil, p.errorf("expected %q, got %s", yieldLiteral, p.current.Type)
	}
	p.nextToken() // consume ===

	right, err = p.parseSide()
	if err != nil {
		return nil, nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, nil, p.errorf("unexpected %s %q", p.current.Type, p.current.Literal)
	}
	return left, right, nil
}

func (p *formulaParser) parseSide() ([]termSyntax, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []termSyntax{first}

	for p.current.Type == TokenPlus {
		p.nextToken() // consume +
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func (p *formulaParser) parseTerm() (termSyntax, error) {
	term := termSyntax{coefficient: 1}

	if p.current.Type == TokenNumber {
		n, err := strconv.ParseInt(p.current.Literal, 10, 32)
		if err != nil {
			return termSyntax{}, p.errorf("coefficient %s out of range", p.current.Literal)
		}
		term.coefficient = int32(n)
		p.nextToken()
	}

	if p.current.Type != TokenName {
		return termSyntax{}, p.errorf("expected compound name, got %s", p.current.Type)
	}
	term.name = p.current.Literal
	p.nextToken()
	return term, nil
}

// unresolvedName is returned by resolveSide; its text is the offending token.
type unresolvedName string

func (u unresolvedName) Error() string {
	return string(u)
}

// resolveSide builds an ordered side. A compound repeated on the same side
// keeps its first position and takes the last coefficient.
func resolveSide(names NameLookup, terms []termSyntax) ([]Reactant, error) {
	side := make([]Reactant, 0, len(terms))
	index := make(map[string]int, len(terms))

	for _, term := range terms {
		c, ok := names.Lookup(term.name)
		if !ok {
			return nil, unresolvedName(term.name)
		}
		if i, seen := index[c.Name()]; seen {
			side[i].Coefficient = term.coefficient
			continue
		}
		index[c.Name()] = len(side)
		side = append(side, Reactant{Compound: c, Coefficient: term.coefficient})
	}
	return side, nil
}
