package testutil

import "github.com/zjrosen/chemkit/internal/chem"

// termData is one term of a compound under construction.
type termData struct {
	element  string
	compound string
	count    float64
}

// compoundData holds everything needed to register a compound.
type compoundData struct {
	name        string
	description string
	terms       []termData
}

// formulaData holds everything needed to define a formula.
type formulaData struct {
	id         chem.FormulaID
	raw        string
	conditions []chem.Condition
}

// CompoundOption configures a compound added to a Builder.
type CompoundOption func(*compoundData)

// Description sets the compound description.
func Description(d string) CompoundOption {
	return func(c *compoundData) {
		c.description = d
	}
}

// Element adds an element term.
func Element(symbol string, count float64) CompoundOption {
	return func(c *compoundData) {
		c.terms = append(c.terms, termData{element: symbol, count: count})
	}
}

// Sub adds a term referencing a compound registered earlier in the build.
func Sub(name string, count float64) CompoundOption {
	return func(c *compoundData) {
		c.terms = append(c.terms, termData{compound: name, count: count})
	}
}
