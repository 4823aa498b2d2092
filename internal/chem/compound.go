package chem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/chemkit/internal/element"
)

// Compound errors
var (
	ErrUnknownElement = errors.New("unknown element")
)

// Compound is a substance with an identity, a molar mass and an atomic
// composition. Implementations must be immutable; two compounds with equal
// identity are interchangeable.
type Compound interface {
	// Identity returns the namespaced identity of the compound.
	Identity() Identity

	// MolarMass returns the molar mass in g/mol.
	MolarMass() float64

	// Composition returns the atom counts per element.
	Composition() Composition
}

// Element is a Compound made of a single chemical element.
type Element struct {
	info element.Info
}

// NewElement looks up an element by symbol or English name.
// A nil table means element.Standard().
func NewElement(table element.Table, symbolOrName string) (Element, error) {
	if table == nil {
		table = element.Standard()
	}
	info, ok := table.Lookup(symbolOrName)
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbolOrName)
	}
	return Element{info: info}, nil
}

// MustElement is like NewElement on the standard table but panics on error.
func MustElement(symbolOrName string) Element {
	e, err := NewElement(nil, symbolOrName)
	if err != nil {
		panic(err)
	}
	return e
}

// Symbol returns the element symbol.
func (e Element) Symbol() element.Symbol {
	return e.info.Symbol
}

// Name returns the English element name.
func (e Element) Name() string {
	return e.info.Name
}

// Number returns the atomic number.
func (e Element) Number() int {
	return e.info.Number
}

// Identity returns element:{lower-case symbol}.
func (e Element) Identity() Identity {
	return Identity{Namespace: NamespaceElement, Name: strings.ToLower(string(e.info.Symbol))}
}

// MolarMass returns the standard atomic weight.
func (e Element) MolarMass() float64 {
	return e.info.Mass
}

// Composition returns {e: 1}.
func (e Element) Composition() Composition {
	return NewComposition(Atoms{Element: e, Count: 1})
}

// String returns the element symbol.
func (e Element) String() string {
	return string(e.info.Symbol)
}

// Chemical is the Compound view of a ChemicalCompound.
type Chemical struct {
	compound *ChemicalCompound
}

// Compound returns the wrapped ChemicalCompound.
func (c Chemical) Compound() *ChemicalCompound {
	return c.compound
}

// Identity returns chemical:{IdentityToken(name)}.
func (c Chemical) Identity() Identity {
	return Identity{Namespace: NamespaceChemical, Name: IdentityToken(c.compound.name)}
}

// MolarMass delegates to the wrapped compound.
func (c Chemical) MolarMass() float64 {
	return c.compound.MolarMass()
}

// Composition delegates to the wrapped compound.
func (c Chemical) Composition() Composition {
	return c.compound.Composition()
}

// String returns the compound name.
func (c Chemical) String() string {
	return c.compound.name
}

// depthOf returns the nesting depth contributed by a term.
// Elements and foreign Compound implementations are leaves.
func depthOf(c Compound) int {
	if ch, ok := c.(Chemical); ok && ch.compound != nil {
		return ch.compound.depth
	}
	return 0
}
