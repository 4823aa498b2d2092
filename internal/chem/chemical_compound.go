package chem

import (
	"errors"
	"fmt"
	"strings"
)

// Builder errors
var (
	ErrEmptyName = errors.New("compound name cannot be empty")
	ErrNoTerms   = errors.New("compound must have at least one term")
	ErrNilTerm   = errors.New("compound term cannot be nil")
	ErrTooDeep   = errors.New("compound nesting exceeds maximum depth")
)

// MaxDepth bounds how deeply chemical compounds may nest.
const MaxDepth = 32

// Term is one constituent of a ChemicalCompound.
type Term struct {
	Compound    Compound
	Coefficient float64
}

// ChemicalCompound is a named, immutable aggregate of terms.
type ChemicalCompound struct {
	name        string
	description string
	terms       []Term
	molarMass   float64
	composition Composition
	depth       int
}

// CompoundBuilder provides a fluent API for creating chemical compounds.
type CompoundBuilder struct {
	name        string
	description string
	terms       []Term
	index       map[Identity]int
	err         error
}

// NewCompound starts building a compound with the given name.
func NewCompound(name string) *CompoundBuilder {
	return &CompoundBuilder{
		name:  name,
		index: make(map[Identity]int),
	}
}

// Description sets an optional free-text description.
func (b *CompoundBuilder) Description(d string) *CompoundBuilder {
	b.description = d
	return b
}

// Term adds a constituent. Adding a compound whose identity is already
// present overwrites the earlier coefficient and keeps its position.
func (b *CompoundBuilder) Term(c Compound, coefficient float64) *CompoundBuilder {
	if b.err != nil {
		return b
	}
	if isNilCompound(c) {
		b.err = fmt.Errorf("%w (term %d of %q)", ErrNilTerm, len(b.terms), b.name)
		return b
	}

	id := c.Identity()
	if i, ok := b.index[id]; ok {
		b.terms[i] = Term{Compound: c, Coefficient: coefficient}
		return b
	}
	b.index[id] = len(b.terms)
	b.terms = append(b.terms, Term{Compound: c, Coefficient: coefficient})
	return b
}

// Terms adds several constituents in order.
func (b *CompoundBuilder) Terms(terms ...Term) *CompoundBuilder {
	for _, t := range terms {
		b.Term(t.Compound, t.Coefficient)
	}
	return b
}

// Build validates the compound and aggregates its molar mass and
// composition.
func (b *CompoundBuilder) Build() (*ChemicalCompound, error) {
	if b.err != nil {
		return nil, b.err
	}
	if strings.TrimSpace(b.name) == "" {
		return nil, ErrEmptyName
	}
	if len(b.terms) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTerms, b.name)
	}

	cc := &ChemicalCompound{
		name:        b.name,
		description: b.description,
		terms:       make([]Term, len(b.terms)),
	}
	copy(cc.terms, b.terms)

	for _, t := range cc.terms {
		if d := depthOf(t.Compound); d > cc.depth {
			cc.depth = d
		}
		cc.molarMass += t.Compound.MolarMass() * t.Coefficient
		cc.composition = cc.composition.Add(t.Compound.Composition().Scale(t.Coefficient))
	}
	cc.depth++

	if cc.depth > MaxDepth {
		return nil, fmt.Errorf("%w: %s has depth %d (max %d)", ErrTooDeep, b.name, cc.depth, MaxDepth)
	}
	return cc, nil
}

// MustBuild is like Build but panics on error.
func (b *CompoundBuilder) MustBuild() *ChemicalCompound {
	cc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cc
}

func isNilCompound(c Compound) bool {
	if c == nil {
		return true
	}
	if ch, ok := c.(Chemical); ok {
		return ch.compound == nil
	}
	return false
}

// Name returns the registry key of the compound.
func (c *ChemicalCompound) Name() string {
	return c.name
}

// Description returns the optional description.
func (c *ChemicalCompound) Description() string {
	return c.description
}

// HumanizedName returns the name with underscores removed.
// Display only; lookups always use Name.
func (c *ChemicalCompound) HumanizedName() string {
	return strings.ReplaceAll(c.name, "_", "")
}

// Terms returns a copy of the terms in insertion order.
func (c *ChemicalCompound) Terms() []Term {
	result := make([]Term, len(c.terms))
	copy(result, c.terms)
	return result
}

// MolarMass returns Σ term molar mass × coefficient.
func (c *ChemicalCompound) MolarMass() float64 {
	return c.molarMass
}

// Composition returns the weighted sum of the term compositions.
func (c *ChemicalCompound) Composition() Composition {
	return c.composition
}

// Depth returns the nesting depth. A compound made only of elements has
// depth 1.
func (c *ChemicalCompound) Depth() int {
	return c.depth
}

// Chemical returns the Compound view of c.
func (c *ChemicalCompound) Chemical() Chemical {
	return Chemical{compound: c}
}

// Identity returns the identity of the Chemical view.
func (c *ChemicalCompound) Identity() Identity {
	return c.Chemical().Identity()
}

// String returns the compound name.
func (c *ChemicalCompound) String() string {
	return c.name
}
