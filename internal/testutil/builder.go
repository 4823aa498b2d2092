package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/chemkit/internal/catalog"
	"github.com/zjrosen/chemkit/internal/chem"
)

// Builder accumulates compounds and formulas and registers them in order.
type Builder struct {
	t         *testing.T
	cat       *catalog.Catalog
	compounds []compoundData
	formulas  []formulaData
}

// NewBuilder creates a builder for the given catalog.
func NewBuilder(t *testing.T, cat *catalog.Catalog) *Builder {
	t.Helper()
	return &Builder{t: t, cat: cat}
}

// WithCompound adds a compound with optional terms.
func (b *Builder) WithCompound(name string, opts ...CompoundOption) *Builder {
	c := compoundData{name: name}
	for _, opt := range opts {
		opt(&c)
	}
	b.compounds = append(b.compounds, c)
	return b
}

// WithElements adds one single-element compound per symbol, named after it.
func (b *Builder) WithElements(symbols ...string) *Builder {
	for _, s := range symbols {
		b.WithCompound(s, Element(s, 1))
	}
	return b
}

// WithFormula adds a formula.
func (b *Builder) WithFormula(id chem.FormulaID, raw string, conditions ...chem.Condition) *Builder {
	b.formulas = append(b.formulas, formulaData{id: id, raw: raw, conditions: conditions})
	return b
}

// Build registers compounds first, then formulas, and returns the catalog.
func (b *Builder) Build() *catalog.Catalog {
	b.t.Helper()
	ctx := context.Background()

	for _, c := range b.compounds {
		builder := chem.NewCompound(c.name).Description(c.description)
		for _, term := range c.terms {
			builder.Term(b.termCompound(term), term.count)
		}
		cc, err := builder.Build()
		require.NoError(b.t, err, "compound %s", c.name)
		_, err = b.cat.RegisterCompound(ctx, cc)
		require.NoError(b.t, err, "register %s", c.name)
	}

	for _, f := range b.formulas {
		_, err := b.cat.DefineFormula(ctx, f.id, f.raw, chem.WithConditions(f.conditions...))
		require.NoError(b.t, err, "formula %d", f.id)
	}
	return b.cat
}

func (b *Builder) termCompound(term termData) chem.Compound {
	b.t.Helper()
	if term.compound != "" {
		cc, ok := b.cat.Compound(term.compound)
		require.True(b.t, ok, "compound %s must be added before it is referenced", term.compound)
		return cc.Chemical()
	}
	el, err := chem.NewElement(b.cat.Table(), term.element)
	require.NoError(b.t, err)
	return el
}
