package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/flags"
)

func newTestCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func withFlags(values map[string]bool) Option {
	return WithFlags(flags.New(values))
}

func term(t *testing.T, symbol string, n float64) chem.Term {
	t.Helper()
	e, err := chem.NewElement(nil, symbol)
	require.NoError(t, err)
	return chem.Term{Compound: e, Coefficient: n}
}

// defineZinc registers the compounds of Zn + H2SO4 === ZnSO4 + H2.
func defineZinc(t *testing.T, c *Catalog) {
	t.Helper()
	ctx := context.Background()
	_, err := c.DefineElementCompound(ctx, "Zn")
	require.NoError(t, err)
	_, err = c.DefineCompound(ctx, "H2SO4", term(t, "H", 2), term(t, "S", 1), term(t, "O", 4))
	require.NoError(t, err)
	_, err = c.DefineCompound(ctx, "ZnSO4", term(t, "Zn", 1), term(t, "S", 1), term(t, "O", 4))
	require.NoError(t, err)
	_, err = c.DefineCompound(ctx, "H2", term(t, "H", 2))
	require.NoError(t, err)
}
