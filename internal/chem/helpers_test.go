package chem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// el returns a standard-table element or fails the test.
func el(t *testing.T, symbol string) Element {
	t.Helper()
	e, err := NewElement(nil, symbol)
	require.NoError(t, err)
	return e
}

// zincNames registers Zn, H2SO4, ZnSO4 and H2.
func zincNames(t *testing.T) *Names {
	t.Helper()
	h, o, s, zn := el(t, "H"), el(t, "O"), el(t, "S"), el(t, "Zn")

	names := NewNames()
	for _, cc := range []*ChemicalCompound{
		NewCompound("Zn").Term(zn, 1).MustBuild(),
		NewCompound("H2SO4").Term(h, 2).Term(s, 1).Term(o, 4).MustBuild(),
		NewCompound("ZnSO4").Term(zn, 1).Term(s, 1).Term(o, 4).MustBuild(),
		NewCompound("H2").Term(h, 2).MustBuild(),
	} {
		_, err := names.Register(cc)
		require.NoError(t, err)
	}
	return names
}

// letterNames registers single-element compounds named A, B, C and D.
func letterNames(t *testing.T) *Names {
	t.Helper()
	names := NewNames()
	for name, symbol := range map[string]string{"A": "H", "B": "O", "C": "C", "D": "N"} {
		_, err := names.Register(NewCompound(name).Term(el(t, symbol), 1).MustBuild())
		require.NoError(t, err)
	}
	return names
}

// sideOf flattens a side into name → coefficient pairs in order.
func sideOf(rs []Reactant) [][2]any {
	result := make([][2]any, len(rs))
	for i, r := range rs {
		result[i] = [2]any{r.Compound.Name(), r.Coefficient}
	}
	return result
}
