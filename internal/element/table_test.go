package element

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandard_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		symbol Symbol
		mass   float64
	}{
		{"symbol", "Fe", "Fe", 55.845},
		{"lowercase symbol", "zn", "Zn", 65.38},
		{"english name", "oxygen", "O", 15.999},
		{"mixed case name", "SuLfUr", "S", 32.06},
		{"surrounding whitespace", "  H ", "H", 1.008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Standard().Lookup(tt.input)
			require.True(t, ok)
			require.Equal(t, tt.symbol, info.Symbol)
			require.InDelta(t, tt.mass, info.Mass, 1e-9)
		})
	}
}

func TestStandard_LookupUnknown(t *testing.T) {
	for _, input := range []string{"", "  ", "Xx", "unobtainium"} {
		_, ok := Standard().Lookup(input)
		require.False(t, ok, "input %q", input)
	}
}

func TestStandard_AllOrderedByNumber(t *testing.T) {
	all := Standard().All()
	require.Len(t, all, 118)
	for i, info := range all {
		require.Equal(t, i+1, info.Number)
		require.Positive(t, info.Mass)
	}
}

func TestStandard_AllReturnsCopy(t *testing.T) {
	all := Standard().All()
	all[0].Mass = 0

	info, ok := Standard().Lookup("H")
	require.True(t, ok)
	require.InDelta(t, 1.008, info.Mass, 1e-9)
}

func TestNewTable_Validation(t *testing.T) {
	_, err := NewTable(Info{Number: 1, Symbol: "", Name: "Nothing", Mass: 1})
	require.ErrorIs(t, err, ErrEmptySymbol)

	_, err = NewTable(Info{Number: 1, Symbol: "Q", Name: "Quux", Mass: 0})
	require.ErrorIs(t, err, ErrInvalidMass)

	_, err = NewTable(
		Info{Number: 1, Symbol: "Q", Name: "Quux", Mass: 1},
		Info{Number: 2, Symbol: "q", Name: "Quuz", Mass: 2},
	)
	require.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestNewTable_Custom(t *testing.T) {
	table, err := NewTable(
		Info{Number: 2, Symbol: "B", Name: "Beta", Mass: 2},
		Info{Number: 1, Symbol: "A", Name: "Alpha", Mass: 1},
	)
	require.NoError(t, err)

	all := table.All()
	require.Equal(t, Symbol("A"), all[0].Symbol)
	require.Equal(t, Symbol("B"), all[1].Symbol)

	info, ok := table.Lookup("beta")
	require.True(t, ok)
	require.Equal(t, Symbol("B"), info.Symbol)
}
