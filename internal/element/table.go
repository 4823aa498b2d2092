// Package element provides the periodic table lookup used to give elements
// their standard atomic weights.
package element

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Table errors
var (
	ErrEmptySymbol     = errors.New("element symbol cannot be empty")
	ErrDuplicateSymbol = errors.New("duplicate element symbol")
	ErrInvalidMass     = errors.New("element atomic mass must be positive")
)

// Symbol is a chemical element symbol such as "Fe".
type Symbol string

// Info describes a single element.
type Info struct {
	Number int     // atomic number
	Symbol Symbol  // e.g., "Fe"
	Name   string  // e.g., "Iron"
	Mass   float64 // standard atomic weight (g/mol)
}

// Table looks up elements by symbol or English name.
type Table interface {
	// Lookup finds an element by symbol or name, case-insensitively.
	Lookup(symbolOrName string) (Info, bool)

	// All returns every element ordered by atomic number.
	All() []Info
}

type table struct {
	bySymbol map[string]Info
	byName   map[string]Info
	ordered  []Info
}

// NewTable builds a Table from the given elements.
func NewTable(infos ...Info) (Table, error) {
	t := &table{
		bySymbol: make(map[string]Info, len(infos)),
		byName:   make(map[string]Info, len(infos)),
		ordered:  make([]Info, 0, len(infos)),
	}

	for _, info := range infos {
		if strings.TrimSpace(string(info.Symbol)) == "" {
			return nil, ErrEmptySymbol
		}
		if info.Mass <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMass, info.Symbol)
		}
		key := strings.ToLower(string(info.Symbol))
		if _, exists := t.bySymbol[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, info.Symbol)
		}
		t.bySymbol[key] = info
		if info.Name != "" {
			t.byName[strings.ToLower(info.Name)] = info
		}
		t.ordered = append(t.ordered, info)
	}

	sort.SliceStable(t.ordered, func(i, j int) bool {
		return t.ordered[i].Number < t.ordered[j].Number
	})
	return t, nil
}

// Lookup finds an element by symbol first, then by name.
func (t *table) Lookup(symbolOrName string) (Info, bool) {
	key := strings.ToLower(strings.TrimSpace(symbolOrName))
	if key == "" {
		return Info{}, false
	}
	if info, ok := t.bySymbol[key]; ok {
		return info, true
	}
	info, ok := t.byName[key]
	return info, ok
}

// All returns a copy of the elements ordered by atomic number.
func (t *table) All() []Info {
	result := make([]Info, len(t.ordered))
	copy(result, t.ordered)
	return result
}

var (
	standardTable Table
	standardOnce  sync.Once
)

// Standard returns the built-in periodic table with IUPAC conventional
// atomic weights. Elements without a stable isotope use the mass number of
// their longest-lived isotope.
func Standard() Table {
	standardOnce.Do(func() {
		t, err := NewTable(standardElements...)
		if err != nil {
			panic(fmt.Sprintf("element: invalid standard table: %v", err))
		}
		standardTable = t
	})
	return standardTable
}
