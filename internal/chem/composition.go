package chem

import "github.com/zjrosen/chemkit/internal/element"

// Atoms is one entry of a Composition: an element and how many of its atoms
// are present.
type Atoms struct {
	Element Element
	Count   float64
}

// Composition is an ordered mapping from Element to atom count.
// Entries keep the order in which elements were first added.
// The zero value is an empty composition.
type Composition struct {
	entries []Atoms
	index   map[element.Symbol]int
}

// NewComposition builds a composition from entries, accumulating repeated
// elements.
func NewComposition(entries ...Atoms) Composition {
	var c Composition
	for _, e := range entries {
		c.add(e.Element, e.Count)
	}
	return c
}

// add accumulates count onto the element's entry.
func (c *Composition) add(e Element, count float64) {
	if c.index == nil {
		c.index = make(map[element.Symbol]int)
	}
	if i, ok := c.index[e.Symbol()]; ok {
		c.entries[i].Count += count
		return
	}
	c.index[e.Symbol()] = len(c.entries)
	c.entries = append(c.entries, Atoms{Element: e, Count: count})
}

// Entries returns a copy of the entries in insertion order.
func (c Composition) Entries() []Atoms {
	result := make([]Atoms, len(c.entries))
	copy(result, c.entries)
	return result
}

// Get returns the atom count for a symbol, or 0 when absent.
func (c Composition) Get(symbol element.Symbol) float64 {
	if i, ok := c.index[symbol]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Has reports whether the element symbol is present.
func (c Composition) Has(symbol element.Symbol) bool {
	_, ok := c.index[symbol]
	return ok
}

// Len returns the number of distinct elements.
func (c Composition) Len() int {
	return len(c.entries)
}

// Total returns the sum of all atom counts.
func (c Composition) Total() float64 {
	var total float64
	for _, e := range c.entries {
		total += e.Count
	}
	return total
}

// Scale returns a new composition with every count multiplied by k.
func (c Composition) Scale(k float64) Composition {
	var result Composition
	for _, e := range c.entries {
		result.add(e.Element, e.Count*k)
	}
	return result
}

// Add returns a new composition holding the sum of c and other.
// Elements of c come first, followed by elements only present in other.
func (c Composition) Add(other Composition) Composition {
	var result Composition
	for _, e := range c.entries {
		result.add(e.Element, e.Count)
	}
	for _, e := range other.entries {
		result.add(e.Element, e.Count)
	}
	return result
}

// Map returns the composition as a plain symbol → count map.
func (c Composition) Map() map[element.Symbol]float64 {
	result := make(map[element.Symbol]float64, len(c.entries))
	for _, e := range c.entries {
		result[e.Element.Symbol()] = e.Count
	}
	return result
}
