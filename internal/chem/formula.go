package chem

import "strings"

// FormulaID is the author-assigned id of a formula and the key of the
// Formulas registry.
type FormulaID int32

// Reactant is one term of a formula side.
type Reactant struct {
	Compound    *ChemicalCompound
	Coefficient int32
}

// Formula is a parsed reaction definition.
type Formula struct {
	id         FormulaID
	raw        string
	input      []Reactant
	output     []Reactant
	conditions ConditionSet
	sensor     Sensor
}

// FormulaOption configures a Formula during parsing.
type FormulaOption func(*Formula)

// WithConditions attaches reaction conditions.
func WithConditions(conditions ...Condition) FormulaOption {
	return func(f *Formula) {
		f.conditions = NewConditionSet(append(f.conditions.Slice(), conditions...)...)
	}
}

// WithSensor attaches the limiting-factor callback.
func WithSensor(sensor Sensor) FormulaOption {
	return func(f *Formula) {
		f.sensor = sensor
	}
}

// ID returns the formula id.
func (f *Formula) ID() FormulaID {
	return f.id
}

// Raw returns the normalized formula text (whitespace stripped).
func (f *Formula) Raw() string {
	return f.raw
}

// Input returns a copy of the reactant side.
func (f *Formula) Input() []Reactant {
	return copyReactants(f.input)
}

// Output returns a copy of the product side.
func (f *Formula) Output() []Reactant {
	return copyReactants(f.output)
}

// Conditions returns the reaction conditions.
func (f *Formula) Conditions() ConditionSet {
	return f.conditions
}

// Sensor returns the limiting-factor callback, or nil.
func (f *Formula) Sensor() Sensor {
	return f.sensor
}

// Empty reports whether the formula has no reactants and no products.
// Formulas whose compounds could not be resolved are left empty.
func (f *Formula) Empty() bool {
	return len(f.input) == 0 && len(f.output) == 0
}

// Limit returns the sensor's limiting factor for env, or current unchanged
// when the formula has no sensor.
func (f *Formula) Limit(env Environment, current float64) float64 {
	if f.sensor == nil {
		return current
	}
	return f.sensor(env, f.conditions, current)
}

// Equal compares formulas by content: raw text, both sides and conditions.
// The id is not compared, so the same reaction authored under two ids is
// equal.
func (f *Formula) Equal(other *Formula) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.raw == other.raw &&
		reactantsEqual(f.input, other.input) &&
		reactantsEqual(f.output, other.output) &&
		f.conditions.Equal(other.conditions)
}

// String returns the normalized formula text.
func (f *Formula) String() string {
	return f.raw
}

func copyReactants(rs []Reactant) []Reactant {
	result := make([]Reactant, len(rs))
	copy(result, rs)
	return result
}

func reactantsEqual(a, b []Reactant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Coefficient != b[i].Coefficient || a[i].Compound.Name() != b[i].Compound.Name() {
			return false
		}
	}
	return true
}

// stripWhitespace removes every Unicode whitespace character.
func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
