package chem

import (
	"errors"
	"fmt"
	"strings"
)

// Condition errors
var (
	ErrUnknownCondition = errors.New("unknown reaction condition")
)

// Condition is an environmental prerequisite of a reaction. The engine
// never evaluates conditions; it stores, compares and renders them and
// hands them to the formula's Sensor.
type Condition string

const (
	ConditionNone         Condition = "none" // sentinel: no condition
	ConditionHeating      Condition = "heating"
	ConditionCooling      Condition = "cooling"
	ConditionElectrolysis Condition = "electrolysis"
	ConditionLight        Condition = "light"
	ConditionCatalyst     Condition = "catalyst"
	ConditionPressure     Condition = "pressure"
	ConditionIgnition     Condition = "ignition"
	ConditionWater        Condition = "water"
)

// knownConditions lists conditions in display order.
var knownConditions = []Condition{
	ConditionNone,
	ConditionHeating,
	ConditionCooling,
	ConditionElectrolysis,
	ConditionLight,
	ConditionCatalyst,
	ConditionPressure,
	ConditionIgnition,
	ConditionWater,
}

// KnownConditions returns every predefined condition.
func KnownConditions() []Condition {
	result := make([]Condition, len(knownConditions))
	copy(result, knownConditions)
	return result
}

// IsKnown reports whether c is one of the predefined conditions.
func (c Condition) IsKnown() bool {
	for _, k := range knownConditions {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCondition parses a predefined condition, case-insensitively.
func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCondition, s)
	}
	return c, nil
}

// ConditionSet is an ordered set of conditions without duplicates.
type ConditionSet struct {
	items []Condition
}

// NewConditionSet builds a set, dropping duplicates and keeping the first
// occurrence order.
func NewConditionSet(conditions ...Condition) ConditionSet {
	var s ConditionSet
	for _, c := range conditions {
		if !s.Has(c) {
			s.items = append(s.items, c)
		}
	}
	return s
}

// Has reports whether c is in the set.
func (s ConditionSet) Has(c Condition) bool {
	for _, item := range s.items {
		if item == c {
			return true
		}
	}
	return false
}

// Len returns the number of conditions.
func (s ConditionSet) Len() int {
	return len(s.items)
}

// Slice returns a copy of the conditions in order.
func (s ConditionSet) Slice() []Condition {
	result := make([]Condition, len(s.items))
	copy(result, s.items)
	return result
}

// IsUnconditional reports whether the set is empty or only holds
// ConditionNone. Such reactions are always applicable.
func (s ConditionSet) IsUnconditional() bool {
	for _, item := range s.items {
		if item != ConditionNone {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same conditions, in any order.
func (s ConditionSet) Equal(other ConditionSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for _, item := range s.items {
		if !other.Has(item) {
			return false
		}
	}
	return true
}

// Environment is the caller's view of the world a reaction happens in.
// It is passed through to a Sensor untouched.
type Environment any

// Sensor computes the limiting factor of a reaction from the environment,
// the reaction's conditions and the current value. It is called
// synchronously and must not block.
type Sensor func(env Environment, active ConditionSet, current float64) float64
