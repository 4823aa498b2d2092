package testutil

import "github.com/zjrosen/chemkit/internal/chem"

// WithZincReaction adds Zn, H2SO4, ZnSO4 and H2 and formula 1:
// Zn + H2SO4 === ZnSO4 + H2.
func (b *Builder) WithZincReaction() *Builder {
	return b.
		WithElements("Zn").
		WithCompound("H2SO4", Description("Sulfuric acid"), Element("H", 2), Element("S", 1), Element("O", 4)).
		WithCompound("ZnSO4", Description("Zinc sulfate"), Element("Zn", 1), Element("S", 1), Element("O", 4)).
		WithCompound("H2", Description("Hydrogen gas"), Element("H", 2)).
		WithFormula(1, "Zn + H2SO4 === ZnSO4 + H2")
}

// WithWaterCycle adds H2, O2 and H2O with formation (id 10, ignition) and
// electrolysis (id 11) of water.
//
// Structure:
//
//	10: 2H2 + O2 === 2H2O      [ignition]
//	11: 2H2O === 2H2 + O2      [electrolysis]
func (b *Builder) WithWaterCycle() *Builder {
	return b.
		WithCompound("H2", Description("Hydrogen gas"), Element("H", 2)).
		WithCompound("O2", Description("Oxygen gas"), Element("O", 2)).
		WithCompound("H2O", Description("Water"), Element("H", 2), Element("O", 1)).
		WithFormula(10, "2H2 + O2 === 2H2O", chem.ConditionIgnition).
		WithFormula(11, "2H2O === 2H2 + O2", chem.ConditionElectrolysis)
}

// WithSlakedLime adds the hydroxide group and Ca(OH)2, which nests it.
func (b *Builder) WithSlakedLime() *Builder {
	return b.
		WithCompound("OH", Description("Hydroxide group"), Element("O", 1), Element("H", 1)).
		WithCompound("Ca(OH)2", Description("Slaked lime"), Element("Ca", 1), Sub("OH", 2))
}
