// Package chem implements the domain layer of the compound and reaction
// formula engine.
//
// The package contains only standard library code. It has no knowledge of
// YAML files, logging, caches or rendering; those live in the catalog and
// humanize packages.
//
// # Compounds
//
// Compound is the capability set shared by every substance: an Identity,
// a molar mass and an atomic Composition. Two variants exist:
//   - Element wraps a single periodic table entry
//   - Chemical wraps a ChemicalCompound
//
// ChemicalCompound is a named, immutable aggregate of terms (Compound plus
// a real coefficient). It is built with NewCompound and a fluent builder.
// Molar mass and composition are aggregated once at build time from terms
// that are already immutable, so a compound graph built through this API is
// acyclic by construction. Nesting is bounded by MaxDepth.
//
// # Registries
//
// Names maps compound names to ChemicalCompounds. Registering a name twice
// overwrites the earlier entry (last write wins).
//
// Formulas maps formula ids to Formulas. Registering a different raw
// formula under an id that is already taken is rejected with a
// ConflictError and the first registrant is kept.
//
// The two policies differ on purpose; see the registry tests.
//
// # Formulas
//
// ParseFormula turns "Zn + H2SO4 === ZnSO4 + H2" into ordered input and
// output sides. Malformed syntax returns a SyntaxError. A name missing from
// the Names registry returns an empty Formula together with an
// UnknownCompoundError.
//
// # Resolution
//
// Resolver dispatches an Identity ("element:fe", "chemical:h2so4") to the
// Reader registered for its namespace.
package chem
