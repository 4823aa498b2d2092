package presentation

import (
	"github.com/zjrosen/chemkit/internal/catalog"
	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/humanize"
)

// CompoundDTO represents a chemical compound for presentation
type CompoundDTO struct {
	Name        string    `json:"name"`
	Humanized   string    `json:"humanized"`
	Identity    string    `json:"identity"`
	Description string    `json:"description,omitempty"`
	MolarMass   float64   `json:"molar_mass"`
	Depth       int       `json:"depth"`
	Terms       []TermDTO `json:"terms"`
	Composition []AtomDTO `json:"composition"`
}

// TermDTO is one constituent of a compound.
type TermDTO struct {
	Name        string  `json:"name"`
	Identity    string  `json:"identity"`
	Coefficient float64 `json:"coefficient"`
	MolarMass   float64 `json:"molar_mass"`
}

// AtomDTO is one composition entry.
type AtomDTO struct {
	Symbol string  `json:"symbol"`
	Count  float64 `json:"count"`
}

// FormulaDTO represents a formula with its humanized form
type FormulaDTO struct {
	ID         chem.FormulaID `json:"id"`
	Raw        string         `json:"raw"`
	Humanized  string         `json:"humanized"`
	Input      []ReactantDTO  `json:"input"`
	Output     []ReactantDTO  `json:"output"`
	Conditions []string       `json:"conditions"` // localized labels
	Tooltips   []string       `json:"tooltips,omitempty"`
	Empty      bool           `json:"empty"`
}

// ReactantDTO is one term of a formula side.
type ReactantDTO struct {
	Compound    string `json:"compound"`
	Coefficient int32  `json:"coefficient"`
}

// DiagnosticDTO is a catalog diagnostic with its rendered message.
type DiagnosticDTO struct {
	catalog.Diagnostic
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// ResolvedDTO is the result of resolving an identity.
type ResolvedDTO struct {
	Identity    string    `json:"identity"`
	Found       bool      `json:"found"`
	Kind        string    `json:"kind,omitempty"`
	Name        string    `json:"name,omitempty"`
	MolarMass   float64   `json:"molar_mass,omitempty"`
	Composition []AtomDTO `json:"composition,omitempty"`
}

// ReportDTO summarizes one or more catalog loads.
type ReportDTO struct {
	Sources     []string        `json:"sources"`
	Files       []string        `json:"files"`
	Compounds   int             `json:"compounds"`
	Formulas    int             `json:"formulas"`
	Diagnostics []DiagnosticDTO `json:"diagnostics"`
}

// FromCompound converts a compound to a DTO.
func FromCompound(cc *chem.ChemicalCompound) CompoundDTO {
	terms := make([]TermDTO, 0, len(cc.Terms()))
	for _, t := range cc.Terms() {
		terms = append(terms, TermDTO{
			Name:        compoundName(t.Compound),
			Identity:    t.Compound.Identity().String(),
			Coefficient: t.Coefficient,
			MolarMass:   t.Compound.MolarMass(),
		})
	}

	return CompoundDTO{
		Name:        cc.Name(),
		Humanized:   humanize.Subscript(cc.HumanizedName()),
		Identity:    cc.Identity().String(),
		Description: cc.Description(),
		MolarMass:   cc.MolarMass(),
		Depth:       cc.Depth(),
		Terms:       terms,
		Composition: fromComposition(cc.Composition()),
	}
}

// FromCompounds converts compounds to DTOs
func FromCompounds(compounds []*chem.ChemicalCompound) []CompoundDTO {
	dtos := make([]CompoundDTO, len(compounds))
	for i, cc := range compounds {
		dtos[i] = FromCompound(cc)
	}
	return dtos
}

// FromFormula converts a formula to a DTO, humanized by r.
func FromFormula(f *chem.Formula, r *humanize.Renderer, hoverable bool) FormulaDTO {
	text := r.Formula(f, hoverable)

	var tooltips []string
	for _, tip := range text.Tooltips() {
		tooltips = append(tooltips, tip.Plain())
	}

	conditions := make([]string, 0, f.Conditions().Len())
	for _, c := range f.Conditions().Slice() {
		if c == chem.ConditionNone {
			continue
		}
		conditions = append(conditions, r.ConditionLabel(c))
	}

	return FormulaDTO{
		ID:         f.ID(),
		Raw:        f.Raw(),
		Humanized:  text.Plain(),
		Input:      fromReactants(f.Input()),
		Output:     fromReactants(f.Output()),
		Conditions: conditions,
		Tooltips:   tooltips,
		Empty:      f.Empty(),
	}
}

// FromFormulas converts formulas to DTOs
func FromFormulas(formulas []*chem.Formula, r *humanize.Renderer, hoverable bool) []FormulaDTO {
	dtos := make([]FormulaDTO, len(formulas))
	for i, f := range formulas {
		dtos[i] = FromFormula(f, r, hoverable)
	}
	return dtos
}

// FromDiagnostic attaches the rendered message and location.
func FromDiagnostic(d catalog.Diagnostic) DiagnosticDTO {
	return DiagnosticDTO{Diagnostic: d, Message: d.Message(), Location: d.Location()}
}

// FromDiagnostics converts diagnostics to DTOs
func FromDiagnostics(diags []catalog.Diagnostic) []DiagnosticDTO {
	dtos := make([]DiagnosticDTO, len(diags))
	for i, d := range diags {
		dtos[i] = FromDiagnostic(d)
	}
	return dtos
}

// FromResolved converts a resolve result. A nil compound means not found.
func FromResolved(identity string, c chem.Compound) ResolvedDTO {
	dto := ResolvedDTO{Identity: identity}
	if c == nil {
		return dto
	}
	dto.Found = true
	dto.Identity = c.Identity().String()
	dto.Kind = c.Identity().Namespace
	dto.Name = compoundName(c)
	dto.MolarMass = c.MolarMass()
	dto.Composition = fromComposition(c.Composition())
	return dto
}

// FromReports merges load reports.
func FromReports(reports ...catalog.Report) ReportDTO {
	dto := ReportDTO{
		Sources:     []string{},
		Files:       []string{},
		Diagnostics: []DiagnosticDTO{},
	}
	for _, r := range reports {
		dto.Sources = append(dto.Sources, string(r.Source))
		dto.Files = append(dto.Files, r.Files...)
		dto.Compounds += r.Compounds
		dto.Formulas += r.Formulas
		dto.Diagnostics = append(dto.Diagnostics, FromDiagnostics(r.Diagnostics)...)
	}
	return dto
}

func fromReactants(rs []chem.Reactant) []ReactantDTO {
	dtos := make([]ReactantDTO, len(rs))
	for i, r := range rs {
		dtos[i] = ReactantDTO{Compound: r.Compound.Name(), Coefficient: r.Coefficient}
	}
	return dtos
}

func fromComposition(c chem.Composition) []AtomDTO {
	entries := c.Entries()
	dtos := make([]AtomDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AtomDTO{Symbol: string(e.Element.Symbol()), Count: e.Count}
	}
	return dtos
}

// compoundName is the element symbol or the compound name.
func compoundName(c chem.Compound) string {
	switch v := c.(type) {
	case chem.Element:
		return string(v.Symbol())
	case chem.Chemical:
		return v.Compound().Name()
	case *chem.ChemicalCompound:
		return v.Name()
	default:
		return c.Identity().String()
	}
}
