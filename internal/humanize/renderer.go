package humanize

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/log"
)

const (
	termJoiner    = " + "
	yieldMarker   = "==="
	conditionJoin = ", "
)

// Renderer turns compounds and formulas into Text.
// A Renderer is immutable and safe for concurrent use.
type Renderer struct {
	styles  Styles
	lang    language.Tag
	printer *message.Printer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyles sets the styles used by Render helpers.
func WithStyles(s Styles) Option {
	return func(r *Renderer) {
		r.styles = s
	}
}

// WithLanguage selects the condition label language. Unsupported languages
// fall back to the closest supported one, or English.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.lang = tag
	}
}

// NewRenderer creates a renderer with default styles in English.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		styles: DefaultStyles(),
		lang:   language.Make(BaseLocale),
	}
	for _, opt := range opts {
		opt(r)
	}

	l, err := loadDefaultLocales()
	if err != nil {
		log.ErrorErr(log.CatRender, "Failed to load condition labels", err)
		r.printer = message.NewPrinter(r.lang)
	} else {
		r.lang = l.match(r.lang)
		r.printer = message.NewPrinter(r.lang, message.Catalog(l.catalog))
	}
	return r
}

// Language returns the matched label language.
func (r *Renderer) Language() language.Tag {
	return r.lang
}

// Styles returns the renderer styles.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Compound renders the humanized compound name with subscripted digits.
func (r *Renderer) Compound(cc *chem.ChemicalCompound) Text {
	var t Text
	if cc == nil {
		return t
	}
	t.Append(RoleCompound, Subscript(cc.HumanizedName()))
	return t
}

// Side renders one formula side: coefficients (omitted when 1) and
// compounds joined by " + ".
func (r *Renderer) Side(side []chem.Reactant) Text {
	var t Text
	for i, reactant := range side {
		if i > 0 {
			t.Append(RoleJoiner, termJoiner)
		}
		if reactant.Coefficient != 1 {
			t.Append(RoleCoefficient, strconv.FormatInt(int64(reactant.Coefficient), 10))
		}
		t.AppendText(r.Compound(reactant.Compound))
	}
	return t
}

// Formula renders reactants, the separator and products.
//
// The output is spaced for reading rather than echoing the source text:
// terms are joined by " + " and the separator is set off by single spaces,
// so "Zn+H2SO4===ZnSO4+H2" renders as "Zn + H₂SO₄ === ZnSO₄ + H₂".
//
// An unconditional formula gets a bare "===". Otherwise the condition list
// is attached to the separator as a tooltip when hoverable, or inlined as
// "===[Heating, Electrolysis]===".
func (r *Renderer) Formula(f *chem.Formula, hoverable bool) Text {
	var t Text
	if f == nil {
		return t
	}

	t.AppendText(r.Side(f.Input()))
	t.Append(RolePlain, " ")

	conditions := f.Conditions()
	switch {
	case conditions.IsUnconditional():
		t.Append(RoleSeparator, yieldMarker)
	case hoverable:
		tooltip := r.Conditions(conditions)
		t.Segments = append(t.Segments, Segment{Text: yieldMarker, Role: RoleSeparator, Tooltip: &tooltip})
	default:
		t.Append(RoleSeparator, yieldMarker+"[")
		t.AppendText(r.Conditions(conditions))
		t.Append(RoleSeparator, "]"+yieldMarker)
	}

	t.Append(RolePlain, " ")
	t.AppendText(r.Side(f.Output()))
	return t
}

// Conditions renders the localized labels of a condition set, skipping
// the "none" sentinel.
func (r *Renderer) Conditions(set chem.ConditionSet) Text {
	var t Text
	first := true
	for _, c := range set.Slice() {
		if c == chem.ConditionNone {
			continue
		}
		if !first {
			t.Append(RoleJoiner, conditionJoin)
		}
		t.Append(RoleCondition, r.ConditionLabel(c))
		first = false
	}
	return t
}

// ConditionLabel returns the localized label of c. Conditions without a
// catalog entry are title-cased.
func (r *Renderer) ConditionLabel(c chem.Condition) string {
	fallback := cases.Title(r.lang).String(strings.ReplaceAll(string(c), "_", " "))
	if !c.IsKnown() {
		log.Debug(log.CatRender, "No label for condition", "condition", string(c), "lang", r.lang.String())
	}
	return r.printer.Sprintf(message.Key("condition."+string(c), fallback))
}

// RenderFormula is Formula followed by Render with the renderer styles.
func (r *Renderer) RenderFormula(f *chem.Formula, hoverable bool) string {
	return r.Formula(f, hoverable).Render(r.styles)
}

// RenderCompound is Compound followed by Render with the renderer styles.
func (r *Renderer) RenderCompound(cc *chem.ChemicalCompound) string {
	return r.Compound(cc).Render(r.styles)
}
