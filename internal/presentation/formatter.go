package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/chemkit/internal/catalog"
	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/humanize"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

const (
	defaultWidth          = 80
	descriptionListWidth  = 36
	columnGap             = "  "
	massPrecision         = 3
	diffDeleteOpen        = "[-"
	diffDeleteClose       = "-]"
	diffInsertOpen        = "{+"
	diffInsertClose       = "+}"
	tooltipIndent         = "    "
	compositionSeparator  = "  "
	descriptionWrapIndent = "  "
)

// Options configures a Formatter.
type Options struct {
	Format        string
	Humanizer     *humanize.Renderer
	Terminal      *lipgloss.Renderer // nil for lipgloss' default
	Hoverable     bool
	MarkdownStyle string
	Width         int
}

// Formatter handles output formatting
type Formatter struct {
	writer    io.Writer
	format    string
	humanizer *humanize.Renderer
	hoverable bool
	width     int
	markdown  string

	header   lipgloss.Style
	muted    lipgloss.Style
	warning  lipgloss.Style
	inserted lipgloss.Style
	deleted  lipgloss.Style
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts Options) (*Formatter, error) {
	switch opts.Format {
	case "":
		opts.Format = FormatText
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return nil, fmt.Errorf("unknown output format: %s", opts.Format)
	}
	if opts.Humanizer == nil {
		opts.Humanizer = humanize.NewRenderer()
	}
	if opts.Terminal == nil {
		opts.Terminal = lipgloss.DefaultRenderer()
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}

	t := opts.Terminal
	return &Formatter{
		writer:    writer,
		format:    opts.Format,
		humanizer: opts.Humanizer,
		hoverable: opts.Hoverable,
		width:     opts.Width,
		markdown:  opts.MarkdownStyle,
		header:    t.NewStyle().Bold(true),
		muted:     t.NewStyle().Faint(true),
		warning:   t.NewStyle().Foreground(lipgloss.Color("#F9E2AF")).Bold(true),
		inserted:  t.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		deleted:   t.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Strikethrough(true),
	}, nil
}

// Format returns the output format.
func (f *Formatter) Format() string {
	return f.format
}

// FormatCompounds writes a compound table.
func (f *Formatter) FormatCompounds(compounds []*chem.ChemicalCompound) error {
	dtos := FromCompounds(compounds)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dtos)
	case FormatMarkdown:
		return f.renderMarkdown(compoundsMarkdown(dtos))
	}

	rows := make([][]string, 0, len(compounds)+1)
	rows = append(rows, []string{
		f.header.Render("NAME"), f.header.Render("IDENTITY"),
		f.header.Render("MOLAR MASS"), f.header.Render("DESCRIPTION"),
	})
	for i, cc := range compounds {
		rows = append(rows, []string{
			f.humanizer.RenderCompound(cc),
			f.muted.Render(dtos[i].Identity),
			formatMass(dtos[i].MolarMass),
			runewidth.Truncate(dtos[i].Description, descriptionListWidth, "…"),
		})
	}
	return f.writeTable(rows)
}

// FormatCompound writes the details of one compound.
func (f *Formatter) FormatCompound(cc *chem.ChemicalCompound) error {
	dto := FromCompound(cc)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dto)
	case FormatMarkdown:
		return f.renderMarkdown(compoundMarkdown(dto))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", f.humanizer.RenderCompound(cc), f.muted.Render(dto.Identity))
	if dto.Description != "" {
		wrapped := wordwrap.String(dto.Description, f.width-len(descriptionWrapIndent))
		for _, line := range strings.Split(wrapped, "\n") {
			sb.WriteString(descriptionWrapIndent + line + "\n")
		}
	}
	fmt.Fprintf(&sb, "%s %s g/mol\n", f.header.Render("Molar mass:"), formatMass(dto.MolarMass))
	fmt.Fprintf(&sb, "%s %d\n", f.header.Render("Depth:"), dto.Depth)

	sb.WriteString(f.header.Render("Terms:") + "\n")
	rows := make([][]string, 0, len(dto.Terms))
	for _, t := range dto.Terms {
		rows = append(rows, []string{
			"  " + formatCount(t.Coefficient) + " ×",
			t.Name,
			f.muted.Render(t.Identity),
			formatMass(t.MolarMass),
		})
	}
	sb.WriteString(table(rows))

	parts := make([]string, len(dto.Composition))
	for i, a := range dto.Composition {
		parts[i] = a.Symbol + " " + formatCount(a.Count)
	}
	fmt.Fprintf(&sb, "%s %s\n", f.header.Render("Composition:"), strings.Join(parts, compositionSeparator))

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatFormulas writes one humanized formula per line.
func (f *Formatter) FormatFormulas(formulas []*chem.Formula) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(FromFormulas(formulas, f.humanizer, f.hoverable))
	case FormatMarkdown:
		return f.renderMarkdown(formulasMarkdown(FromFormulas(formulas, f.humanizer, false)))
	}

	rows := make([][]string, 0, len(formulas)+1)
	rows = append(rows, []string{f.header.Render("ID"), f.header.Render("FORMULA")})
	for _, formula := range formulas {
		rows = append(rows, []string{
			strconv.Itoa(int(formula.ID())),
			f.humanizer.RenderFormula(formula, false),
		})
	}
	return f.writeTable(rows)
}

// FormatFormula writes one formula. When hoverable, the condition tooltip
// is printed below the formula.
func (f *Formatter) FormatFormula(formula *chem.Formula) error {
	dto := FromFormula(formula, f.humanizer, f.hoverable)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dto)
	case FormatMarkdown:
		return f.renderMarkdown(formulaMarkdown(FromFormula(formula, f.humanizer, false)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d\n", f.header.Render("Formula"), dto.ID)
	sb.WriteString(f.humanizer.RenderFormula(formula, f.hoverable) + "\n")
	for _, tip := range dto.Tooltips {
		sb.WriteString(tooltipIndent + f.muted.Render("=== ") + tip + "\n")
	}
	fmt.Fprintf(&sb, "%s %s\n", f.header.Render("Raw:"), dto.Raw)
	if dto.Empty {
		sb.WriteString(f.warning.Render("unresolved") + "\n")
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatResolved writes the result of a resolve.
func (f *Formatter) FormatResolved(identity string, c chem.Compound) error {
	dto := FromResolved(identity, c)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dto)
	case FormatMarkdown:
		return f.renderMarkdown(resolvedMarkdown(dto))
	}

	if !dto.Found {
		_, err := fmt.Fprintf(f.writer, "%s %s\n", f.warning.Render("not found:"), identity)
		return err
	}

	parts := make([]string, len(dto.Composition))
	for i, a := range dto.Composition {
		parts[i] = a.Symbol + " " + formatCount(a.Count)
	}
	_, err := fmt.Fprintf(f.writer, "%s  %s  %s g/mol  %s\n",
		dto.Name, f.muted.Render(dto.Identity), formatMass(dto.MolarMass), strings.Join(parts, compositionSeparator))
	return err
}

// FormatDiagnostics writes diagnostics, oldest first.
func (f *Formatter) FormatDiagnostics(diags []catalog.Diagnostic) error {
	dtos := FromDiagnostics(diags)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dtos)
	case FormatMarkdown:
		return f.renderMarkdown(diagnosticsMarkdown(dtos))
	}

	var sb strings.Builder
	for _, d := range dtos {
		sb.WriteString(f.diagnosticLine(d))
	}
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatReport writes load totals followed by the diagnostics.
func (f *Formatter) FormatReport(reports ...catalog.Report) error {
	dto := FromReports(reports...)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(dto)
	case FormatMarkdown:
		return f.renderMarkdown(reportMarkdown(dto))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d file(s), %d compound(s), %d formula(s)\n",
		f.header.Render("Loaded"), len(dto.Files), dto.Compounds, dto.Formulas)
	for _, d := range dto.Diagnostics {
		sb.WriteString(f.diagnosticLine(d))
	}
	if len(dto.Diagnostics) == 0 {
		sb.WriteString(f.muted.Render("no diagnostics") + "\n")
	}
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatResult writes any value as JSON regardless of the format.
func (f *Formatter) FormatResult(result any) error {
	return f.encodeJSON(result)
}

func (f *Formatter) diagnosticLine(d DiagnosticDTO) string {
	level := string(d.Level)
	if d.Level == catalog.LevelWarning {
		level = f.warning.Render(level)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", level, d.Message)
	if d.Location != "" {
		sb.WriteString(" " + f.muted.Render("("+d.Location+")"))
	}
	sb.WriteString("\n")
	if len(d.Diff) > 0 {
		sb.WriteString(tooltipIndent + f.RenderDiff(d.Diff) + "\n")
	}
	return sb.String()
}

// RenderDiff renders a conflict diff inline in word-diff notation:
// deletions as [-text-] and insertions as {+text+}.
func (f *Formatter) RenderDiff(segments []catalog.DiffSegment) string {
	var sb strings.Builder
	for _, s := range segments {
		switch s.Op {
		case catalog.DiffDelete:
			sb.WriteString(f.deleted.Render(diffDeleteOpen + s.Text + diffDeleteClose))
		case catalog.DiffInsert:
			sb.WriteString(f.inserted.Render(diffInsertOpen + s.Text + diffInsertClose))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func (f *Formatter) encodeJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) writeTable(rows [][]string) error {
	_, err := io.WriteString(f.writer, table(rows))
	return err
}

// table pads cells to the widest cell of their column. Widths ignore ANSI
// escapes so styled cells line up.
func table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], ansi.StringWidth(cell))
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString(columnGap)
			}
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-ansi.StringWidth(cell)))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
	return sb.String()
}

func formatMass(m float64) string {
	return strconv.FormatFloat(m, 'f', massPrecision, 64)
}

// formatCount drops the fraction of whole counts.
func formatCount(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
