package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// newMarkdownRenderer creates a glamour renderer. style should be "dark",
// "light" or "notty"; it defaults to "dark". A fixed style avoids the
// terminal background query of glamour.WithAutoStyle.
func newMarkdownRenderer(width int, style string) (*glamour.TermRenderer, error) {
	if style == "" {
		style = "dark"
	}
	return glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
}

func (f *Formatter) renderMarkdown(md string) error {
	r, err := newMarkdownRenderer(f.width, f.markdown)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(f.writer, out)
	return err
}

func compoundsMarkdown(dtos []CompoundDTO) string {
	var sb strings.Builder
	sb.WriteString("# Compounds\n\n")
	for _, c := range dtos {
		fmt.Fprintf(&sb, "- **%s** `%s` %s g/mol", c.Humanized, c.Identity, formatMass(c.MolarMass))
		if c.Description != "" {
			sb.WriteString(" " + c.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func compoundMarkdown(c CompoundDTO) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", c.Humanized)
	if c.Description != "" {
		sb.WriteString(c.Description + "\n\n")
	}
	fmt.Fprintf(&sb, "- Identity: `%s`\n", c.Identity)
	fmt.Fprintf(&sb, "- Molar mass: %s g/mol\n", formatMass(c.MolarMass))
	fmt.Fprintf(&sb, "- Depth: %d\n\n", c.Depth)

	sb.WriteString("## Terms\n\n")
	for _, t := range c.Terms {
		fmt.Fprintf(&sb, "- %s × %s `%s`\n", formatCount(t.Coefficient), t.Name, t.Identity)
	}
	sb.WriteString("\n## Composition\n\n")
	for _, a := range c.Composition {
		fmt.Fprintf(&sb, "- %s: %s\n", a.Symbol, formatCount(a.Count))
	}
	return sb.String()
}

func formulasMarkdown(dtos []FormulaDTO) string {
	var sb strings.Builder
	sb.WriteString("# Formulas\n\n")
	for _, f := range dtos {
		fmt.Fprintf(&sb, "%d. %s\n", f.ID, f.Humanized)
	}
	return sb.String()
}

func formulaMarkdown(f FormulaDTO) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Formula %d\n\n", f.ID)
	sb.WriteString(f.Humanized + "\n\n")
	fmt.Fprintf(&sb, "- Raw: `%s`\n", f.Raw)
	if len(f.Conditions) > 0 {
		fmt.Fprintf(&sb, "- Conditions: %s\n", strings.Join(f.Conditions, ", "))
	}
	return sb.String()
}

func resolvedMarkdown(r ResolvedDTO) string {
	if !r.Found {
		return fmt.Sprintf("Not found: `%s`\n", r.Identity)
	}
	return fmt.Sprintf("# %s\n\n- Identity: `%s`\n- Molar mass: %s g/mol\n", r.Name, r.Identity, formatMass(r.MolarMass))
}

func diagnosticsMarkdown(dtos []DiagnosticDTO) string {
	var sb strings.Builder
	sb.WriteString("# Diagnostics\n\n")
	if len(dtos) == 0 {
		sb.WriteString("No diagnostics.\n")
	}
	for _, d := range dtos {
		fmt.Fprintf(&sb, "- **%s** %s", d.Level, d.Message)
		if d.Location != "" {
			fmt.Fprintf(&sb, " (%s)", d.Location)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func reportMarkdown(r ReportDTO) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Loaded %d file(s), %d compound(s), %d formula(s).\n\n", len(r.Files), r.Compounds, r.Formulas)
	sb.WriteString(diagnosticsMarkdown(r.Diagnostics))
	return sb.String()
}
