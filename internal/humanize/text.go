// Package humanize renders compounds and formulas as structured styled
// text. Callers decide how to display the result: Plain for logs and
// tests, Render for terminals, or the segments directly for richer
// front ends that can show tooltips.
package humanize

import "strings"

// Role classifies a text segment for styling.
type Role int

const (
	RolePlain Role = iota
	RoleCoefficient
	RoleCompound
	RoleJoiner
	RoleSeparator
	RoleCondition
)

// String returns the theme token of the role.
func (r Role) String() string {
	switch r {
	case RoleCoefficient:
		return "coefficient"
	case RoleCompound:
		return "compound"
	case RoleJoiner:
		return "joiner"
	case RoleSeparator:
		return "separator"
	case RoleCondition:
		return "condition"
	default:
		return "plain"
	}
}

// Segment is a run of text with one role and an optional tooltip.
type Segment struct {
	Text    string
	Role    Role
	Tooltip *Text
}

// Text is a sequence of segments.
type Text struct {
	Segments []Segment
}

// Append adds a segment and returns the text for chaining.
func (t *Text) Append(role Role, s string) *Text {
	t.Segments = append(t.Segments, Segment{Text: s, Role: role})
	return t
}

// AppendText adds all segments of other.
func (t *Text) AppendText(other Text) *Text {
	t.Segments = append(t.Segments, other.Segments...)
	return t
}

// Plain concatenates the segment texts. Tooltips are not included.
func (t Text) Plain() string {
	var sb strings.Builder
	for _, s := range t.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Render concatenates the segments styled by role. A segment carrying a
// tooltip is rendered with the tooltip style since a terminal cannot
// hover.
func (t Text) Render(styles Styles) string {
	var sb strings.Builder
	for _, s := range t.Segments {
		style := styles.For(s.Role)
		if s.Tooltip != nil {
			style = styles.Tooltip
		}
		sb.WriteString(style.Render(s.Text))
	}
	return sb.String()
}

// Tooltips returns the tooltips attached to segments, in order.
func (t Text) Tooltips() []Text {
	var result []Text
	for _, s := range t.Segments {
		if s.Tooltip != nil {
			result = append(result, *s.Tooltip)
		}
	}
	return result
}

// Empty reports whether the text has no visible characters.
func (t Text) Empty() bool {
	for _, s := range t.Segments {
		if s.Text != "" {
			return false
		}
	}
	return true
}

const subscriptDigits = "₀₁₂₃₄₅₆₇₈₉"

var subscriptReplacer = func() *strings.Replacer {
	digits := []rune(subscriptDigits)
	pairs := make([]string, 0, 20)
	for i, r := range digits {
		pairs = append(pairs, string(rune('0'+i)), string(r))
	}
	return strings.NewReplacer(pairs...)
}()

// Subscript replaces ASCII digits with their Unicode subscript forms.
func Subscript(s string) string {
	return subscriptReplacer.Replace(s)
}
