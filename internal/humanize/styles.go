package humanize

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme color tokens, the keys accepted in the theme config.
const (
	TokenCoefficient = "coefficient"
	TokenCompound    = "compound"
	TokenJoiner      = "joiner"
	TokenSeparator   = "separator"
	TokenCondition   = "condition"
	TokenTooltip     = "tooltip"
)

// DefaultColors is the Catppuccin Mocha palette used when the theme sets
// nothing.
var DefaultColors = map[string]string{
	TokenCoefficient: "#FAB387", // peach
	TokenCompound:    "#94E2D5", // teal
	TokenJoiner:      "#6C7086", // overlay0
	TokenSeparator:   "#F38BA8", // red
	TokenCondition:   "#F9E2AF", // yellow
	TokenTooltip:     "#CBA6F7", // mauve
}

// Styles holds one lipgloss style per segment role.
type Styles struct {
	Plain       lipgloss.Style
	Coefficient lipgloss.Style
	Compound    lipgloss.Style
	Joiner      lipgloss.Style
	Separator   lipgloss.Style
	Condition   lipgloss.Style
	Tooltip     lipgloss.Style
}

// DefaultStyles returns the default palette on the default renderer.
func DefaultStyles() Styles {
	s, _ := NewStyles(nil, nil)
	return s
}

// NewStyles builds styles on renderer (nil for lipgloss' default) with
// overrides applied on top of DefaultColors. Unknown tokens and malformed
// hex colors are rejected.
func NewStyles(renderer *lipgloss.Renderer, overrides map[string]string) (Styles, error) {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	colors := maps.Clone(DefaultColors)
	for key, value := range overrides {
		token := strings.ToLower(strings.TrimSpace(key))
		if _, ok := DefaultColors[token]; !ok {
			return Styles{}, fmt.Errorf("unknown color token: %s", key)
		}
		if !IsValidHexColor(value) {
			return Styles{}, fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	color := func(token string) lipgloss.Color {
		return lipgloss.Color(colors[token])
	}

	return Styles{
		Plain:       renderer.NewStyle(),
		Coefficient: renderer.NewStyle().Foreground(color(TokenCoefficient)).Bold(true),
		Compound:    renderer.NewStyle().Foreground(color(TokenCompound)),
		Joiner:      renderer.NewStyle().Foreground(color(TokenJoiner)),
		Separator:   renderer.NewStyle().Foreground(color(TokenSeparator)).Bold(true),
		Condition:   renderer.NewStyle().Foreground(color(TokenCondition)).Italic(true),
		Tooltip:     renderer.NewStyle().Foreground(color(TokenTooltip)).Underline(true),
	}, nil
}

// For returns the style of a role.
func (s Styles) For(role Role) lipgloss.Style {
	switch role {
	case RoleCoefficient:
		return s.Coefficient
	case RoleCompound:
		return s.Compound
	case RoleJoiner:
		return s.Joiner
	case RoleSeparator:
		return s.Separator
	case RoleCondition:
		return s.Condition
	default:
		return s.Plain
	}
}

// ColorTokens returns the accepted theme tokens, sorted.
func ColorTokens() []string {
	return slices.Sorted(maps.Keys(DefaultColors))
}

// IsValidHexColor reports whether s is #RGB or #RRGGBB.
func IsValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
