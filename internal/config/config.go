// Package config provides configuration types and defaults for chemkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/zjrosen/chemkit/internal/humanize"
	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/paths"
	"github.com/zjrosen/chemkit/internal/tracing"
)

// Output formats accepted by --format.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds all configuration options for chemkit.
type Config struct {
	CatalogDir string          `mapstructure:"catalog_dir"`
	BuiltIn    bool            `mapstructure:"builtin"`
	Debug      bool            `mapstructure:"debug"`
	LogPath    string          `mapstructure:"log_path"`
	Format     string          `mapstructure:"format"`
	Render     RenderConfig    `mapstructure:"render"`
	Theme      ThemeConfig     `mapstructure:"theme"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Watch      WatchConfig     `mapstructure:"watch"`
	Tracing    tracing.Config  `mapstructure:"tracing"`
	Flags      map[string]bool `mapstructure:"flags"`
}

// RenderConfig controls formula humanization.
type RenderConfig struct {
	Hoverable     bool   `mapstructure:"hoverable"`      // attach conditions as a tooltip instead of inline
	Language      string `mapstructure:"language"`       // BCP 47 tag for condition labels
	Color         bool   `mapstructure:"color"`          // false disables ANSI styling
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds per-role color overrides.
type ThemeConfig struct {
	// Colors overrides individual color tokens (see humanize.ColorTokens).
	// Supports both nested YAML structure and dot notation.
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// CacheConfig controls the identity resolution cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WatchConfig controls catalog watching for check --watch.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LanguageTag parses Render.Language, falling back to English.
func (r RenderConfig) LanguageTag() language.Tag {
	tag, err := language.Parse(r.Language)
	if err != nil {
		return language.Make(humanize.BaseLocale)
	}
	return tag
}

// DefaultTracesFilePath returns ~/.config/chemkit/traces/traces.jsonl or ""
// when the home directory is unknown.
func DefaultTracesFilePath() string {
	dir := paths.UserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// DefaultLogPath returns the debug log location.
func DefaultLogPath() string {
	return "debug.log"
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tracingCfg := tracing.DefaultConfig()
	tracingCfg.FilePath = DefaultTracesFilePath()

	return Config{
		BuiltIn: true,
		LogPath: DefaultLogPath(),
		Format:  FormatText,
		Render: RenderConfig{
			Hoverable:     false,
			Language:      humanize.BaseLocale,
			Color:         true,
			MarkdownStyle: "dark",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Tracing: tracingCfg,
	}
}

// Validate checks the configuration for errors. Empty values are valid
// and fall back to defaults.
func Validate(cfg Config) error {
	switch cfg.Format {
	case "", FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("format must be \"text\", \"json\", or \"markdown\", got %q", cfg.Format)
	}

	if err := ValidateRender(cfg.Render); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return cfg.Tracing.Validate()
}

// ValidateRender checks the language tag and markdown style.
func ValidateRender(r RenderConfig) error {
	if r.Language != "" {
		if _, err := language.Parse(r.Language); err != nil {
			return fmt.Errorf("render.language %q is not a valid language tag: %w", r.Language, err)
		}
	}
	switch r.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("render.markdown_style must be \"dark\" or \"light\", got %q", r.MarkdownStyle)
	}
	return nil
}

// ValidateTheme checks that every override names a known token and a hex
// color.
func ValidateTheme(theme ThemeConfig) error {
	if _, err := humanize.NewStyles(nil, theme.FlattenedColors()); err != nil {
		return fmt.Errorf("theme.colors: %w", err)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# chemkit configuration

# Directory holding catalog YAML files (default: ./.chemkit/catalog)
# catalog_dir: /path/to/catalog

# Load the embedded built-in catalog before user files
builtin: true

# Output format: text (default), json, or markdown
format: text

# Formula rendering
render:
  hoverable: false      # attach conditions to "===" as a tooltip instead of inline
  language: en          # condition label language (en, de)
  color: true           # ANSI colors in text output
  # markdown_style: dark  # "dark" (default) or "light"

# Override colors of rendered formula parts
# Tokens: coefficient, compound, joiner, separator, condition, tooltip
# theme:
#   colors:
#     compound: "#89B4FA"
#     separator: "#F38BA8"

# Identity resolution cache
cache:
  ttl: 5m

# Debounce for check --watch
watch:
  debounce: 300ms

# Feature flags
# flags:
#   strict-catalog: false   # unknown compounds in catalog formulas fail the load
#   resolve-cache: true     # cache identity resolution
#   diff-conflicts: true    # show a diff for conflicting formula definitions

# Tracing of catalog loading and resolution
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/chemkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
