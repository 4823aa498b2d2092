package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/chemkit/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.True(t, cfg.BuiltIn)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, "en", cfg.Render.Language)
	assert.True(t, cfg.Render.Color)
	assert.False(t, cfg.Render.Hoverable)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero value", mutate: func(c *Config) { *c = Config{} }},
		{name: "json format", mutate: func(c *Config) { c.Format = FormatJSON }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, wantErr: "format must be"},
		{name: "german", mutate: func(c *Config) { c.Render.Language = "de-CH" }},
		{name: "bad language", mutate: func(c *Config) { c.Render.Language = "not a tag!" }, wantErr: "render.language"},
		{name: "bad markdown style", mutate: func(c *Config) { c.Render.MarkdownStyle = "neon" }, wantErr: "markdown_style"},
		{
			name:   "color override",
			mutate: func(c *Config) { c.Theme.Colors = map[string]any{"compound": "#FF0000"} },
		},
		{
			name:    "unknown color token",
			mutate:  func(c *Config) { c.Theme.Colors = map[string]any{"reactant": "#FF0000"} },
			wantErr: "unknown color token",
		},
		{
			name:    "invalid hex",
			mutate:  func(c *Config) { c.Theme.Colors = map[string]any{"compound": "blue"} },
			wantErr: "invalid hex color",
		},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: "cache.ttl"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.Debounce = -time.Second }, wantErr: "watch.debounce"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Tracing.SampleRate = 2 }, wantErr: "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRenderConfig_LanguageTag(t *testing.T) {
	assert.Equal(t, "de", RenderConfig{Language: "de"}.LanguageTag().String())
	assert.Equal(t, "en", RenderConfig{Language: "???"}.LanguageTag().String())
}

func TestThemeConfig_FlattenedColors(t *testing.T) {
	theme := ThemeConfig{Colors: map[string]any{
		"compound": "#FF0000",
		"nested": map[string]any{
			"inner": "#00FF00",
		},
		"legacy": map[any]any{
			"key": "#0000FF",
			42:    "#FFFFFF",
		},
		"ignored": 12,
	}}

	assert.Equal(t, map[string]string{
		"compound":     "#FF0000",
		"nested.inner": "#00FF00",
		"legacy.key":   "#0000FF",
	}, theme.FlattenedColors())
}

func TestDefaultConfigTemplate_ParsesAndMatchesDefaults(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	cfg := loadConfigFromYAML(t, DefaultConfigTemplate())
	defaults := Defaults()

	assert.Equal(t, defaults.BuiltIn, cfg.BuiltIn)
	assert.Equal(t, defaults.Format, cfg.Format)
	assert.Equal(t, defaults.Render, cfg.Render)
	assert.Equal(t, defaults.Cache, cfg.Cache)
	assert.Equal(t, defaults.Watch, cfg.Watch)
}

func TestUnmarshal_FileOverridesDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
catalog_dir: /srv/catalog
format: json
render:
  hoverable: true
  language: de
theme:
  colors:
    separator: "#F38BA8"
cache:
  ttl: 30s
flags:
  strict-catalog: true
tracing:
  enabled: true
  exporter: stdout
`)

	assert.Equal(t, "/srv/catalog", cfg.CatalogDir)
	assert.True(t, cfg.BuiltIn, "unset keys keep defaults")
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.Render.Hoverable)
	assert.Equal(t, "de", cfg.Render.Language)
	assert.True(t, cfg.Render.Color)
	assert.Equal(t, "#F38BA8", cfg.Theme.FlattenedColors()["separator"])
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, map[string]bool{"strict-catalog": true}, cfg.Flags)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, tracing.ExporterStdout, cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)
}

func TestUnmarshal_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: xml\n"), 0o644))

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	_, err := Unmarshal(v)
	require.ErrorContains(t, err, "invalid config")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".chemkit", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDefaultTracesFilePath(t *testing.T) {
	t.Setenv("HOME", "/home/chemist")
	assert.Equal(t, filepath.Join("/home/chemist", ".config", "chemkit", "traces", "traces.jsonl"), DefaultTracesFilePath())
}

func loadConfigFromYAML(t *testing.T, content string) Config {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	v := NewViper()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Unmarshal(v)
	require.NoError(t, err)
	return cfg
}
