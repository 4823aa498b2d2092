package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance with chemkit defaults registered.
// The "::" key delimiter keeps dotted color tokens in theme.colors intact.
func NewViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	SetDefaults(v)
	return v
}

// SetDefaults registers every default so env overrides and partial files
// fall back to Defaults().
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("catalog_dir", d.CatalogDir)
	v.SetDefault("builtin", d.BuiltIn)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("format", d.Format)
	v.SetDefault("render::hoverable", d.Render.Hoverable)
	v.SetDefault("render::language", d.Render.Language)
	v.SetDefault("render::color", d.Render.Color)
	v.SetDefault("render::markdown_style", d.Render.MarkdownStyle)
	v.SetDefault("cache::ttl", d.Cache.TTL)
	v.SetDefault("watch::debounce", d.Watch.Debounce)
	v.SetDefault("tracing::enabled", d.Tracing.Enabled)
	v.SetDefault("tracing::exporter", d.Tracing.Exporter)
	v.SetDefault("tracing::file_path", d.Tracing.FilePath)
	v.SetDefault("tracing::otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing::sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing::service_name", d.Tracing.ServiceName)
}

// Unmarshal decodes v into a Config and validates it.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
