// Package flags provides feature flags read from configuration.
// Flags are read-only after initialization. Known flags fall back to their
// default when the config leaves them unset; unknown flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/chemkit/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagStrictCatalog turns unknown-compound diagnostics during a catalog
	// load into a load error.
	FlagStrictCatalog = "strict-catalog"

	// FlagResolveCache caches identity resolution results. When disabled
	// every resolve goes to the readers.
	FlagResolveCache = "resolve-cache"

	// FlagDiffConflicts adds a character diff of both raw formulas to
	// formula-conflict diagnostics.
	FlagDiffConflicts = "diff-conflicts"
)

// defaults holds the value of each known flag when config omits it.
var defaults = map[string]bool{
	FlagStrictCatalog: false,
	FlagResolveCache:  true,
	FlagDiffConflicts: true,
}

// Defaults returns a copy of the known flags and their default values.
func Defaults() map[string]bool {
	return maps.Clone(defaults)
}

// Known returns the names of all known flags, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over the defaults.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	for name, value := range flags {
		if _, known := defaults[name]; !known {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		merged[name] = value
	}
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
