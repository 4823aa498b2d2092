package humanize

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale; other locales fall back to it.
const BaseLocale = "en"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// locales is the message catalog for every embedded locale.
type locales struct {
	catalog *catalog.Builder
	tags    []language.Tag // BaseLocale first
	matcher language.Matcher
}

var (
	defaultLocales    *locales
	defaultLocalesErr error
	localesOnce       sync.Once
)

func loadDefaultLocales() (*locales, error) {
	localesOnce.Do(func() {
		defaultLocales, defaultLocalesErr = loadLocales(embeddedLocales)
	})
	return defaultLocales, defaultLocalesErr
}

// loadLocales reads every locales/*.yaml file of fsys into a catalog.
func loadLocales(fsys fs.FS) (*locales, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	sort.Strings(paths)

	base := language.Make(BaseLocale)
	l := &locales{catalog: catalog.NewBuilder(catalog.Fallback(base))}
	tags := map[string]language.Tag{}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", path, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", path, err)
		}

		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", path, err)
		}
		for key, msg := range file.Messages {
			if err := l.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s key %s: %w", path, key, err)
			}
		}
		tags[tag.String()] = tag
	}

	if _, ok := tags[base.String()]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}

	l.tags = append(l.tags, base)
	delete(tags, base.String())
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l.tags = append(l.tags, tags[name])
	}
	l.matcher = language.NewMatcher(l.tags)
	return l, nil
}

// match returns the supported tag closest to tag.
func (l *locales) match(tag language.Tag) language.Tag {
	_, index, confidence := l.matcher.Match(tag)
	if confidence == language.No {
		return l.tags[0]
	}
	return l.tags[index]
}

// SupportedLanguages returns the languages with embedded labels, base
// locale first.
func SupportedLanguages() []language.Tag {
	l, err := loadDefaultLocales()
	if err != nil {
		return []language.Tag{language.Make(BaseLocale)}
	}
	result := make([]language.Tag, len(l.tags))
	copy(result, l.tags)
	return result
}
