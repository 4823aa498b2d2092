// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Directory and file names of the project layout.
const (
	ProjectDirName = ".chemkit"
	CatalogDirName = "catalog"
	ConfigFileName = "config.yaml"
	redirectName   = "redirect"
)

// ResolveCatalogDir resolves the catalog directory from user input.
// It accepts a project dir, its .chemkit dir, or a directory that already
// holds catalog YAML files, and follows redirect files so several projects
// can share one catalog.
//
// Input normalization:
//   - "/path/to/project" -> "/path/to/project/.chemkit/catalog"
//   - "/path/to/project/.chemkit" -> "/path/to/project/.chemkit/catalog"
//   - "/path/to/compounds" (containing *.yaml) -> "/path/to/compounds"
//   - "" -> "./.chemkit/catalog"
//
// Redirect handling:
//   - If catalog/redirect exists, its content is a path relative to the
//     catalog dir pointing at the shared catalog
func ResolveCatalogDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	if filepath.Base(path) == ProjectDirName {
		return followRedirect(filepath.Join(path, CatalogDirName))
	}

	if HasCatalogFiles(path) {
		return followRedirect(path)
	}

	return followRedirect(filepath.Join(path, ProjectDirName, CatalogDirName))
}

// HasCatalogFiles reports whether dir directly contains *.yaml or *.yml
// files.
func HasCatalogFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && IsCatalogFile(e.Name()) {
			return true
		}
	}
	return false
}

// IsCatalogFile reports whether name has a catalog file extension.
func IsCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// ProjectConfigPath returns ./.chemkit/config.yaml relative to dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectDirName, ConfigFileName)
}

// UserConfigDir returns ~/.config/chemkit, or "" when the home directory
// is unknown.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "chemkit")
}

// followRedirect checks for a redirect file and follows it if present.
func followRedirect(catalogDir string) string {
	redirectPath := filepath.Join(catalogDir, redirectName)

	content, err := os.ReadFile(redirectPath) //nolint:gosec // redirect path is within the catalog dir
	if err != nil {
		return catalogDir
	}

	redirectTarget := strings.TrimSpace(string(content))
	if redirectTarget == "" {
		return catalogDir
	}

	if filepath.IsAbs(redirectTarget) {
		return filepath.Clean(redirectTarget)
	}
	return filepath.Clean(filepath.Join(catalogDir, redirectTarget))
}
