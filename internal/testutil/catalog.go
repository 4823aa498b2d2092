package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/chemkit/internal/catalog"
)

// NewTestCatalog creates an empty catalog that is closed when the test ends.
func NewTestCatalog(t *testing.T, opts ...catalog.Option) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(opts...)
	require.NoError(t, err)
	t.Cleanup(cat.Close)
	return cat
}

// WriteCatalogDir writes files (relative path → YAML content) into a fresh
// temp directory and returns it.
func WriteCatalogDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}
