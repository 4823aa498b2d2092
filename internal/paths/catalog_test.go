package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestResolveCatalogDir(t *testing.T) {
	project := t.TempDir()
	compounds := t.TempDir()
	writeFile(t, filepath.Join(compounds, "acids.yml"), "compounds: []\n")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"project dir", project, filepath.Join(project, ".chemkit", "catalog")},
		{"project dir with trailing slash", project + "/", filepath.Join(project, ".chemkit", "catalog")},
		{".chemkit dir", filepath.Join(project, ".chemkit"), filepath.Join(project, ".chemkit", "catalog")},
		{"dir with catalog files", compounds, compounds},
		{"empty input", "", filepath.Join(".chemkit", "catalog")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveCatalogDir(tt.input))
		})
	}
}

func TestResolveCatalogDir_FollowsRedirect(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, "shared")
	writeFile(t, filepath.Join(shared, "base.yaml"), "compounds: []\n")
	writeFile(t, filepath.Join(root, "app", ".chemkit", "catalog", "redirect"), "../../../shared\n")

	require.Equal(t, shared, ResolveCatalogDir(filepath.Join(root, "app")))
}

func TestResolveCatalogDir_AbsoluteAndEmptyRedirect(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, "shared")
	writeFile(t, filepath.Join(root, "a", ".chemkit", "catalog", "redirect"), shared)
	writeFile(t, filepath.Join(root, "b", ".chemkit", "catalog", "redirect"), "  \n")

	require.Equal(t, shared, ResolveCatalogDir(filepath.Join(root, "a")))
	require.Equal(t, filepath.Join(root, "b", ".chemkit", "catalog"), ResolveCatalogDir(filepath.Join(root, "b")))
}

func TestIsCatalogFile(t *testing.T) {
	require.True(t, IsCatalogFile("acids.yaml"))
	require.True(t, IsCatalogFile("BASES.YML"))
	require.False(t, IsCatalogFile("notes.md"))
	require.False(t, IsCatalogFile("redirect"))
}

func TestConfigPaths(t *testing.T) {
	require.Equal(t, filepath.Join("proj", ".chemkit", "config.yaml"), ProjectConfigPath("proj"))
	if dir := UserConfigDir(); dir != "" {
		require.Equal(t, "chemkit", filepath.Base(dir))
	}
}
