package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/flags"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

const limeYAML = `
compounds:
  - name: Ca(OH)2
    description: Slaked lime
    terms:
      - element: Ca
      - compound: OH
        count: 2
  - name: OH
    terms:
      - element: O
      - element: H
  - name: H2O
    terms:
      - element: H
        count: 2
      - element: O
  - name: CaO
    terms:
      - element: Ca
      - element: O
formulas:
  - id: 6
    formula: CaO + H2O === Ca(OH)2
    conditions: [Heating]
`

func TestLoadFS_OrdersReferences(t *testing.T) {
	c := newTestCatalog(t)

	report, err := c.LoadFS(context.Background(), mapFS(map[string]string{"lime.yaml": limeYAML}), SourceUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"lime.yaml"}, report.Files)
	assert.Equal(t, 4, report.Compounds)
	assert.Equal(t, 1, report.Formulas)
	assert.Empty(t, report.Diagnostics)

	lime, ok := c.Compound("Ca(OH)2")
	require.True(t, ok)
	assert.Equal(t, "Slaked lime", lime.Description())
	assert.Equal(t, 2, lime.Depth())
	assert.InDelta(t, 74.09, lime.MolarMass(), 0.01)

	f, ok := c.Formula(6)
	require.True(t, ok)
	assert.True(t, f.Conditions().Has(chem.ConditionHeating))
}

func TestLoadFS_ReferencesAcrossFiles(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.LoadFS(context.Background(), mapFS(map[string]string{
		"a.yaml": "compounds:\n  - name: NaOH\n    terms:\n      - element: Na\n      - compound: OH\n",
		"b.yml":  "compounds:\n  - name: OH\n    terms:\n      - element: O\n      - element: H\n",
	}), SourceUser)
	require.NoError(t, err)

	_, ok := c.Compound("NaOH")
	assert.True(t, ok)
}

func TestLoadFS_ReferencesEarlierLoad(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.LoadBuiltIn(ctx)
	require.NoError(t, err)

	report, err := c.LoadFS(ctx, mapFS(map[string]string{
		"extra.yaml": `
compounds:
  - name: Ca(OH)2·8H2O
    terms:
      - compound: Ca(OH)2
      - compound: H2O
        count: 8
formulas:
  - id: 100
    formula: Ca(OH)2 + 8H2O === Ca(OH)2·8H2O
`,
	}), SourceUser)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Compounds)
	assert.Equal(t, 1, report.Formulas)
}

func TestLoadFS_ReplacementIsDiagnostic(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.LoadBuiltIn(ctx)
	require.NoError(t, err)

	report, err := c.LoadFS(ctx, mapFS(map[string]string{
		"water.yaml": "compounds:\n  - name: H2O\n    description: Heavy water\n    terms:\n      - element: H\n        count: 2\n      - element: O\n",
	}), SourceUser)
	require.NoError(t, err)

	require.Len(t, report.Diagnostics, 1)
	d := report.Diagnostics[0]
	assert.Equal(t, KindCompoundReplaced, d.Kind)
	assert.Equal(t, SourceUser, d.Source)
	assert.Equal(t, "water.yaml", d.File)
	assert.Equal(t, "user water.yaml", d.Location())

	water, _ := c.Compound("H2O")
	assert.Equal(t, "Heavy water", water.Description())
}

func TestLoadFS_IdentityCollisionIsDiagnostic(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.LoadFS(ctx, mapFS(map[string]string{"lime.yaml": limeYAML}), SourceUser)
	require.NoError(t, err)
	lime, ok := c.Compound("Ca(OH)2")
	require.True(t, ok)

	report, err := c.LoadFS(ctx, mapFS(map[string]string{
		"upper.yaml": "compounds:\n  - name: CA(OH)2\n    terms:\n      - element: Ca\n",
	}), SourceUser)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Compounds)

	require.Len(t, report.Diagnostics, 1)
	d := report.Diagnostics[0]
	assert.Equal(t, KindIdentityCollision, d.Kind)
	assert.Equal(t, LevelWarning, d.Level)
	assert.Equal(t, "upper.yaml", d.File)
	assert.Equal(t, "CA(OH)2", d.Compound)
	assert.Equal(t, "Ca(OH)2", d.Existing)

	got, ok := c.Resolve(ctx, "chemical:CA(OH)2")
	require.True(t, ok)
	assert.Same(t, lime, got)
}

func TestLoadFS_UnknownCompoundInFormula(t *testing.T) {
	files := map[string]string{
		"f.yaml": "compounds:\n  - name: Zn\n    element: Zn\nformulas:\n  - id: 1\n    formula: Zn + HCl === ZnCl2 + H2\n",
	}

	t.Run("lenient", func(t *testing.T) {
		c := newTestCatalog(t)
		report, err := c.LoadFS(context.Background(), mapFS(files), SourceUser)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Formulas)
		assert.Equal(t, 1, report.Unresolved())
		assert.Equal(t, "f.yaml", report.Diagnostics[0].File)
		assert.Equal(t, "HCl", report.Diagnostics[0].Token)
	})

	t.Run("strict", func(t *testing.T) {
		c := newTestCatalog(t, withFlags(map[string]bool{flags.FlagStrictCatalog: true}))
		report, err := c.LoadFS(context.Background(), mapFS(files), SourceUser)
		require.ErrorIs(t, err, ErrStrictCatalog)
		assert.Equal(t, 1, report.Unresolved())
	})
}

func TestLoadFS_ConflictAcrossFiles(t *testing.T) {
	c := newTestCatalog(t)
	report, err := c.LoadFS(context.Background(), mapFS(map[string]string{
		"a.yaml": "compounds:\n  - name: H2\n    terms:\n      - element: H\n        count: 2\nformulas:\n  - id: 1\n    formula: H2 === H2\n",
		"b.yaml": "formulas:\n  - id: 1\n    formula: 2H2 === 2H2\n",
	}), SourceUser)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Formulas)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, KindFormulaConflict, report.Diagnostics[0].Kind)
	assert.Equal(t, "b.yaml", report.Diagnostics[0].File)
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name: "cycle",
			files: map[string]string{"c.yaml": `
compounds:
  - name: A
    terms: [{compound: B}]
  - name: B
    terms: [{compound: A}]
`},
			wantErr: ErrCycleDetected,
		},
		{
			name:    "unknown reference",
			files:   map[string]string{"r.yaml": "compounds:\n  - name: A\n    terms: [{compound: Missing}]\n"},
			wantErr: ErrUnknownReference,
			wantMsg: `"Missing"`,
		},
		{
			name: "duplicate across files",
			files: map[string]string{
				"a.yaml": "compounds:\n  - name: H2\n    terms: [{element: H, count: 2}]\n",
				"b.yaml": "compounds:\n  - name: H2\n    terms: [{element: H, count: 2}]\n",
			},
			wantErr: ErrDuplicateDefinition,
			wantMsg: "a.yaml and b.yaml",
		},
		{
			name:    "element and terms",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: H\n    element: H\n    terms: [{element: H}]\n"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "no name",
			files:   map[string]string{"x.yaml": "compounds:\n  - element: H\n"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "negative count",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: H\n    terms: [{element: H, count: -1}]\n"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "term without target",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: H\n    terms: [{count: 2}]\n"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "unknown element",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: Xx\n    element: Xx\n"},
			wantErr: chem.ErrUnknownElement,
		},
		{
			name:    "formula without id",
			files:   map[string]string{"x.yaml": "formulas:\n  - formula: A === B\n"},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "unknown condition",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: H\n    element: H\nformulas:\n  - id: 1\n    formula: H === H\n    conditions: [magic]\n"},
			wantErr: chem.ErrUnknownCondition,
		},
		{
			name:    "malformed formula",
			files:   map[string]string{"x.yaml": "formulas:\n  - id: 1\n    formula: A + B\n"},
			wantErr: chem.ErrMalformedFormula,
		},
		{
			name:    "unknown field",
			files:   map[string]string{"x.yaml": "compounds:\n  - name: H\n    elemnt: H\n"},
			wantMsg: "parse x.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog(t)
			_, err := c.LoadFS(context.Background(), mapFS(tt.files), SourceUser)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				require.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadFS_SkipsOtherFilesAndEmptyYAML(t *testing.T) {
	c := newTestCatalog(t)
	report, err := c.LoadFS(context.Background(), mapFS(map[string]string{
		"README.md":  "# not a catalog",
		"empty.yaml": "",
		"notes.txt":  "compounds: nope",
	}), SourceUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty.yaml"}, report.Files)
	assert.Zero(t, report.Compounds)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gases"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gases", "o2.yaml"),
		[]byte("compounds:\n  - name: O2\n    terms: [{element: O, count: 2}]\n"), 0o600))

	c := newTestCatalog(t)
	report, err := c.LoadDir(context.Background(), dir, SourceUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"gases/o2.yaml"}, report.Files)

	_, err = c.LoadDir(context.Background(), filepath.Join(dir, "missing"), SourceUser)
	require.Error(t, err)

	_, err = c.LoadDir(context.Background(), filepath.Join(dir, "gases", "o2.yaml"), SourceUser)
	require.ErrorContains(t, err, "not a directory")
}

func TestLoadBuiltIn(t *testing.T) {
	c := newTestCatalog(t)

	report, err := c.LoadBuiltIn(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Diagnostics)
	assert.Equal(t, 31, report.Compounds)
	assert.Equal(t, 14, report.Formulas)
	assert.Len(t, report.Files, 4)

	for _, f := range c.Formulas() {
		assert.False(t, f.Empty(), "formula %d", f.ID())
	}

	lime, ok := c.Resolve(context.Background(), "chemical:ca-oh.2")
	require.True(t, ok)
	assert.InDelta(t, 74.09, lime.MolarMass(), 0.01)
}
