package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/flags"
	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/paths"
	"github.com/zjrosen/chemkit/internal/tracing"
)

// Load errors
var (
	ErrInvalidDefinition   = errors.New("invalid catalog definition")
	ErrDuplicateDefinition = errors.New("compound defined more than once")
	ErrUnknownReference    = errors.New("reference to undefined compound")
	ErrCycleDetected       = errors.New("cycle detected in compound references")
	ErrStrictCatalog       = errors.New("catalog has unresolved formulas")
)

// File is the root structure of a catalog YAML file.
type File struct {
	Compounds []CompoundDef `yaml:"compounds"`
	Formulas  []FormulaDef  `yaml:"formulas"`
}

// CompoundDef defines one compound, either as an element shorthand or as a
// list of terms.
type CompoundDef struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Element     string    `yaml:"element"`
	Terms       []TermDef `yaml:"terms"`
}

// TermDef is one term of a compound: an element or a previously defined
// compound, with a count that defaults to 1.
type TermDef struct {
	Element  string   `yaml:"element"`
	Compound string   `yaml:"compound"`
	Count    *float64 `yaml:"count"`
}

// FormulaDef defines one formula.
type FormulaDef struct {
	ID         *int32   `yaml:"id"`
	Formula    string   `yaml:"formula"`
	Conditions []string `yaml:"conditions"`
}

// Report summarizes one load.
type Report struct {
	Source      Source
	Files       []string
	Compounds   int
	Formulas    int
	Diagnostics []Diagnostic
}

// Unresolved counts unknown-compound diagnostics of the load.
func (r Report) Unresolved() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == KindUnknownCompound {
			n++
		}
	}
	return n
}

// compoundEntry is a parsed definition with the file it came from.
type compoundEntry struct {
	def  CompoundDef
	file string
}

type formulaEntry struct {
	def  FormulaDef
	file string
}

// LoadDir loads every catalog file below dir.
func (c *Catalog) LoadDir(ctx context.Context, dir string, source Source) (Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Report{Source: source}, fmt.Errorf("catalog dir: %w", err)
	}
	if !info.IsDir() {
		return Report{Source: source}, fmt.Errorf("catalog dir %s is not a directory", dir)
	}
	return c.LoadFS(ctx, os.DirFS(dir), source)
}

// LoadFS loads every *.yaml and *.yml file of fsys in lexical path order.
//
// Compounds are defined in dependency order so a compound may reference one
// defined later in the file set. A reference to a compound that is neither
// in the file set nor already registered fails the load, as does a cycle.
// Formulas are defined after all compounds. Structural errors and
// malformed formulas abort the load; unknown compounds in formulas only
// produce diagnostics unless the strict-catalog flag is enabled.
func (c *Catalog) LoadFS(ctx context.Context, fsys fs.FS, source Source) (Report, error) {
	report := Report{Source: source}
	err := tracing.Run(ctx, c.tracer, tracing.SpanCatalogLoad, func(ctx context.Context, span trace.Span) error {
		compounds, formulas, files, err := readCatalogFiles(fsys)
		report.Files = files
		if err != nil {
			return err
		}
		for _, file := range files {
			span.AddEvent(tracing.EventFileParsed, trace.WithAttributes(attribute.String(tracing.AttrCatalogFile, file)))
		}

		ordered, err := c.orderCompounds(compounds)
		if err != nil {
			return err
		}
		for _, entry := range ordered {
			if err := c.loadCompound(ctx, origin{source: source, file: entry.file}, entry.def, &report); err != nil {
				return fmt.Errorf("%s: compound %q: %w", entry.file, entry.def.Name, err)
			}
		}

		for _, entry := range formulas {
			if err := c.loadFormula(ctx, origin{source: source, file: entry.file}, entry.def, &report); err != nil {
				return fmt.Errorf("%s: %w", entry.file, err)
			}
		}

		span.SetAttributes(
			attribute.Int(tracing.AttrCompoundCount, report.Compounds),
			attribute.Int(tracing.AttrFormulaCount, report.Formulas),
		)

		if n := report.Unresolved(); n > 0 && c.flags.Enabled(flags.FlagStrictCatalog) {
			return fmt.Errorf("%w: %d formula(s) reference unknown compounds", ErrStrictCatalog, n)
		}
		return nil
	}, attribute.String(tracing.AttrCatalogSource, string(source)))

	if err != nil {
		log.ErrorErr(log.CatCatalog, "Catalog load failed", err, "source", string(source))
		return report, err
	}
	log.Info(log.CatCatalog, "Catalog loaded", "source", string(source), "files", len(report.Files),
		"compounds", report.Compounds, "formulas", report.Formulas, "diagnostics", len(report.Diagnostics))
	return report, nil
}

// readCatalogFiles parses every catalog file and rejects duplicate compound
// names within the set.
func readCatalogFiles(fsys fs.FS) ([]compoundEntry, []formulaEntry, []string, error) {
	var (
		compounds []compoundEntry
		formulas  []formulaEntry
		files     []string
	)
	definedIn := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !paths.IsCatalogFile(d.Name()) {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		file, err := decodeFile(content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		files = append(files, path)

		for _, def := range file.Compounds {
			if prev, ok := definedIn[def.Name]; ok {
				return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateDefinition, def.Name, prev, path)
			}
			definedIn[def.Name] = path
			compounds = append(compounds, compoundEntry{def: def, file: path})
		}
		for _, def := range file.Formulas {
			formulas = append(formulas, formulaEntry{def: def, file: path})
		}
		return nil
	})
	if err != nil {
		return nil, nil, files, fmt.Errorf("scan catalog: %w", err)
	}
	return compounds, formulas, files, nil
}

// decodeFile rejects unknown keys so typos surface as errors.
func decodeFile(content []byte) (File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}
	return file, nil
}

// orderCompounds sorts definitions so every referenced compound comes
// first. It uses DFS with a recursion stack; file order breaks ties.
func (c *Catalog) orderCompounds(entries []compoundEntry) ([]compoundEntry, error) {
	byName := make(map[string]int, len(entries))
	for i, e := range entries {
		byName[e.def.Name] = i
	}

	visited := make(map[int]bool, len(entries))
	recStack := make(map[int]bool)
	ordered := make([]compoundEntry, 0, len(entries))

	var dfs func(i int) error
	dfs = func(i int) error {
		visited[i] = true
		recStack[i] = true

		entry := entries[i]
		for _, term := range entry.def.Terms {
			if term.Compound == "" {
				continue
			}
			dep, inSet := byName[term.Compound]
			if !inSet {
				if _, registered := c.names.Lookup(term.Compound); registered {
					continue
				}
				return fmt.Errorf("%w: %q (referenced by %q in %s)", ErrUnknownReference, term.Compound, entry.def.Name, entry.file)
			}
			if recStack[dep] {
				return fmt.Errorf("%w: %s -> %s", ErrCycleDetected, entry.def.Name, term.Compound)
			}
			if !visited[dep] {
				if err := dfs(dep); err != nil {
					return err
				}
			}
		}

		recStack[i] = false
		ordered = append(ordered, entry)
		return nil
	}

	for i := range entries {
		if !visited[i] {
			if err := dfs(i); err != nil {
				return nil, err
			}
		}
	}
	return ordered, nil
}

func (c *Catalog) loadCompound(ctx context.Context, from origin, def CompoundDef, report *Report) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if (def.Element == "") == (len(def.Terms) == 0) {
		return fmt.Errorf("%w: exactly one of element or terms is required", ErrInvalidDefinition)
	}

	builder := chem.NewCompound(def.Name).Description(def.Description)
	if def.Element != "" {
		el, err := chem.NewElement(c.table, def.Element)
		if err != nil {
			return err
		}
		builder.Term(el, 1)
	}

	for i, term := range def.Terms {
		compound, err := c.termCompound(term)
		if err != nil {
			return fmt.Errorf("term %d: %w", i, err)
		}
		count := 1.0
		if term.Count != nil {
			count = *term.Count
		}
		if count < 0 {
			return fmt.Errorf("%w: term %d: count must not be negative", ErrInvalidDefinition, i)
		}
		builder.Term(compound, count)
	}

	cc, err := builder.Build()
	if err != nil {
		return err
	}

	before := len(c.Diagnostics())
	retained, err := c.registerCompound(ctx, from, cc)
	if err != nil {
		return err
	}
	if retained == cc {
		report.Compounds++
	}
	report.Diagnostics = append(report.Diagnostics, c.diagnosticsSince(before)...)
	return nil
}

func (c *Catalog) termCompound(term TermDef) (chem.Compound, error) {
	switch {
	case term.Element != "" && term.Compound != "":
		return nil, fmt.Errorf("%w: element and compound are exclusive", ErrInvalidDefinition)
	case term.Element != "":
		return chem.NewElement(c.table, term.Element)
	case term.Compound != "":
		cc, ok := c.names.Lookup(term.Compound)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReference, term.Compound)
		}
		return cc.Chemical(), nil
	default:
		return nil, fmt.Errorf("%w: element or compound is required", ErrInvalidDefinition)
	}
}

func (c *Catalog) loadFormula(ctx context.Context, from origin, def FormulaDef, report *Report) error {
	if def.ID == nil {
		return fmt.Errorf("%w: formula %q has no id", ErrInvalidDefinition, def.Formula)
	}
	id := chem.FormulaID(*def.ID)

	conditions := make([]chem.Condition, 0, len(def.Conditions))
	for _, s := range def.Conditions {
		cond, err := chem.ParseCondition(s)
		if err != nil {
			return fmt.Errorf("formula %d: %w", id, err)
		}
		conditions = append(conditions, cond)
	}

	f, diag, err := c.defineFormula(ctx, from, id, def.Formula, chem.WithConditions(conditions...))
	if err != nil {
		return fmt.Errorf("formula %d: %w", id, err)
	}
	if diag != nil {
		report.Diagnostics = append(report.Diagnostics, *diag)
	}
	if diag == nil && !f.Empty() {
		report.Formulas++
	}
	return nil
}

// diagnosticsSince returns the diagnostics reported after the first n.
func (c *Catalog) diagnosticsSince(n int) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n >= len(c.diagnostics) {
		return nil
	}
	result := make([]Diagnostic, len(c.diagnostics)-n)
	copy(result, c.diagnostics[n:])
	return result
}
