package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/chemkit/internal/chem"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindUnknownCompound: a formula names a compound missing from the
	// registry. The formula stays empty and unregistered.
	KindUnknownCompound Kind = "unknown-compound"

	// KindFormulaConflict: a second, different formula claimed a taken id.
	// The first formula is kept.
	KindFormulaConflict Kind = "formula-conflict"

	// KindCompoundReplaced: a compound name was registered again and the
	// new definition replaced the old one.
	KindCompoundReplaced Kind = "compound-replaced"

	// KindIdentityCollision: a compound name maps to an identity already
	// held by a differently named compound. The first compound is kept.
	KindIdentityCollision Kind = "identity-collision"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Source tells where a definition came from.
type Source string

const (
	SourceCode    Source = "code"
	SourceBuiltIn Source = "built-in"
	SourceUser    Source = "user"
)

// origin locates a definition for diagnostics.
type origin struct {
	source Source
	file   string
}

var codeOrigin = origin{source: SourceCode}

// Diagnostic is a registration failure that was reported instead of
// returned as an error.
type Diagnostic struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Level     Level          `json:"level"`
	FormulaID chem.FormulaID `json:"formula_id,omitempty"`
	Compound  string         `json:"compound,omitempty"`
	Token     string         `json:"token,omitempty"`
	Raw       string         `json:"raw,omitempty"`
	Existing  string         `json:"existing,omitempty"`
	Rejected  string         `json:"rejected,omitempty"`
	Diff      []DiffSegment  `json:"diff,omitempty"`
	Source    Source         `json:"source,omitempty"`
	File      string         `json:"file,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
	Time      time.Time      `json:"time"`
}

func newDiagnostic(kind Kind, level Level, from origin) Diagnostic {
	return Diagnostic{
		ID:     uuid.New().String(),
		Kind:   kind,
		Level:  level,
		Source: from.source,
		File:   from.file,
		Time:   time.Now(),
	}
}

// Message returns a one-line description.
func (d Diagnostic) Message() string {
	switch d.Kind {
	case KindUnknownCompound:
		return fmt.Sprintf("formula %d: unknown chemical compound %q in %q", d.FormulaID, d.Token, d.Raw)
	case KindFormulaConflict:
		return fmt.Sprintf("formula %d: %q conflicts with registered %q", d.FormulaID, d.Rejected, d.Existing)
	case KindCompoundReplaced:
		return fmt.Sprintf("compound %q replaced", d.Compound)
	case KindIdentityCollision:
		return fmt.Sprintf("compound %q rejected: identity %s:%s is held by %q",
			d.Compound, chem.NamespaceChemical, d.Token, d.Existing)
	default:
		return string(d.Kind)
	}
}

// Location returns "source file" or whichever part is known.
func (d Diagnostic) Location() string {
	switch {
	case d.File != "" && d.Source != "":
		return fmt.Sprintf("%s %s", d.Source, d.File)
	case d.File != "":
		return d.File
	default:
		return string(d.Source)
	}
}

// DiffOp is the kind of a diff segment.
type DiffOp string

const (
	DiffEqual  DiffOp = "equal"
	DiffDelete DiffOp = "delete"
	DiffInsert DiffOp = "insert"
)

// DiffSegment is one run of a character diff between two raw formulas.
type DiffSegment struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// DiffFormulas returns the semantic character diff turning existing into
// rejected.
func DiffFormulas(existing, rejected string) []DiffSegment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(existing, rejected, false))

	segments := make([]DiffSegment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var op DiffOp
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		default:
			op = DiffEqual
		}
		segments = append(segments, DiffSegment{Op: op, Text: d.Text})
	}
	return segments
}
