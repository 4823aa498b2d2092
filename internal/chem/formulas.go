package chem

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Formula registry errors
var (
	ErrNilFormula      = errors.New("formula cannot be nil")
	ErrEmptyFormula    = errors.New("formula has no reactants or products")
	ErrFormulaConflict = errors.New("formula id conflict")
)

// ConflictError reports a registration under an id that already holds a
// formula with different raw text. The existing formula is kept.
type ConflictError struct {
	ID       FormulaID
	Existing *Formula
	Rejected *Formula
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: id %d is %q, rejected %q", ErrFormulaConflict, e.ID, e.Existing.Raw(), e.Rejected.Raw())
}

func (e *ConflictError) Unwrap() error {
	return ErrFormulaConflict
}

// Formulas is the process-wide formula registry keyed by id.
// Unlike Names, the first registrant of an id wins.
type Formulas struct {
	mu   sync.RWMutex
	byID map[FormulaID]*Formula
}

// NewFormulas creates an empty registry.
func NewFormulas() *Formulas {
	return &Formulas{byID: make(map[FormulaID]*Formula)}
}

// Register stores f under its id.
//
// Registering an id again with identical raw text is a no-op. A different
// raw text under a taken id returns a *ConflictError and leaves the
// existing entry in place.
func (r *Formulas) Register(f *Formula) error {
	if f == nil {
		return ErrNilFormula
	}
	if f.Empty() {
		return fmt.Errorf("%w: %d", ErrEmptyFormula, f.id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[f.id]
	if !ok {
		r.byID[f.id] = f
		return nil
	}
	if existing.raw == f.raw {
		return nil
	}
	return &ConflictError{ID: f.id, Existing: existing, Rejected: f}
}

// Get returns the formula registered under id.
func (r *Formulas) Get(id FormulaID) (*Formula, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	return f, ok
}

// List returns every registered formula sorted by id.
func (r *Formulas) List() []*Formula {
	r.mu.RLock()
	result := make([]*Formula, 0, len(r.byID))
	for _, f := range r.byID {
		result = append(result, f)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].id < result[j].id
	})
	return result
}

// Len returns the number of registered formulas.
func (r *Formulas) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
