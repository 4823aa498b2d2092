package chem

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Names errors
var (
	ErrNilCompound       = errors.New("compound cannot be nil")
	ErrIdentityCollision = errors.New("identity token held by another compound")
)

// IdentityCollisionError is returned when a compound's identity token is
// already held by a compound registered under a different name, e.g.
// "CA(OH)2" after "Ca(OH)2" (both ca-oh.2). The existing entry is kept.
type IdentityCollisionError struct {
	Token    string
	Existing *ChemicalCompound
	Rejected *ChemicalCompound
}

func (e *IdentityCollisionError) Error() string {
	return fmt.Sprintf("%s:%s: %q collides with registered %q",
		NamespaceChemical, e.Token, e.Rejected.Name(), e.Existing.Name())
}

func (e *IdentityCollisionError) Unwrap() error {
	return ErrIdentityCollision
}

// NameLookup finds chemical compounds by name.
type NameLookup interface {
	Lookup(name string) (*ChemicalCompound, bool)
}

// TokenLookup finds chemical compounds by identity token.
type TokenLookup interface {
	LookupToken(token string) (*ChemicalCompound, bool)
}

// Names is the process-wide compound name registry.
// It is safe for concurrent use; registration is expected during startup
// and lookups afterwards.
type Names struct {
	mu      sync.RWMutex
	byName  map[string]*ChemicalCompound
	byToken map[string]*ChemicalCompound
	order   []string
}

// NewNames creates an empty registry.
func NewNames() *Names {
	return &Names{
		byName:  make(map[string]*ChemicalCompound),
		byToken: make(map[string]*ChemicalCompound),
	}
}

// Register stores c under its name. An existing entry with the same name is
// overwritten (last write wins) and returned as previous.
//
// Identities stay unique: when another name already maps to the same
// identity token, nothing is stored and *IdentityCollisionError is returned.
func (n *Names) Register(c *ChemicalCompound) (previous *ChemicalCompound, err error) {
	if c == nil {
		return nil, ErrNilCompound
	}

	token := IdentityToken(c.name)

	n.mu.Lock()
	defer n.mu.Unlock()

	if holder, ok := n.byToken[token]; ok && holder.name != c.name {
		return nil, &IdentityCollisionError{Token: token, Existing: holder, Rejected: c}
	}

	previous = n.byName[c.name]
	if previous == nil {
		n.order = append(n.order, c.name)
	}
	n.byName[c.name] = c
	n.byToken[token] = c
	return previous, nil
}

// Lookup returns the compound registered under name.
// A blank name is never found.
func (n *Names) Lookup(name string) (*ChemicalCompound, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.byName[name]
	return c, ok
}

// LookupToken returns the compound whose identity token matches.
// The token is normalized with IdentityToken first, so both "ca-oh.2" and
// "Ca(OH)2" match.
func (n *Names) LookupToken(token string) (*ChemicalCompound, bool) {
	if strings.TrimSpace(token) == "" {
		return nil, false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.byToken[IdentityToken(token)]
	return c, ok
}

// List returns the registered compounds in first-registration order.
func (n *Names) List() []*ChemicalCompound {
	n.mu.RLock()
	defer n.mu.RUnlock()

	result := make([]*ChemicalCompound, 0, len(n.order))
	for _, name := range n.order {
		result = append(result, n.byName[name])
	}
	return result
}

// Len returns the number of registered names.
func (n *Names) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byName)
}

// Compile-time checks that Names implements the lookup interfaces.
var (
	_ NameLookup  = (*Names)(nil)
	_ TokenLookup = (*Names)(nil)
)
