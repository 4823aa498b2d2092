package chem

import (
	"errors"
	"strings"
)

// Identity errors
var (
	ErrInvalidIdentity = errors.New("invalid identity format")
)

// Reserved identity namespaces.
const (
	NamespaceElement  = "element"
	NamespaceChemical = "chemical"
)

// Identity is the namespaced identifier of a Compound.
// Format: {namespace}:{name}
// Example: element:fe, chemical:ca-oh.2
type Identity struct {
	Namespace string
	Name      string
}

// NewIdentity creates an identity from its parts.
func NewIdentity(namespace, name string) Identity {
	return Identity{Namespace: namespace, Name: name}
}

// String returns the "namespace:name" form.
func (i Identity) String() string {
	return i.Namespace + ":" + i.Name
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.Namespace == "" && i.Name == ""
}

// ParseIdentity parses a colon-separated identity.
// Only the first colon separates namespace from name.
func ParseIdentity(s string) (Identity, error) {
	namespace, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || namespace == "" || name == "" {
		return Identity{}, ErrInvalidIdentity
	}
	return Identity{Namespace: namespace, Name: name}, nil
}

var tokenReplacer = strings.NewReplacer("(", "-", ")", ".")

// IdentityToken derives the identity name of a chemical compound from its
// display name: lower-cased, "(" becomes "-" and ")" becomes ".".
//
//	IdentityToken("Ca(OH)2") == "ca-oh.2"
//
// The mapping is idempotent.
func IdentityToken(name string) string {
	return tokenReplacer.Replace(strings.ToLower(name))
}
