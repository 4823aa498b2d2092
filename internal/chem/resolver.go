package chem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zjrosen/chemkit/internal/element"
)

// Resolver errors
var (
	ErrEmptyNamespace     = errors.New("reader namespace cannot be empty")
	ErrNilDecoder         = errors.New("reader decoder cannot be nil")
	ErrDuplicateNamespace = errors.New("namespace already has a reader")
)

// Decoder materializes a compound from the name part of an identity.
type Decoder func(token string) (Compound, bool)

// Reader decodes identities of one namespace.
type Reader struct {
	Namespace string
	Decode    Decoder
}

// Resolver dispatches identities to the reader owning their namespace.
// It is built once and never mutated, so it is safe for concurrent use.
type Resolver struct {
	readers map[string]Decoder
}

// NewResolver builds a resolver from readers. Reader order does not matter;
// two readers for the same namespace are an error.
func NewResolver(readers ...Reader) (*Resolver, error) {
	r := &Resolver{readers: make(map[string]Decoder, len(readers))}
	for _, reader := range readers {
		if err := r.add(reader); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultResolver returns a resolver with the element and chemical readers.
func DefaultResolver(table element.Table, names TokenLookup) *Resolver {
	r, err := NewResolver(ElementReader(table), ChemicalReader(names))
	if err != nil {
		panic(err) // namespaces are distinct constants
	}
	return r
}

// With returns a new resolver with reader added. The receiver is unchanged.
func (r *Resolver) With(reader Reader) (*Resolver, error) {
	next := &Resolver{readers: make(map[string]Decoder, len(r.readers)+1)}
	for ns, decode := range r.readers {
		next.readers[ns] = decode
	}
	if err := next.add(reader); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *Resolver) add(reader Reader) error {
	if reader.Namespace == "" {
		return ErrEmptyNamespace
	}
	if reader.Decode == nil {
		return fmt.Errorf("%w: %s", ErrNilDecoder, reader.Namespace)
	}
	if _, exists := r.readers[reader.Namespace]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNamespace, reader.Namespace)
	}
	r.readers[reader.Namespace] = reader.Decode
	return nil
}

// CanHandle reports whether a reader is registered for namespace.
func (r *Resolver) CanHandle(namespace string) bool {
	_, ok := r.readers[namespace]
	return ok
}

// Namespaces returns the handled namespaces, sorted.
func (r *Resolver) Namespaces() []string {
	result := make([]string, 0, len(r.readers))
	for ns := range r.readers {
		result = append(result, ns)
	}
	sort.Strings(result)
	return result
}

// Resolve decodes id with the reader owning its namespace. An unhandled
// namespace or undecodable name yields (nil, false).
func (r *Resolver) Resolve(id Identity) (Compound, bool) {
	decode, ok := r.readers[id.Namespace]
	if !ok {
		return nil, false
	}
	return decode(id.Name)
}

// ResolveString parses s as "namespace:name" and resolves it.
func (r *Resolver) ResolveString(s string) (Compound, bool) {
	id, err := ParseIdentity(s)
	if err != nil {
		return nil, false
	}
	return r.Resolve(id)
}

// ElementReader decodes element symbols or names through table.
func ElementReader(table element.Table) Reader {
	return Reader{
		Namespace: NamespaceElement,
		Decode: func(token string) (Compound, bool) {
			e, err := NewElement(table, token)
			if err != nil {
				return nil, false
			}
			return e, true
		},
	}
}

// ChemicalReader decodes identity tokens through the name registry.
func ChemicalReader(names TokenLookup) Reader {
	return Reader{
		Namespace: NamespaceChemical,
		Decode: func(token string) (Compound, bool) {
			cc, ok := names.LookupToken(token)
			if !ok {
				return nil, false
			}
			return cc.Chemical(), true
		},
	}
}
