// Package catalog owns the two-phase construction of compounds and
// formulas: values are built first, then registered explicitly. Registration
// failures that must not stop startup (unknown compounds, id conflicts,
// replaced names) become diagnostics that are logged, kept and published.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/chemkit/internal/cachemanager"
	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/element"
	"github.com/zjrosen/chemkit/internal/flags"
	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/pubsub"
	"github.com/zjrosen/chemkit/internal/tracing"
)

// DefaultCacheTTL is how long a resolved identity stays cached.
const DefaultCacheTTL = 5 * time.Minute

var errNotResolved = errors.New("identity not resolved")

// Catalog holds the registries of one process together with the resolver,
// the resolve cache and the diagnostics of every registration.
type Catalog struct {
	table    element.Table
	names    *chem.Names
	formulas *chem.Formulas
	resolver *chem.Resolver
	readers  []chem.Reader
	flags    *flags.Registry
	tracer   trace.Tracer

	cacheTTL     time.Duration
	cache        *cachemanager.InMemoryCacheManager[string, chem.Compound]
	resolveCache *cachemanager.ReadThroughCache[string, chem.Compound, chem.Identity]

	broker *pubsub.Broker[Diagnostic]

	mu          sync.RWMutex
	diagnostics []Diagnostic
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTable sets the periodic table used for elements.
func WithTable(table element.Table) Option {
	return func(c *Catalog) {
		c.table = table
	}
}

// WithTracer sets the tracer for catalog spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Catalog) {
		c.tracer = tracer
	}
}

// WithFlags sets the feature flags.
func WithFlags(f *flags.Registry) Option {
	return func(c *Catalog) {
		c.flags = f
	}
}

// WithCacheTTL sets the resolve cache TTL. Zero keeps the default.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithReaders adds reader strategies next to the element and chemical
// readers.
func WithReaders(readers ...chem.Reader) Option {
	return func(c *Catalog) {
		c.readers = append(c.readers, readers...)
	}
}

// New creates an empty catalog.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		names:    chem.NewNames(),
		formulas: chem.NewFormulas(),
		cacheTTL: DefaultCacheTTL,
		broker:   pubsub.NewBroker[Diagnostic](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.table == nil {
		c.table = element.Standard()
	}
	if c.flags == nil {
		c.flags = flags.New(nil)
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("catalog")
	}

	readers := append([]chem.Reader{
		chem.ElementReader(c.table),
		chem.ChemicalReader(c.names),
	}, c.readers...)
	resolver, err := chem.NewResolver(readers...)
	if err != nil {
		c.broker.Close()
		return nil, fmt.Errorf("building resolver: %w", err)
	}
	c.resolver = resolver

	c.cache = cachemanager.NewInMemoryCacheManager[string, chem.Compound]("resolve", c.cacheTTL, 2*c.cacheTTL)
	c.resolveCache = cachemanager.NewReadThroughCache[string, chem.Compound, chem.Identity](c.cache, c.resolveUncached, !c.flags.Enabled(flags.FlagResolveCache))

	return c, nil
}

// Close shuts down the diagnostic broker. Subscribers' channels are closed.
func (c *Catalog) Close() {
	c.broker.Close()
}

// Table returns the element table.
func (c *Catalog) Table() element.Table {
	return c.table
}

// Names returns the compound name registry.
func (c *Catalog) Names() *chem.Names {
	return c.names
}

// Resolver returns the reader dispatch.
func (c *Catalog) Resolver() *chem.Resolver {
	return c.resolver
}

// Flags returns the feature flags.
func (c *Catalog) Flags() *flags.Registry {
	return c.flags
}

// Compound looks up a compound by name.
func (c *Catalog) Compound(name string) (*chem.ChemicalCompound, bool) {
	return c.names.Lookup(name)
}

// Formula looks up a formula by id.
func (c *Catalog) Formula(id chem.FormulaID) (*chem.Formula, bool) {
	return c.formulas.Get(id)
}

// Compounds lists compounds in registration order.
func (c *Catalog) Compounds() []*chem.ChemicalCompound {
	return c.names.List()
}

// Formulas lists formulas sorted by id.
func (c *Catalog) Formulas() []*chem.Formula {
	return c.formulas.List()
}

// DefineCompound builds a compound from terms and registers it. A compound
// already registered under the name is replaced and a compound-replaced
// diagnostic is reported. A name whose identity is held by another compound
// is not registered: an identity-collision diagnostic is reported and the
// compound holding the identity is returned.
func (c *Catalog) DefineCompound(ctx context.Context, name string, terms ...chem.Term) (*chem.ChemicalCompound, error) {
	cc, err := chem.NewCompound(name).Terms(terms...).Build()
	if err != nil {
		return nil, err
	}
	return c.registerCompound(ctx, codeOrigin, cc)
}

// RegisterCompound registers an already built compound, with the same
// semantics as DefineCompound.
func (c *Catalog) RegisterCompound(ctx context.Context, cc *chem.ChemicalCompound) (*chem.ChemicalCompound, error) {
	return c.registerCompound(ctx, codeOrigin, cc)
}

// DefineElementCompound registers a compound named after the element
// symbol that wraps the element once, e.g. "Zn" is {element:zn: 1}.
func (c *Catalog) DefineElementCompound(ctx context.Context, symbolOrName string) (*chem.ChemicalCompound, error) {
	el, err := chem.NewElement(c.table, symbolOrName)
	if err != nil {
		return nil, err
	}
	return c.DefineCompound(ctx, string(el.Symbol()), chem.Term{Compound: el, Coefficient: 1})
}

// registerCompound returns the compound now holding cc's identity.
func (c *Catalog) registerCompound(ctx context.Context, from origin, cc *chem.ChemicalCompound) (*chem.ChemicalCompound, error) {
	if cc == nil {
		return nil, chem.ErrNilCompound
	}
	retained := cc
	err := tracing.Run(ctx, c.tracer, tracing.SpanDefineCompound, func(ctx context.Context, span trace.Span) error {
		previous, err := c.names.Register(cc)

		var collision *chem.IdentityCollisionError
		switch {
		case errors.As(err, &collision):
			span.AddEvent(tracing.EventIdentityConflict)
			d := newDiagnostic(KindIdentityCollision, LevelWarning, from)
			d.Compound = cc.Name()
			d.Existing = collision.Existing.Name()
			d.Token = collision.Token
			c.report(ctx, d)
			retained = collision.Existing
			return nil
		case err != nil:
			return err
		}
		log.Debug(log.CatRegistry, "Compound registered", "name", cc.Name(), "molar_mass", cc.MolarMass())

		if previous == nil {
			return nil
		}
		span.AddEvent(tracing.EventCompoundReplaced)
		if err := c.resolveCache.Invalidate(ctx, cacheKey(cc.Identity())); err != nil {
			log.ErrorErr(log.CatCache, "Failed to invalidate resolved compound", err, "identity", cc.Identity().String())
		}

		d := newDiagnostic(KindCompoundReplaced, LevelInfo, from)
		d.Compound = cc.Name()
		c.report(ctx, d)
		return nil
	}, attribute.String(tracing.AttrCompoundName, cc.Name()))
	if err != nil {
		return nil, err
	}
	return retained, nil
}

// DefineFormula parses raw and registers the formula under id.
//
// A malformed formula is a programming error and is returned as
// *chem.SyntaxError. Unknown compounds and id conflicts are reported as
// diagnostics instead: the call then returns the empty formula or the
// formula already registered under id, and a nil error.
func (c *Catalog) DefineFormula(ctx context.Context, id chem.FormulaID, raw string, opts ...chem.FormulaOption) (*chem.Formula, error) {
	f, _, err := c.defineFormula(ctx, codeOrigin, id, raw, opts...)
	return f, err
}

// MustDefineFormula is DefineFormula for static tables; it panics on a
// malformed formula.
func (c *Catalog) MustDefineFormula(id chem.FormulaID, raw string, opts ...chem.FormulaOption) *chem.Formula {
	f, err := c.DefineFormula(context.Background(), id, raw, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// defineFormula also returns the diagnostic reported for the formula, if any.
func (c *Catalog) defineFormula(ctx context.Context, from origin, id chem.FormulaID, raw string, opts ...chem.FormulaOption) (*chem.Formula, *Diagnostic, error) {
	var (
		result *chem.Formula
		diag   *Diagnostic
	)
	err := tracing.Run(ctx, c.tracer, tracing.SpanDefineFormula, func(ctx context.Context, span trace.Span) error {
		f, err := chem.ParseFormula(c.names, id, raw, opts...)

		var unknown *chem.UnknownCompoundError
		switch {
		case errors.As(err, &unknown):
			d := newDiagnostic(KindUnknownCompound, LevelWarning, from)
			d.FormulaID = unknown.ID
			d.Raw = unknown.Raw
			d.Token = unknown.Token
			diag = c.report(ctx, d)
			result = f
			return nil
		case err != nil:
			log.ErrorErr(log.CatFormula, "Malformed formula", err, "id", id, "raw", raw)
			span.SetAttributes(attribute.String(tracing.AttrErrorType, "malformed"))
			return err
		}

		err = c.formulas.Register(f)
		var conflict *chem.ConflictError
		switch {
		case errors.As(err, &conflict):
			d := newDiagnostic(KindFormulaConflict, LevelWarning, from)
			d.FormulaID = conflict.ID
			d.Existing = conflict.Existing.Raw()
			d.Rejected = conflict.Rejected.Raw()
			if c.flags.Enabled(flags.FlagDiffConflicts) {
				d.Diff = DiffFormulas(d.Existing, d.Rejected)
			}
			diag = c.report(ctx, d)
			result = conflict.Existing
			return nil
		case err != nil:
			return err
		}

		log.Debug(log.CatFormula, "Formula registered", "id", f.ID(), "raw", f.Raw())
		result = f
		return nil
	}, attribute.Int(tracing.AttrFormulaID, int(id)), attribute.String(tracing.AttrFormulaRaw, raw))
	if err != nil {
		return nil, nil, err
	}
	return result, diag, nil
}

// report stamps, logs, stores and publishes d.
func (c *Catalog) report(ctx context.Context, d Diagnostic) *Diagnostic {
	d.TraceID = tracing.TraceIDFromContext(ctx)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventDiagnostic,
		trace.WithAttributes(attribute.String(tracing.AttrDiagnostic, string(d.Kind))))

	fields := []any{"id", d.ID, "kind", string(d.Kind), "source", string(d.Source)}
	if d.File != "" {
		fields = append(fields, "file", d.File)
	}
	switch d.Level {
	case LevelWarning:
		log.Warn(log.CatCatalog, d.Message(), fields...)
	default:
		log.Info(log.CatCatalog, d.Message(), fields...)
	}

	c.mu.Lock()
	c.diagnostics = append(c.diagnostics, d)
	c.mu.Unlock()

	eventType := pubsub.RejectedEvent
	if d.Kind == KindCompoundReplaced {
		eventType = pubsub.ReplacedEvent
	}
	c.broker.Publish(eventType, d)
	return &d
}

// Diagnostics returns every diagnostic reported so far, oldest first.
func (c *Catalog) Diagnostics() []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Diagnostic, len(c.diagnostics))
	copy(result, c.diagnostics)
	return result
}

// Subscribe streams diagnostics reported after the call until ctx is done
// or the catalog is closed.
func (c *Catalog) Subscribe(ctx context.Context) <-chan pubsub.Event[Diagnostic] {
	return c.broker.Subscribe(ctx)
}

// Resolve dispatches an identity such as "element:fe" or "chemical:h2so4"
// to its reader. Results are cached unless the resolve-cache flag is off.
func (c *Catalog) Resolve(ctx context.Context, identity string) (chem.Compound, bool) {
	var compound chem.Compound
	_ = tracing.Run(ctx, c.tracer, tracing.SpanResolve, func(ctx context.Context, span trace.Span) error {
		id, err := chem.ParseIdentity(identity)
		if err != nil {
			log.Debug(log.CatCatalog, "Invalid identity", "identity", identity, "error", err)
			span.SetAttributes(attribute.Bool(tracing.AttrResolved, false))
			return nil
		}

		resolved, err := c.resolveCache.Get(ctx, cacheKey(id), id, c.cacheTTL)
		if err != nil {
			span.SetAttributes(attribute.Bool(tracing.AttrResolved, false))
			return nil
		}
		compound = resolved
		span.SetAttributes(attribute.Bool(tracing.AttrResolved, true))
		return nil
	}, attribute.String(tracing.AttrIdentity, identity))
	return compound, compound != nil
}

// CacheStats returns resolve cache hit and miss counts.
func (c *Catalog) CacheStats() cachemanager.Stats {
	return c.cache.Stats()
}

func (c *Catalog) resolveUncached(_ context.Context, id chem.Identity) (chem.Compound, error) {
	compound, ok := c.resolver.Resolve(id)
	if !ok {
		return nil, errNotResolved
	}
	return compound, nil
}

// cacheKey normalizes the name part the way the built-in readers do, so a
// replaced compound invalidates every spelling of its identity.
func cacheKey(id chem.Identity) string {
	if id.Namespace == chem.NamespaceChemical {
		return id.Namespace + ":" + chem.IdentityToken(id.Name)
	}
	return id.Namespace + ":" + strings.ToLower(id.Name)
}
