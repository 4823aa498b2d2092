package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrCatalogSource = "catalog.source"
	AttrCatalogFile   = "catalog.file"
	AttrCompoundName  = "compound.name"
	AttrCompoundCount = "compound.count"
	AttrFormulaID     = "formula.id"
	AttrFormulaRaw    = "formula.raw"
	AttrFormulaCount  = "formula.count"
	AttrIdentity      = "identity"
	AttrResolved      = "resolve.found"
	AttrDiagnostic    = "diagnostic.kind"
	AttrErrorType     = "error.type"
)

// Span names.
const (
	SpanCatalogLoad    = "catalog.load"
	SpanDefineCompound = "catalog.define_compound"
	SpanDefineFormula  = "catalog.define_formula"
	SpanResolve        = "catalog.resolve"
)

// Event names.
const (
	EventDiagnostic       = "diagnostic.reported"
	EventCompoundReplaced = "compound.replaced"
	EventIdentityConflict = "compound.identity_collision"
	EventFileParsed       = "catalog.file_parsed"
)

// Run starts a span named name, calls fn with the span context and records
// the returned error on the span. A nil tracer runs fn without a span.
func Run(ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context, trace.Span) error, attrs ...attribute.KeyValue) error {
	if tracer == nil {
		return fn(ctx, trace.SpanFromContext(ctx))
	}

	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := fn(ctx, span)
	RecordResult(span, err)
	return err
}

// RecordResult sets the span status from err.
func RecordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
