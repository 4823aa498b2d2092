package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Empty(t, cfg.FilePath)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "chemkit", cfg.ServiceName)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero value", cfg: Config{}},
		{name: "sample rate too high", cfg: Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "negative sample rate", cfg: Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", cfg: Config{Exporter: "jaeger"}, wantErr: "tracing.exporter"},
		{name: "enabled file without path", cfg: Config{Enabled: true, Exporter: ExporterFile}, wantErr: "file_path"},
		{name: "disabled file without path", cfg: Config{Exporter: ExporterFile}},
		{name: "otlp", cfg: Config{Enabled: true, Exporter: ExporterOTLP, SampleRate: 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	tracer := provider.Tracer()
	require.NotNil(t, tracer)
	require.Equal(t, tracer, provider.Tracer(), "Tracer() should return a consistent instance")

	_, span := tracer.Start(context.Background(), "noop")
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no trace id")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: ExporterFile,
		FilePath: tracePath,
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, parent := provider.Tracer().Start(context.Background(), SpanCatalogLoad)
	_, child := provider.Tracer().Start(ctx, SpanDefineFormula)
	require.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	child.End()
	parent.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	names := []string{records[0].Name, records[1].Name}
	require.ElementsMatch(t, []string{SpanCatalogLoad, SpanDefineFormula}, names)
}

func TestNewProvider_NoExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	_, span := provider.Tracer().Start(context.Background(), "recorded")
	require.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile})
	require.ErrorContains(t, err, "file_path required")

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type")
}

func TestJSONLExporter_WritesRecords(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONLExporter(&buf)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanDefineFormula,
		SpanKind:  trace.SpanKindInternal,
		StartTime: start,
		EndTime:   start.Add(100 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{
			attribute.Int(AttrFormulaID, 7),
			attribute.String(AttrFormulaRaw, "Zn+H2SO4===ZnSO4+H2"),
		},
		Events: []sdktrace.Event{{
			Name:       EventDiagnostic,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.String(AttrDiagnostic, "unknown-compound")},
		}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	var record SpanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, SpanDefineFormula, record.Name)
	require.Equal(t, "INTERNAL", record.Kind)
	require.Equal(t, "OK", record.Status)
	require.InDelta(t, 100.0, record.DurationMs, 0.001)
	require.EqualValues(t, 7, record.Attributes[AttrFormulaID])
	require.Equal(t, "Zn+H2SO4===ZnSO4+H2", record.Attributes[AttrFormulaRaw])
	require.Len(t, record.Events, 1)
	require.Equal(t, "unknown-compound", record.Events[0].Attributes[AttrDiagnostic])
}

func TestJSONLExporter_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONLExporter(&buf)

	stub := tracetest.SpanStub{
		Name:   "failing",
		Status: sdktrace.Status{Code: codes.Error, Description: "malformed formula"},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	var record SpanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "ERROR", record.Status)
	require.Equal(t, "malformed formula", record.StatusMsg)
	require.Empty(t, record.ParentSpanID)
}

func TestJSONLExporter_EmptyAndShutdown(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONLExporter(&buf)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.Zero(t, buf.Len())

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "shutdown is idempotent")

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}

func TestFileExporter_AppendsAndCreatesDirs(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(tracePath), 0750))
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"name":"existing"}`+"\n"), 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{Name: SpanResolve}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "existing", records[0].Name)
	require.Equal(t, SpanResolve, records[1].Name)
}

func TestFileExporter_ConcurrentExports(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				stub := tracetest.SpanStub{
					Name:       "concurrent",
					Attributes: []attribute.KeyValue{attribute.Int("worker", worker)},
				}
				_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, tracePath), 200)
}

func TestSpanKindToString(t *testing.T) {
	tests := []struct {
		kind     trace.SpanKind
		expected string
	}{
		{trace.SpanKindInternal, "INTERNAL"},
		{trace.SpanKindServer, "SERVER"},
		{trace.SpanKindClient, "CLIENT"},
		{trace.SpanKindProducer, "PRODUCER"},
		{trace.SpanKindConsumer, "CONSUMER"},
		{trace.SpanKindUnspecified, "UNSPECIFIED"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, spanKindToString(tt.kind))
		})
	}
}

func TestRun_RecordsOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	var innerTraceID string
	err := Run(context.Background(), tracer, SpanDefineCompound, func(ctx context.Context, span trace.Span) error {
		innerTraceID = TraceIDFromContext(ctx)
		return nil
	}, attribute.String(AttrCompoundName, "H2SO4"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = Run(context.Background(), tracer, SpanDefineFormula, func(context.Context, trace.Span) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	require.Equal(t, SpanDefineCompound, spans[0].Name())
	require.Equal(t, codes.Ok, spans[0].Status().Code)
	require.Equal(t, spans[0].SpanContext().TraceID().String(), innerTraceID)
	require.Contains(t, spans[0].Attributes(), attribute.String(AttrCompoundName, "H2SO4"))

	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "boom", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1, "error is recorded as an event")
}

func TestRun_NilTracer(t *testing.T) {
	called := false
	err := Run(context.Background(), nil, "untraced", func(ctx context.Context, span trace.Span) error {
		called = true
		require.NotNil(t, span)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestTraceIDFromContext(t *testing.T) {
	//nolint:staticcheck // nil context handling
	require.Empty(t, TraceIDFromContext(nil))
	require.Empty(t, TraceIDFromContext(context.Background()))

	ctx := ContextWithTraceID(context.Background(), "abc123")
	require.Equal(t, "abc123", TraceIDFromContext(ctx))
	require.Equal(t, "abc123", TraceIDFromContext(ContextWithTraceID(ctx, "")), "empty id keeps the previous one")
}

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	return records
}
