package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/chemkit/internal/pubsub"
)

func TestLog_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	restore := InitWriter(&buf)
	defer restore()

	Warn(CatFormula, "Unknown compound", "id", 7, "token", "Cu")

	line := buf.String()
	require.Contains(t, line, "[WARN] [formula] Unknown compound id=7 token=Cu")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OddFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	restore := InitWriter(&buf)
	defer restore()

	Info(CatCatalog, "Loaded", "orphan")
	ErrorErr(CatCatalog, "Load failed", errors.New("boom"), "dir", "data")
	ErrorErr(CatCatalog, "Load failed", nil)

	out := buf.String()
	require.Contains(t, out, "orphan=<missing>")
	require.Contains(t, out, "[ERROR] [catalog] Load failed dir=data error=boom")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	restore := InitWriter(&buf)
	defer restore()

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hidden")
	Info(CatCache, "hidden")
	Error(CatCache, "shown")

	SetEnabled(false)
	Error(CatCache, "muted")

	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
	require.Contains(t, buf.String(), "shown")
}

func TestLog_PublishesToListener(t *testing.T) {
	var buf bytes.Buffer
	restore := InitWriter(&buf)
	defer restore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Debug(CatRegistry, "Compound replaced", "name", "H2O")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Equal(t, pubsub.LoggedEvent, event.Type)
	require.Contains(t, event.Payload, "Compound replaced name=H2O")
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}

func TestInit_File(t *testing.T) {
	previous := defaultLogger
	defer func() { defaultLogger = previous }()

	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatConfig, "Config loaded", "path", "config.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] Config loaded path=config.yaml")
}

func TestFormatEntry(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	got := formatEntry(at, LevelWarn, CatFormula, "Unknown compound", []any{"id", 7, "token"})
	require.Equal(t, "2026-01-02T15:04:05 [WARN] [formula] Unknown compound id=7 token=<missing>\n", got)

	got = formatEntry(at, LevelDebug, CatCmd, "Starting chemkit", nil)
	require.Equal(t, "2026-01-02T15:04:05 [DEBUG] [cmd] Starting chemkit\n", got)
}
