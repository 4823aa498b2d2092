// Package log provides structured logging for chemkit.
// Entries carry a level, a category and key=value fields, go to an
// append-only file and are published to subscribers. Logging is enabled
// by the --debug flag or CHEMKIT_DEBUG env.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/chemkit/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatChem     Category = "chem"     // Compound construction
	CatFormula  Category = "formula"  // Formula parsing
	CatRegistry Category = "registry" // Name and formula registration
	CatCatalog  Category = "catalog"  // Catalog loading and diagnostics
	CatConfig   Category = "config"   // Configuration loading/saving
	CatCache    Category = "cache"    // Resolve cache operations
	CatWatcher  Category = "watcher"  // File watcher events
	CatRender   Category = "render"   // Humanization and output formatting
	CatTrace    Category = "trace"    // Tracing provider lifecycle
	CatCmd      Category = "cmd"      // CLI commands
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string] // Pub/sub for log events
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init opens path for appending and installs it as the global logger. The
// first successful call wins; the returned func closes the file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: debug log path comes from config
		if err != nil {
			initErr = fmt.Errorf("opening log file: %w", err)
			return
		}
		defaultLogger = newLogger(f)
		defaultLogger.file = f
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	logger := defaultLogger
	return func() {
		if logger.file != nil {
			_ = logger.file.Close()
		}
	}, nil
}

// InitWriter installs a logger writing to w, replacing any existing one.
// The returned func restores the previous logger.
func InitWriter(w io.Writer) func() {
	previous := defaultLogger
	defaultLogger = newLogger(w)
	return func() {
		defaultLogger.broker.Close()
		defaultLogger = previous
	}
}

func newLogger(w io.Writer) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := formatEntry(time.Now(), level, cat, msg, fields)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// formatEntry renders one line:
//
//	2026-01-02T15:04:05 [WARN] [formula] Unknown compound id=7 token=Cu
//
// A trailing key without a value is written as key=<missing>.
func formatEntry(at time.Time, level Level, cat Category, msg string, fields []any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", at.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&sb, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	sb.WriteByte('\n')
	return sb.String()
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener reads log entries one at a time.
type LogListener = pubsub.Listener[string]

// NewListener subscribes to log entries until ctx is cancelled. It
// returns nil before Init.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewListener[string](ctx, defaultLogger.broker)
}
