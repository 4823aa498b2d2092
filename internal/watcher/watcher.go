// Package watcher watches a catalog directory and signals, debounced, when
// its YAML definitions change.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/paths"
)

// Watcher monitors a catalog directory and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	CatalogDir  string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(catalogDir string) Config {
	return Config{
		CatalogDir:  catalogDir,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new catalog watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.CatalogDir == "" {
		return nil, fmt.Errorf("catalog directory is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.DebounceDur
	if debounce <= 0 {
		debounce = DefaultConfig(cfg.CatalogDir).DebounceDur
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       filepath.Clean(cfg.CatalogDir),
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start begins watching the catalog directory.
// Returns a channel that receives a signal when a catalog file changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	log.Debug(log.CatWatcher, "Watching catalog", "dir", w.dir, "debounce", w.debounce)

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatcher, "Catalog file changed", "file", filepath.Base(event.Name), "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if a signal is already queued
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watch error", "dir", w.dir, "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether the event should trigger a reload.
// Editors often save by rename, so removals and renames count too.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return paths.IsCatalogFile(event.Name)
}
