package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a configuration file for changes and triggers
// reloads. Rapid successive writes are debounced so a single editor
// save does not cause a reload storm.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// DefaultDebounceInterval is the quiet period required before a file
// change triggers a reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// NewWatcher creates a watcher for the configuration file at path. A
// zero debounce interval uses DefaultDebounceInterval.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "config.watcher"),
		path:     path,
		debounce: newDebouncer(debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, watching the configuration file and invoking onReload
// with the freshly loaded configuration after each change. It runs
// until the context is cancelled or Stop is called. Reload failures
// (unreadable file, validation errors) are logged and the previous
// configuration stays in effect.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	// Watch the containing directory: editors replace files on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("Configuration watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Configuration watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("Configuration file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				w.reload(onReload)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Configuration watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// Stop stops the watcher and cancels any pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) reload(onReload func(*Config)) {
	cfg, err := LoadWithEnvOverrides(w.path)
	if err != nil {
		w.logger.Error("Configuration reload failed, keeping previous configuration",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.logger.Info("Configuration reloaded", "path", w.path)
	onReload(cfg)
}

// shouldProcessEvent filters directory events down to writes of the
// watched file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path) ||
		strings.HasSuffix(event.Name, filepath.Base(w.path))
}

// debouncer collects rapid events and runs the callback only after a
// quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
