// Package watch reloads a size report whenever the file changes on disk,
// so a long-running viewer can follow recompiles without restarting.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/report"
)

// Watcher watches a report file and reloads it after changes settle.
type Watcher struct {
	reportPath string
	fsWatcher  *fsnotify.Watcher

	debounceDelay time.Duration
	pendingMu     sync.Mutex
	pending       bool
	debounceTimer *time.Timer

	onReload func(*graph.MemSource)
	onError  func(error)

	done chan struct{}
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceDelay sets how long changes must settle before a reload.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithOnReload sets the callback invoked with each freshly loaded report.
func WithOnReload(fn func(*graph.MemSource)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithOnError sets the callback for watch and reload errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher for the given report file. The containing
// directory is watched rather than the file itself, since compilers
// typically replace the report via rename.
func New(reportPath string, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		reportPath:    filepath.Clean(reportPath),
		fsWatcher:     fsWatcher,
		debounceDelay: 500 * time.Millisecond,
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if err := fsWatcher.Add(filepath.Dir(w.reportPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(w.reportPath), err)
	}

	return w, nil
}

// Start begins watching for changes.
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerReload)
}

// matches reports whether the event path is the watched report file,
// tolerating editors and compilers that write through a temp name in
// the same directory before renaming over the target.
func (w *Watcher) matches(name string) bool {
	clean := filepath.Clean(name)
	if clean == w.reportPath {
		return true
	}
	return strings.HasPrefix(filepath.Base(clean), filepath.Base(w.reportPath))
}

func (w *Watcher) triggerReload() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !pending {
		return
	}

	src, err := report.LoadFile(context.Background(), w.reportPath)
	if err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("watch: reload %s: %w", w.reportPath, err))
		}
		return
	}

	if w.onReload != nil {
		w.onReload(src)
	}
}
