package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for edits to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-analyzes the served module when its Go sources change and swaps
// the new snapshot into the store.
type Watcher struct {
	store    *Store
	cfg      AnalysisConfig
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher starts watching every directory of the store's module. Call Run
// to process events and Close when done.
func NewWatcher(store *Store, cfg AnalysisConfig, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		store:    store,
		cfg:      cfg,
		dir:      store.Load().Result.ModuleDir,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger.With("component", "watcher"),
	}
	if err := w.addTree(w.dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run handles file events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			w.reload(ctx)
		}
	}
}

// handle reports whether ev should trigger a re-analysis. New directories
// are added to the watch list.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if err := w.addTree(ev.Name); err != nil {
			w.logger.Debug("not watching new path", "path", ev.Name, "error", err)
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	return strings.HasSuffix(base, ".go") || base == "go.mod"
}

func (w *Watcher) reload(ctx context.Context) {
	snap, err := analyzeDir(ctx, w.cfg, w.dir, w.logger)
	if err != nil {
		// Keep serving the last good snapshot.
		w.logger.Error("re-analysis failed", "error", err)
		return
	}
	prev := w.store.Swap(snap)
	w.logger.Info("snapshot replaced", "previous", prev.ID, "current", snap.ID)
}

// addTree watches root and its subdirectories, skipping the ones the go tool
// ignores.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "node_modules" || name == "testdata"
}
