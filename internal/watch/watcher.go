// Package watch reports changes to post documents in the content directory.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// reconcileDelay debounces the listing pass that follows renames.
const reconcileDelay = 200 * time.Millisecond

// EventCallback is called for each observed document change. slug has the
// document extension stripped.
type EventCallback func(kind, slug string)

// Watch observes the store's directory until ctx is cancelled. Writes that
// leave a document's checksum unchanged are not reported. A missing content
// directory is logged and Watch idles until ctx is done.
func Watch(ctx context.Context, store *storage.FS, logger *slog.Logger, cb EventCallback) error {
	root := store.Root()
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("watcher: content dir missing, not watching", slog.String("root", root))
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(root); err != nil {
		return err
	}

	t := newTracker(store, logger, cb)
	t.prime()
	logger.Info("watcher: started", slog.String("root", root), slog.Int("documents", len(t.known)))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			t.reconcile()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, store.Ext()) || strings.HasPrefix(name, ".") {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				t.observe(name)
			case ev.Op&fsnotify.Remove != 0:
				t.forget(name)
			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old name only; the new name arrives
				// as a Create when it stays inside the directory.
				t.forget(name)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// tracker remembers the last seen checksum of every document. It is owned
// by the Watch loop goroutine.
type tracker struct {
	store  *storage.FS
	logger *slog.Logger
	cb     EventCallback
	known  map[string]string
}

func newTracker(store *storage.FS, logger *slog.Logger, cb EventCallback) *tracker {
	return &tracker{store: store, logger: logger, cb: cb, known: make(map[string]string)}
}

func (t *tracker) emit(kind, name string) {
	slug := strings.TrimSuffix(name, t.store.Ext())
	t.logger.Debug("watcher: "+kind, slog.String("slug", slug))
	if t.cb != nil {
		t.cb(kind, slug)
	}
}

func (t *tracker) prime() {
	names, err := t.store.List()
	if err != nil {
		t.logger.Warn("watcher: initial list failed", slog.String("error", err.Error()))
		return
	}
	for _, name := range names {
		if info, err := t.store.Info(name); err == nil {
			t.known[name] = info.Checksum
		}
	}
}

func (t *tracker) observe(name string) {
	info, err := t.store.Info(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.forget(name)
			return
		}
		t.logger.Warn("watcher: read failed", slog.String("name", name), slog.String("error", err.Error()))
		return
	}
	prev, seen := t.known[name]
	if seen && prev == info.Checksum {
		return
	}
	t.known[name] = info.Checksum
	if seen {
		t.emit(Updated, name)
	} else {
		t.emit(Created, name)
	}
}

func (t *tracker) forget(name string) {
	if _, ok := t.known[name]; !ok {
		return
	}
	delete(t.known, name)
	t.emit(Deleted, name)
}

// reconcile compares the directory listing with known checksums and reports
// whatever the event stream missed.
func (t *tracker) reconcile() {
	names, err := t.store.List()
	if err != nil {
		t.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	onDisk := make(map[string]struct{}, len(names))
	for _, name := range names {
		onDisk[name] = struct{}{}
		t.observe(name)
	}
	for name := range t.known {
		if _, ok := onDisk[name]; !ok {
			t.forget(name)
		}
	}
}
