package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/storage"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, slug string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+slug)
	r.mu.Unlock()
}

func (r *recorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

func (r *recorder) count(want string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == want {
			n++
		}
	}
	return n
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func start(t *testing.T) (string, *recorder) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, ".mdx")
	if err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(dir, "existing.mdx"), []byte("# Existing"), 0o644)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := &recorder{}
	go Watch(ctx, store, logger, rec.record)
	time.Sleep(100 * time.Millisecond)
	return dir, rec
}

func TestWatch_Created(t *testing.T) {
	dir, rec := start(t)
	_ = os.WriteFile(filepath.Join(dir, "new.mdx"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new")
	}, "expected created:new")
}

func TestWatch_UpdatedOnlyWhenContentChanges(t *testing.T) {
	dir, rec := start(t)
	path := filepath.Join(dir, "existing.mdx")

	_ = os.WriteFile(path, []byte("# Existing"), 0o644)
	_ = os.WriteFile(path, []byte("# Changed"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("updated:existing")
	}, "expected updated:existing")
	if rec.has("created:existing") {
		t.Error("pre-existing document reported as created")
	}
}

func TestWatch_Deleted(t *testing.T) {
	dir, rec := start(t)
	_ = os.Remove(filepath.Join(dir, "existing.mdx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:existing")
	}, "expected deleted:existing")
}

func TestWatch_Rename(t *testing.T) {
	dir, rec := start(t)
	_ = os.Rename(filepath.Join(dir, "existing.mdx"), filepath.Join(dir, "renamed.mdx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:existing") && rec.has("created:renamed")
	}, "rename should report deleted old slug and created new slug")
	if n := rec.count("created:renamed"); n != 1 {
		t.Errorf("created:renamed reported %d times, want 1", n)
	}
}

func TestWatch_IgnoresOtherExtensions(t *testing.T) {
	dir, rec := start(t)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "marker.mdx"), []byte("y"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:marker")
	}, "expected created:marker")
	if rec.has("created:notes.txt") || rec.has("created:notes") {
		t.Error("non-document file reported")
	}
}

func TestWatch_MissingDirIdles(t *testing.T) {
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "absent"), ".mdx")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := Watch(ctx, store, logger, nil); err != nil {
		t.Errorf("Watch: %v", err)
	}
}
