// Package testutil provides shared test helpers for seeding content directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/storage"
)

// PostSource renders a post file with the given front matter and body.
func PostSource(title, date string, tags []string, body string) string {
	return fmt.Sprintf("---\ntitle: %q\ndate: %q\ntags: [%s]\n---\n\n%s\n",
		title, date, strings.Join(tags, ", "), body)
}

// TestContent creates a temporary content directory seeded with files
// (name -> source) and returns it with an .mdx storage provider.
func TestContent(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		WriteFile(t, dir, name, body)
	}
	store, err := storage.NewFS(dir, ".mdx")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes one file into dir, failing the test on error.
func WriteFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
