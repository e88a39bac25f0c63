package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
)

// DefaultExt is the document extension used when none is configured.
const DefaultExt = ".mdx"

// FS implements Provider backed by a flat directory on the local file system.
type FS struct {
	root string // absolute path to the content directory
	ext  string
}

// NewFS creates a new FS provider rooted at the given directory. The directory
// may not exist yet; listing it then yields no documents.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string { return f.root }

// Ext returns the recognized document extension.
func (f *FS) Ext() string { return f.ext }

// safePath resolves a document name against the root and rejects anything
// that is not a plain file name.
func (f *FS) safePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: name is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == "." || cleaned == ".." || filepath.IsAbs(name) {
		return "", fmt.Errorf("storage: invalid document name: %s", name)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes content root: %s", name)
	}
	return abs, nil
}

// List returns document names in directory order (sorted by file name).
func (f *FS) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), f.ext) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Info returns checksum and modification time for a document.
func (f *FS) Info(name string) (models.DocumentInfo, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return models.DocumentInfo{}, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return models.DocumentInfo{
		Name:       name,
		Slug:       strings.TrimSuffix(name, f.ext),
		Checksum:   checksum.Sum(data),
		ModifiedAt: st.ModTime(),
	}, nil
}

// Read returns the raw bytes of a document.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	// The temp name lacks the document extension so List never sees it.
	tmp, err := os.CreateTemp(f.root, ".folio-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a document.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}
