// Package content derives post metadata from stored documents.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Deriver turns documents from a storage.Provider into PostMetadata.
type Deriver struct {
	store storage.Provider
}

// NewDeriver creates a Deriver reading from store.
func NewDeriver(store storage.Provider) *Deriver {
	return &Deriver{store: store}
}

// SlugOf strips the document extension from a slug or file name.
func (d *Deriver) SlugOf(name string) string {
	return strings.TrimSuffix(name, d.store.Ext())
}

// Derive returns the metadata for slug (with or without the document
// extension). A missing document reports ok=false with a nil error; only
// storage failures are returned as errors.
func (d *Deriver) Derive(_ context.Context, slug string) (models.PostMetadata, bool, error) {
	doc, ok, err := d.load(slug)
	if err != nil || !ok {
		return models.PostMetadata{}, ok, err
	}
	return FromDocument(d.SlugOf(slug), doc), true, nil
}

// Body returns the decoded body of the document, for rendering.
func (d *Deriver) Body(_ context.Context, slug string) (string, bool, error) {
	doc, ok, err := d.load(slug)
	if err != nil || !ok {
		return "", ok, err
	}
	return doc.Body, true, nil
}

func (d *Deriver) load(slug string) (frontmatter.Document, bool, error) {
	real := d.SlugOf(slug)
	if real == "" || real == "." || real == ".." || filepath.Base(real) != real || filepath.IsAbs(real) {
		return frontmatter.Document{}, false, nil
	}
	data, err := d.store.Read(real + d.store.Ext())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return frontmatter.Document{}, false, nil
		}
		return frontmatter.Document{}, false, fmt.Errorf("content: derive %s: %w", real, err)
	}
	return frontmatter.Decode(data, real), true, nil
}

// FromDocument computes metadata for an already decoded document.
func FromDocument(slug string, doc frontmatter.Document) models.PostMetadata {
	excerpt := doc.Header.Excerpt
	if excerpt == "" {
		excerpt = Excerpt(doc.Body)
	}
	return models.PostMetadata{
		Slug:        slug,
		Title:       doc.Header.Title,
		Date:        doc.Header.Date,
		Tags:        doc.Header.Tags,
		Excerpt:     excerpt,
		ReadingTime: ReadingTime(doc.Body),
		WordCount:   WordCount(doc.Body),
	}
}
