// Package authoring writes post documents on behalf of the admin API.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug reports whether slug may name a document.
func ValidSlug(slug string) bool {
	return slugRe.MatchString(slug)
}

// Document is a stored post with its raw source.
type Document struct {
	models.PostMetadata
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// Entry is a listing row for the admin post table.
type Entry struct {
	models.PostMetadata
	Name       string    `json:"name"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Service creates, replaces, and deletes documents.
type Service struct {
	store   storage.Provider
	deriver *content.Deriver
}

// NewService creates an authoring service over store.
func NewService(store storage.Provider) *Service {
	return &Service{store: store, deriver: content.NewDeriver(store)}
}

func (s *Service) name(slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("authoring: %q: %w", slug, apperr.ErrInvalidSlug)
	}
	return slug + s.store.Ext(), nil
}

// Get returns the raw source of slug.
func (s *Service) Get(_ context.Context, slug string) (*Document, error) {
	name, err := s.name(slug)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return buildDocument(slug, data), nil
}

// Create writes a new document. An existing document yields
// apperr.ErrAlreadyExists.
func (s *Service) Create(_ context.Context, slug string, source []byte) (*Document, error) {
	name, err := s.name(slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(name); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := s.store.Write(name, source); err != nil {
		return nil, err
	}
	return buildDocument(slug, source), nil
}

// Update replaces an existing document. When ifMatch is non-empty it must
// equal the checksum of the current source.
func (s *Service) Update(_ context.Context, slug string, source []byte, ifMatch string) (*Document, error) {
	name, err := s.name(slug)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(name, source); err != nil {
		return nil, err
	}
	return buildDocument(slug, source), nil
}

// Delete removes a document.
func (s *Service) Delete(_ context.Context, slug string) error {
	name, err := s.name(slug)
	if err != nil {
		return err
	}
	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return nil
}

// List returns every stored document with its metadata, in storage order.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		info, err := s.store.Info(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		meta, ok, err := s.deriver.Derive(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			PostMetadata: meta,
			Name:         info.Name,
			Checksum:     info.Checksum,
			ModifiedAt:   info.ModifiedAt,
		})
	}
	return entries, nil
}

func buildDocument(slug string, data []byte) *Document {
	return &Document{
		PostMetadata: content.FromDocument(slug, frontmatter.Decode(data, slug)),
		Content:      string(data),
		Checksum:     checksum.Sum(data),
	}
}
