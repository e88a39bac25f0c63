// Package catalog assembles the post list from the document store and answers
// queries over it. Every call rebuilds from storage, so edits are visible
// immediately without invalidation.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Catalog derives posts from a storage.Provider on demand.
type Catalog struct {
	store   storage.Provider
	deriver *content.Deriver
	logger  *slog.Logger
}

// New creates a Catalog over store.
func New(store storage.Provider, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, deriver: content.NewDeriver(store), logger: logger}
}

// Deriver exposes the underlying metadata deriver.
func (c *Catalog) Deriver() *content.Deriver { return c.deriver }

// ListSlugs returns the document file names in storage order.
func (c *Catalog) ListSlugs(_ context.Context) ([]string, error) {
	names, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// All returns every post, newest first. Documents that vanish between
// listing and reading are skipped.
func (c *Catalog) All(ctx context.Context) (Posts, error) {
	names, err := c.ListSlugs(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]models.PostMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, ok, err := c.deriver.Derive(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.logger.Debug("catalog: document disappeared", slog.String("name", name))
			continue
		}
		posts = append(posts, meta)
	}
	sortByDate(posts)
	return Posts(posts), nil
}

// Get returns the metadata for a single post.
func (c *Catalog) Get(ctx context.Context, slug string) (models.PostMetadata, bool, error) {
	return c.deriver.Derive(ctx, slug)
}

// Tags returns the distinct tags across all posts.
func (c *Catalog) Tags(ctx context.Context) ([]string, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return ps.Tags(), nil
}

// ByTag returns the posts tagged with tag.
func (c *Catalog) ByTag(ctx context.Context, tag string) (Posts, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return ps.ByTag(tag), nil
}

// Search matches query against post titles.
func (c *Catalog) Search(ctx context.Context, query string) (Posts, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return ps.Search(query), nil
}

// Related returns up to limit posts sharing tags with slug.
func (c *Catalog) Related(ctx context.Context, slug string, limit int) (Posts, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return ps.Related(c.deriver.SlugOf(slug), limit), nil
}

// Adjacent returns the chronological neighbours of slug.
func (c *Catalog) Adjacent(ctx context.Context, slug string) (Neighbors, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return Neighbors{}, err
	}
	return ps.Adjacent(c.deriver.SlugOf(slug)), nil
}

// ByYear groups all posts by publication year.
func (c *Catalog) ByYear(ctx context.Context) ([]YearGroup, error) {
	ps, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return ps.ByYear(), nil
}
