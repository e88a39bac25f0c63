// Package comments stores threaded, password-protected reader comments and
// arranges them into reply trees.
package comments

import (
	"context"
	"time"

	"github.com/starford/folio/internal/models"
)

// Record is a persisted comment. PasswordHash never leaves this package
// through the Service; callers receive models.Comment.
type Record struct {
	ID           string
	PostSlug     string
	Author       string
	Content      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	ParentID     string
}

// Public returns the record without its password hash.
func (r Record) Public() models.Comment {
	c := models.Comment{
		ID:        r.ID,
		PostSlug:  r.PostSlug,
		Author:    r.Author,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		ParentID:  r.ParentID,
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// Store persists comment records partitioned by post slug. Lookups of a
// missing record return apperr.ErrNotFound.
type Store interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, postSlug, id string) (Record, error)
	// ListByThread returns a post's comments oldest first.
	ListByThread(ctx context.Context, postSlug string) ([]Record, error)
	UpdateContent(ctx context.Context, postSlug, id, content string, updatedAt time.Time) error
	Delete(ctx context.Context, postSlug, id string) error
	Close() error
}

// Verify the backends satisfy Store at compile time.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
