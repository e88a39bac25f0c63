package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// CreateInput carries the fields of a new comment. Validation of lengths
// and required fields happens at the request boundary.
type CreateInput struct {
	PostSlug string
	Author   string
	Content  string
	Password string
	ParentID string
}

// Service implements comment operations over a Store.
type Service struct {
	store  Store
	hasher Hasher
	ids    *IDGenerator
	now    func() time.Time
}

// NewService creates a comment service. A nil hasher defaults to bcrypt at
// DefaultBcryptCost.
func NewService(store Store, hasher Hasher) *Service {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultBcryptCost)
	}
	return &Service{
		store:  store,
		hasher: hasher,
		ids:    NewIDGenerator(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new comment. A non-empty ParentID must name an existing
// comment on the same post.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Comment, error) {
	if in.ParentID != "" {
		if _, err := s.store.Get(ctx, in.PostSlug, in.ParentID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return models.Comment{}, apperr.ErrInvalidParent
			}
			return models.Comment{}, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Comment{}, err
	}
	now := s.now()
	id, err := s.ids.New(now)
	if err != nil {
		return models.Comment{}, fmt.Errorf("comments: new id: %w", err)
	}

	r := Record{
		ID:           id,
		PostSlug:     in.PostSlug,
		Author:       in.Author,
		Content:      in.Content,
		PasswordHash: hash,
		CreatedAt:    now,
		ParentID:     in.ParentID,
	}
	if err := s.store.Put(ctx, r); err != nil {
		return models.Comment{}, err
	}
	return r.Public(), nil
}

// List returns a post's comments oldest first.
func (s *Service) List(ctx context.Context, postSlug string) ([]models.Comment, error) {
	records, err := s.store.ListByThread(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0, len(records))
	for _, r := range records {
		out = append(out, r.Public())
	}
	return out, nil
}

// Tree returns a post's comments arranged as a reply forest.
func (s *Service) Tree(ctx context.Context, postSlug string) ([]*Node, error) {
	list, err := s.List(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	return BuildTree(list), nil
}

// Update replaces a comment's content when password matches.
func (s *Service) Update(ctx context.Context, postSlug, id, content, password string) (models.Comment, error) {
	r, err := s.authorize(ctx, postSlug, id, password)
	if err != nil {
		return models.Comment{}, err
	}
	now := s.now()
	if err := s.store.UpdateContent(ctx, postSlug, id, content, now); err != nil {
		return models.Comment{}, err
	}
	r.Content = content
	r.UpdatedAt = &now
	return r.Public(), nil
}

// Delete removes a comment when password matches. Replies are kept and
// surface as roots.
func (s *Service) Delete(ctx context.Context, postSlug, id, password string) error {
	if _, err := s.authorize(ctx, postSlug, id, password); err != nil {
		return err
	}
	return s.store.Delete(ctx, postSlug, id)
}

func (s *Service) authorize(ctx context.Context, postSlug, id, password string) (Record, error) {
	r, err := s.store.Get(ctx, postSlug, id)
	if err != nil {
		return Record{}, err
	}
	ok, err := s.hasher.Verify(r.PasswordHash, password)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, apperr.ErrUnauthorized
	}
	return r, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
