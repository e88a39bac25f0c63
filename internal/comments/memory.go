package comments

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/starford/folio/internal/apperr"
)

// MemoryStore keeps comments in process memory, one slice per post.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string][]Record)}
}

func (s *MemoryStore) find(postSlug, id string) int {
	for i, r := range s.threads[postSlug] {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) Put(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(r.PostSlug, r.ID) >= 0 {
		return fmt.Errorf("comments: put %s/%s: %w", r.PostSlug, r.ID, apperr.ErrAlreadyExists)
	}
	s.threads[r.PostSlug] = append(s.threads[r.PostSlug], r)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, postSlug, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.find(postSlug, id)
	if i < 0 {
		return Record{}, apperr.ErrNotFound
	}
	return s.threads[postSlug][i], nil
}

func (s *MemoryStore) ListByThread(_ context.Context, postSlug string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread := s.threads[postSlug]
	out := make([]Record, len(thread))
	copy(out, thread)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateContent(_ context.Context, postSlug, id, content string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(postSlug, id)
	if i < 0 {
		return apperr.ErrNotFound
	}
	r := &s.threads[postSlug][i]
	r.Content = content
	r.UpdatedAt = &updatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, postSlug, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(postSlug, id)
	if i < 0 {
		return apperr.ErrNotFound
	}
	thread := s.threads[postSlug]
	s.threads[postSlug] = append(thread[:i:i], thread[i+1:]...)
	if len(s.threads[postSlug]) == 0 {
		delete(s.threads, postSlug)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
