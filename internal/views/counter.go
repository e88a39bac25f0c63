// Package views counts page views per post.
package views

import (
	"context"
	"sync"
)

// Counter reads and increments per-slug view counts.
type Counter interface {
	Get(ctx context.Context, slug string) (int64, error)
	Increment(ctx context.Context, slug string) (int64, error)
}

var (
	_ Counter = (*Memory)(nil)
	_ Counter = (*Redis)(nil)
)

// Memory holds counts in process memory. Counts are lost on restart.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemory creates an empty in-memory counter.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[slug], nil
}

func (m *Memory) Increment(_ context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[slug]++
	return m.counts[slug], nil
}
