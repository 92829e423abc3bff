package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	lists  map[string][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, models.ErrNotFound)
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Append(_ context.Context, key, value string, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = keepLast(append(s.lists[key], value), max)
	return nil
}

func (s *MemoryStore) List(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
