package task

import (
	"context"
	"fmt"
	"sync"
)

// Store persists the whole task collection. Every read returns the full
// collection and every write replaces it.
type Store interface {
	ReadAll(ctx context.Context) ([]Task, error)
	WriteAll(ctx context.Context, tasks []Task) error
}

// StorageError reports a failure of the backing storage.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("task storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("task storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MemoryStore implements Store with an in-memory slice, suitable for tests
// and throwaway instances.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Task
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied tasks.
func NewMemoryStore(items []Task) *MemoryStore {
	return &MemoryStore{items: append([]Task(nil), items...)}
}

// ReadAll returns a copy of the stored collection.
func (s *MemoryStore) ReadAll(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Task{}, s.items...), nil
}

// WriteAll replaces the stored collection with a copy of tasks.
func (s *MemoryStore) WriteAll(ctx context.Context, tasks []Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = append([]Task(nil), tasks...)
	s.mu.Unlock()
	return nil
}
