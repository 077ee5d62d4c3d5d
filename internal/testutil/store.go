package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
)

// FilterFunc is a generic filter function type
type FilterFunc[T any] func(ctx context.Context, item T) bool

// SortFunc is a generic sort function type
type SortFunc[T any] func(i, j T) bool

// InMemoryStore implements a generic in-memory store. Items are copied on
// the way in and out so callers can never mutate stored state directly.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	clone func(T) T
}

// NewInMemoryStore creates a new InMemoryStore
func NewInMemoryStore[T any](clone func(T) T) *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
		clone: clone,
	}
}

// Create adds a new item to the store
func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	return s.CreateUnique(ctx, id, item, nil)
}

// CreateUnique adds an item unless conflicts reports a clash with a stored one
func (s *InMemoryStore[T]) CreateUnique(_ context.Context, id string, item T, conflicts func(existing T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("item %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}
	if conflicts != nil {
		for _, existing := range s.items {
			if conflicts(existing) {
				return ierr.NewError("unique constraint violated").
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}

	s.items[id] = s.clone(item)
	return nil
}

// Get retrieves an item by ID
func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return s.clone(item), nil
	}

	var zero T
	return zero, ierr.NewErrorf("item %s not found", id).
		Mark(ierr.ErrNotFound)
}

// Find returns the first item matching filterFn
func (s *InMemoryStore[T]) Find(ctx context.Context, filterFn FilterFunc[T]) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if filterFn(ctx, item) {
			return s.clone(item), nil
		}
	}

	var zero T
	return zero, ierr.NewError("item not found").
		Mark(ierr.ErrNotFound)
}

// List retrieves items matching filterFn, sorted and paginated by filter
func (s *InMemoryStore[T]) List(ctx context.Context, filter *types.QueryFilter, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0)
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item) {
			result = append(result, s.clone(item))
		}
	}

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}

	if filter == nil || filter.IsUnlimited() {
		return result, nil
	}
	start := filter.GetOffset()
	if start >= len(result) {
		return []T{}, nil
	}
	end := min(start+filter.GetLimit(), len(result))
	return result[start:end], nil
}

// Count returns the total number of items matching the filter
func (s *InMemoryStore[T]) Count(ctx context.Context, filterFn FilterFunc[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item) {
			count++
		}
	}

	return count, nil
}

// Mutate replaces an item with what fn derives from the stored copy.
// fn runs under the store lock, which makes it a compare-and-swap.
func (s *InMemoryStore[T]) Mutate(_ context.Context, id string, fn func(stored T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.items[id]
	if !exists {
		return ierr.NewErrorf("item %s not found", id).
			Mark(ierr.ErrNotFound)
	}

	next, err := fn(s.clone(stored))
	if err != nil {
		return err
	}
	s.items[id] = s.clone(next)
	return nil
}

// Delete removes an item from the store
func (s *InMemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item %s not found", id).
			Mark(ierr.ErrNotFound)
	}

	delete(s.items, id)
	return nil
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

func versionConflict(entity, id string) error {
	return ierr.NewErrorf("%s %s was modified concurrently", entity, id).
		Mark(ierr.ErrVersionConflict)
}

func matchesAny[T comparable](values []T, v T) bool {
	if len(values) == 0 {
		return true
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
