// Package memory provides an in-memory Expense Store. It backs the demo
// backend and tests; it honors the same ordering and error contract as the
// SQLite repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"spendsense/internal/core"
	"spendsense/internal/store"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// List returns a copy ordered by date descending, newest id first within a day.
func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Expense(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Create(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, &store.ValidationError{Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) Update(_ context.Context, id int64, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, &store.ValidationError{Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			e.ID = id
			s.items[i] = e
			return 1, nil
		}
	}
	return 0, &store.NotFoundError{ID: id}
}

func (s *Store) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
