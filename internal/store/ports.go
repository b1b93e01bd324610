// Package store defines the Expense Store port and its error taxonomy.
// The durable record-keeper behind it may be SQLite, an in-memory store,
// or the remote JSON API.
package store

import (
	"context"

	"spendsense/internal/core"
)

// Store is the CRUD contract over the expenses table. One logical operation
// per call; batch semantics are a client-side convention layered on top.
type Store interface {
	// List returns every expense ordered by date descending, newest id first
	// within a day. Re-running List with no intervening mutation yields the
	// same records in the same order.
	List(ctx context.Context) ([]core.Expense, error)

	// Create persists a draft expense and returns the assigned id.
	Create(ctx context.Context, e core.Expense) (int64, error)

	// Update replaces the record with the given id and returns the number of
	// records updated (0 or 1).
	Update(ctx context.Context, id int64, e core.Expense) (int64, error)

	// Delete removes the record with the given id and returns the number of
	// records deleted (0 or 1).
	Delete(ctx context.Context, id int64) (int64, error)
}
