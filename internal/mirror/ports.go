// Package mirror defines the port for keeping an external copy of the ledger
// in step with the store.
package mirror

import (
	"context"

	"spendsense/internal/core"
)

// Mirror receives store mutations. Implementations are best-effort: the store
// stays authoritative and a failed mirror write never rolls back a mutation.
type Mirror interface {
	// Append records a persisted expense under its store id.
	Append(ctx context.Context, id int64, e core.Expense) error

	// Remove drops the row holding the given store id, if present.
	Remove(ctx context.Context, id int64) error

	// Clear removes every mirrored row.
	Clear(ctx context.Context) error
}
