package store

import "fmt"

// ValidationError marks a malformed amount, category or date rejected at the
// store boundary. The originating input is not submitted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NotFoundError marks an update or delete targeting a record that is no
// longer present. Callers still re-fetch to reconcile the cache.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found", e.ID)
}

// TransportError marks an unreachable store or a non-success response. The
// mutation is treated as failed and is never retried automatically; the cache
// stays at its last known-good state.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
