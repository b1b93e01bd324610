// Package session owns the Transaction Cache and the re-fetch-after-write
// sync discipline over the Expense Store. All mutations are serialized: a
// second submit blocks until the first one's re-fetch lands, so reads never
// observe a cache known to be stale.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsense/internal/amqp"
	"spendsense/internal/core"
	"spendsense/internal/store"
)

// batchConcurrency caps in-flight store calls during batch operations.
const batchConcurrency = 4

// Session is the explicitly owned application context shared by the HTTP
// handlers and the command interpreter. The cache mirrors the store's current
// contents in store order and is refreshed wholesale after every mutation,
// never patched incrementally.
type Session struct {
	mu     sync.Mutex
	store  store.Store
	events *amqp.Client // optional, nil disables event publishing
	cache  []core.Expense
}

func New(st store.Store, events *amqp.Client) *Session {
	return &Session{store: st, events: events}
}

// Refresh re-fetches the full list from the store. Call once at startup;
// mutations refresh on their own.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	items, err := s.store.List(ctx)
	if err != nil {
		// Cache stays at its last known-good state.
		return fmt.Errorf("refresh cache: %w", err)
	}
	s.cache = items
	return nil
}

// Snapshot returns a copy of the cached transactions in store order.
func (s *Session) Snapshot() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.cache...)
}

// Len returns the number of cached transactions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// Stats aggregates the cached transactions against now.
func (s *Session) Stats(now time.Time) core.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeStats(s.cache, now)
}

// Add persists a draft expense, then re-fetches before the cache is readable
// again. Returns the store-assigned id.
func (s *Session) Add(ctx context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Create(ctx, e)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewCreatedEvent(id, e))

	if err := s.refreshLocked(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// Update replaces the record with the given id, then re-fetches. The re-fetch
// happens even when the id is gone, to reconcile the cache.
func (s *Session) Update(ctx context.Context, id int64, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, updateErr := s.store.Update(ctx, id, e)
	if n > 0 {
		s.publish(ctx, amqp.NewUpdatedEvent(id, e))
	}
	if err := s.refreshLocked(ctx); err != nil && updateErr == nil {
		return n, err
	}
	return n, updateErr
}

// Delete removes the record with the given id, then re-fetches.
func (s *Session) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, amqp.NewDeletedEvent(id))
	}
	if err := s.refreshLocked(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// ClearAll deletes every record currently in the cache: all deletes are
// issued, all acknowledgments awaited, then exactly one re-fetch rather than
// one per record. Returns the number of records deleted.
func (s *Session) ClearAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.cache))
	for _, e := range s.cache {
		ids = append(ids, e.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.store.Delete(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		// Partial clears still reconcile against the store.
		if rerr := s.refreshLocked(ctx); rerr != nil {
			slog.WarnContext(ctx, "Cache refresh failed after partial clear", "error", rerr)
		}
		return 0, fmt.Errorf("clear all: %w", err)
	}
	s.publish(ctx, amqp.NewClearedEvent())

	if err := s.refreshLocked(ctx); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}

// SeedDemo inserts the canned sample records: all creates are issued and
// awaited, then one re-fetch. Returns the number of records created.
func (s *Session) SeedDemo(ctx context.Context, now time.Time) (int, error) {
	today := core.Today(now)
	threeDaysAgo := core.Today(now.AddDate(0, 0, -3))
	sample := []core.Expense{
		{Amount: core.Money{Cents: 19900}, Category: core.Food, Date: today, Note: "Pizza"},
		{Amount: core.Money{Cents: 8000}, Category: core.Transport, Date: today, Note: "Bus pass"},
		{Amount: core.Money{Cents: 125000}, Category: core.Bills, Date: today, Note: "WiFi"},
		{Amount: core.Money{Cents: 49900}, Category: core.Shopping, Date: threeDaysAgo, Note: "T-shirt"},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, e := range sample {
		g.Go(func() error {
			id, err := s.store.Create(gctx, e)
			if err != nil {
				return err
			}
			s.publish(gctx, amqp.NewCreatedEvent(id, e))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if rerr := s.refreshLocked(ctx); rerr != nil {
			slog.WarnContext(ctx, "Cache refresh failed after partial seed", "error", rerr)
		}
		return 0, fmt.Errorf("seed demo data: %w", err)
	}

	if err := s.refreshLocked(ctx); err != nil {
		return len(sample), err
	}
	return len(sample), nil
}

// publish sends a mutation event for the mirror worker. Event delivery is
// best-effort: a publish failure never fails the originating mutation.
func (s *Session) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"op", ev.Op, "id", ev.ID, "error", err)
	}
}
