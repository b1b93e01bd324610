package session

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"spendsense/internal/core"
	"spendsense/internal/memory"
	"spendsense/internal/storage"
	"spendsense/internal/store"
)

// countingStore records how many calls of each kind reach the store.
type countingStore struct {
	store.Store
	lists   atomic.Int64
	creates atomic.Int64
	deletes atomic.Int64
}

func (c *countingStore) List(ctx context.Context) ([]core.Expense, error) {
	c.lists.Add(1)
	return c.Store.List(ctx)
}

func (c *countingStore) Create(ctx context.Context, e core.Expense) (int64, error) {
	c.creates.Add(1)
	return c.Store.Create(ctx, e)
}

func (c *countingStore) Delete(ctx context.Context, id int64) (int64, error) {
	c.deletes.Add(1)
	return c.Store.Delete(ctx, id)
}

func newTestSession() (*Session, *countingStore) {
	cs := &countingStore{Store: memory.New()}
	return New(cs, nil), cs
}

func expense(cents int64, cat core.Category, y, m, d int) core.Expense {
	return core.Expense{Amount: core.Money{Cents: cents}, Category: cat, Date: core.NewDate(y, m, d)}
}

func TestAddRefreshesOnce(t *testing.T) {
	s, cs := newTestSession()
	ctx := context.Background()

	id, err := s.Add(ctx, expense(12000, core.Food, 2025, 3, 9))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a store-assigned id")
	}
	if got := cs.lists.Load(); got != 1 {
		t.Fatalf("lists = %d, want exactly 1 re-fetch per mutation", got)
	}

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].ID != id {
		t.Fatalf("cache should hold the persisted record, got %+v", snap)
	}
}

func TestAddInvalidLeavesCacheUntouched(t *testing.T) {
	s, cs := newTestSession()
	ctx := context.Background()

	if _, err := s.Add(ctx, expense(12000, core.Food, 2025, 3, 9)); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := s.Snapshot()

	if _, err := s.Add(ctx, expense(0, core.Food, 2025, 3, 9)); err == nil {
		t.Fatal("expected validation error")
	}
	// Failed mutation: no re-fetch, cache at last known-good state.
	if got := cs.lists.Load(); got != 1 {
		t.Fatalf("lists = %d, want 1", got)
	}
	after := s.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("cache changed after failed mutation: %v vs %v", before, after)
	}
}

func TestClearAllBatchesDeletes(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		s, cs := newTestSession()
		ctx := context.Background()

		for i := 0; i < n; i++ {
			if _, err := s.Add(ctx, expense(int64(100*(i+1)), core.Other, 2025, 3, 9)); err != nil {
				t.Fatalf("add %d: %v", i, err)
			}
		}
		cs.lists.Store(0)
		cs.deletes.Store(0)

		deleted, err := s.ClearAll(ctx)
		if err != nil {
			t.Fatalf("clear all (n=%d): %v", n, err)
		}
		if deleted != n {
			t.Fatalf("deleted = %d, want %d", deleted, n)
		}
		if got := cs.deletes.Load(); got != int64(n) {
			t.Fatalf("deletes = %d, want one per cached record (%d)", got, n)
		}
		// Exactly one re-fetch regardless of batch size.
		if got := cs.lists.Load(); got != 1 {
			t.Fatalf("lists = %d, want exactly 1 (n=%d)", got, n)
		}
		if s.Len() != 0 {
			t.Fatalf("cache should be empty after clear, has %d", s.Len())
		}
	}
}

func TestSeedDemoBatches(t *testing.T) {
	s, cs := newTestSession()
	ctx := context.Background()
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

	created, err := s.SeedDemo(ctx, now)
	if err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if created != 4 {
		t.Fatalf("created = %d, want 4", created)
	}
	if got := cs.creates.Load(); got != 4 {
		t.Fatalf("creates = %d, want 4", got)
	}
	if got := cs.lists.Load(); got != 1 {
		t.Fatalf("lists = %d, want exactly 1", got)
	}

	stats := s.Stats(now)
	// Three of the four sample records land today.
	if stats.SumToday.Cents != 19900+8000+125000 {
		t.Fatalf("SumToday = %d", stats.SumToday.Cents)
	}
	if stats.SumMonth.Cents != 19900+8000+125000+49900 {
		t.Fatalf("SumMonth = %d", stats.SumMonth.Cents)
	}
}

func TestBatchOpsOverSQLite(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	s := New(repo, nil)
	ctx := context.Background()

	// Batch deletes fan out through the errgroup; SQLite must absorb them
	// without reporting SQLITE_BUSY.
	for i := 0; i < 12; i++ {
		if _, err := s.Add(ctx, expense(int64(100*(i+1)), core.Other, 2025, 3, 9)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	deleted, err := s.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if deleted != 12 {
		t.Fatalf("deleted = %d, want 12", deleted)
	}
	if s.Len() != 0 {
		t.Fatalf("cache should be empty after clear, has %d", s.Len())
	}

	created, err := s.SeedDemo(ctx, time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if created != 4 {
		t.Fatalf("created = %d, want 4", created)
	}
	if s.Len() != 4 {
		t.Fatalf("cache len = %d, want 4", s.Len())
	}
}

func TestDeleteMissingReconciles(t *testing.T) {
	s, cs := newTestSession()
	ctx := context.Background()

	if _, err := s.Add(ctx, expense(100, core.Food, 2025, 3, 9)); err != nil {
		t.Fatalf("add: %v", err)
	}
	cs.lists.Store(0)

	n, err := s.Delete(ctx, 999)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	// Re-fetch still happens to reconcile.
	if got := cs.lists.Load(); got != 1 {
		t.Fatalf("lists = %d, want 1", got)
	}
	if s.Len() != 1 {
		t.Fatalf("existing record should survive, cache len %d", s.Len())
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	s, _ := newTestSession()
	ctx := context.Background()

	id, err := s.Add(ctx, expense(12000, core.Food, 2025, 3, 9))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	n, err := s.Update(ctx, id, core.Expense{
		Amount: core.Money{Cents: 15000}, Category: core.Bills, Date: core.NewDate(2025, 3, 9), Note: "wifi",
	})
	if err != nil || n != 1 {
		t.Fatalf("update = %d, %v", n, err)
	}

	snap := s.Snapshot()
	if snap[0].Category != core.Bills || snap[0].Note != "wifi" {
		t.Fatalf("cache not refreshed with updated record: %+v", snap[0])
	}
}
