// Package worker applies consumed expense events to a mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendsense/internal/amqp"
	"spendsense/internal/core"
	"spendsense/internal/mirror"
)

// MirrorWorker translates expense events into mirror operations. Events carry
// the full record, so no store access is needed here.
type MirrorWorker struct {
	mirror mirror.Mirror
}

func NewMirrorWorker(m mirror.Mirror) *MirrorWorker {
	return &MirrorWorker{mirror: m}
}

// HandleEvent processes one expense event. Returning an error requeues the
// event for redelivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event", "op", ev.Op, "id", ev.ID)

	switch ev.Op {
	case amqp.OpCreated:
		e, err := expenseFromEvent(ev)
		if err != nil {
			return err
		}
		if err := w.mirror.Append(ctx, ev.ID, e); err != nil {
			return fmt.Errorf("mirror append: %w", err)
		}
	case amqp.OpUpdated:
		e, err := expenseFromEvent(ev)
		if err != nil {
			return err
		}
		// Replace by remove + append: the mirror keys rows by store id.
		if err := w.mirror.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("mirror remove before update: %w", err)
		}
		if err := w.mirror.Append(ctx, ev.ID, e); err != nil {
			return fmt.Errorf("mirror append after update: %w", err)
		}
	case amqp.OpDeleted:
		if err := w.mirror.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("mirror remove: %w", err)
		}
	case amqp.OpCleared:
		if err := w.mirror.Clear(ctx); err != nil {
			return fmt.Errorf("mirror clear: %w", err)
		}
	default:
		slog.WarnContext(ctx, "Unknown expense event op, skipping", "op", ev.Op, "id", ev.ID)
	}
	return nil
}

func expenseFromEvent(ev *amqp.ExpenseEvent) (core.Expense, error) {
	cat, err := core.ParseCategory(ev.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	date, err := core.ParseDate(ev.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	return core.Expense{
		ID:       ev.ID,
		Amount:   core.Money{Cents: ev.AmountCents},
		Category: cat,
		Date:     date,
		Note:     ev.Note,
	}, nil
}
