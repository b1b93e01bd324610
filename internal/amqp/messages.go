package amqp

import (
	"encoding/json"
	"time"

	"spendsense/internal/core"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpCleared = "cleared"
)

// ExpenseEvent describes a single store mutation. The mirror worker consumes
// these to keep the spreadsheet copy in step; it carries the full record so
// the worker never has to read the database.
type ExpenseEvent struct {
	Op          string    `json:"op"`
	ID          int64     `json:"id,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        string    `json:"date,omitempty"`
	Note        string    `json:"note,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCreatedEvent builds the event for a freshly persisted expense.
func NewCreatedEvent(id int64, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Op:          OpCreated,
		ID:          id,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Date:        e.Date.String(),
		Note:        e.Note,
		Timestamp:   time.Now(),
	}
}

// NewUpdatedEvent builds the event for a replaced record.
func NewUpdatedEvent(id int64, e core.Expense) *ExpenseEvent {
	ev := NewCreatedEvent(id, e)
	ev.Op = OpUpdated
	return ev
}

// NewDeletedEvent builds the event for a removed record.
func NewDeletedEvent(id int64) *ExpenseEvent {
	return &ExpenseEvent{Op: OpDeleted, ID: id, Timestamp: time.Now()}
}

// NewClearedEvent signals that every record was removed.
func NewClearedEvent() *ExpenseEvent {
	return &ExpenseEvent{Op: OpCleared, Timestamp: time.Now()}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
