package core

import "time"

// Stats summarizes a transaction list against a reference instant.
type Stats struct {
	SumMonth   Money // total for the current calendar month and year
	SumToday   Money // total for the current calendar day
	MaxSingle  Money // largest single transaction across all records
	ByCategory map[Category]Money
}

// ComputeStats derives the summary in a single pass over txns without
// mutating it. Month and day comparisons are calendar equality against now,
// not rolling windows. ByCategory covers the current month only; MaxSingle
// spans every record.
func ComputeStats(txns []Expense, now time.Time) Stats {
	s := Stats{ByCategory: make(map[Category]Money)}
	for _, t := range txns {
		if t.Date.SameMonth(now) {
			s.SumMonth = s.SumMonth.Add(t.Amount)
			s.ByCategory[t.Category] = s.ByCategory[t.Category].Add(t.Amount)
		}
		if t.Date.SameDay(now) {
			s.SumToday = s.SumToday.Add(t.Amount)
		}
		if t.Amount.Cents > s.MaxSingle.Cents {
			s.MaxSingle = t.Amount
		}
	}
	return s
}
