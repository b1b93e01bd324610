package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Health        Category = "Health"
	Education     Category = "Education"
	Other         Category = "Other"
)

type (
	// Category is one of the eight fixed expense categories.
	Category string

	// Date is a calendar date with no time component. The zero value is invalid.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single expense record. ID is zero until the store assigns one.
	Expense struct {
		ID       int64
		Amount   Money
		Category Category
		Date     Date
		Note     string
	}
)

// Categories lists all valid categories in display order.
var Categories = []Category{Food, Transport, Shopping, Bills, Entertainment, Health, Education, Other}

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// ParseCategory normalizes user input to the canonical Title-Case label.
// Matching is case-insensitive; anything outside the fixed set is an error.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidCategory
	}
	normalized := NormalizeCategoryToken(s)
	for _, c := range Categories {
		if Category(normalized) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// NormalizeCategoryToken applies the canonical casing: first letter upper,
// rest lower. It does not check membership in the category set.
func NormalizeCategoryToken(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates now to its calendar date.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO 8601 date string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the ISO 8601 form used at the store boundary.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// SameDay reports whether d and now fall on the same calendar day.
func (d Date) SameDay(now time.Time) bool {
	return d.Year() == now.Year() && d.Time.Month() == now.Month() && d.Day() == now.Day()
}

// SameMonth reports whether d falls in the same calendar month and year as now.
func (d Date) SameMonth(now time.Time) bool {
	return d.Year() == now.Year() && d.Time.Month() == now.Month()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Persisted reports whether the record carries a store-assigned id.
// An Expense without an id is a transient draft and must not enter the cache.
func (e Expense) Persisted() bool {
	return e.ID != 0
}
