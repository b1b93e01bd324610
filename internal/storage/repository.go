package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendsense/internal/core"
	"spendsense/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable Expense Store over a single expenses table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; concurrent connections from batch
	// operations would trip SQLITE_BUSY, so all access shares one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List implements store.Store. Records come back newest date first, ties
// broken by id descending, matching the reference service's return order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, note, date
		 FROM expenses
		 ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			cat     string
			dateStr string
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &cat, &e.Note, &dateStr); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(cat)
		d, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		e.Date = d
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// Create implements store.Store.
func (r *SQLiteRepository) Create(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, &store.ValidationError{Reason: err.Error()}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, category, note, date) VALUES (?, ?, ?, ?)`,
		e.Amount.Cents, string(e.Category), e.Note, e.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.String())

	return id, nil
}

// Update implements store.Store. A missing id yields count 0 and NotFoundError.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, &store.ValidationError{Reason: err.Error()}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category = ?, note = ?, date = ? WHERE id = ?`,
		e.Amount.Cents, string(e.Category), e.Note, e.Date.String(), id)
	if err != nil {
		return 0, fmt.Errorf("update expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return 0, &store.NotFoundError{ID: id}
	}
	return n, nil
}

// Delete implements store.Store. Deleting a missing id is not an error; the
// count tells the caller whether anything happened.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
