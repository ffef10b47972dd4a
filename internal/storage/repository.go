// Package storage is the SQLite persistence store for the cashflow profile and
// the loan set.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"viveka/internal/core"

	_ "modernc.org/sqlite"
)

// timestamps are stored as RFC 3339 text; the empty string means unset.
const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; every save is a single transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
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

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &core.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// LoadCashflow implements ports.CashflowStore.
func (r *SQLiteRepository) LoadCashflow(ctx context.Context) (core.CashflowProfile, error) {
	var p core.CashflowProfile

	err := r.db.QueryRowContext(ctx, `SELECT monthly_income FROM cashflow WHERE id = 1`).Scan(&p.MonthlyIncome)
	if err != nil && err != sql.ErrNoRows {
		return p, &core.StorageError{Op: "load cashflow", Err: err}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT kind, name, amount FROM expenses ORDER BY kind, position`)
	if err != nil {
		return p, &core.StorageError{Op: "load expenses", Err: err}
	}
	defer rows.Close()

	p.FixedExpenses = []core.ExpenseItem{}
	p.VariableExpenses = []core.ExpenseItem{}
	for rows.Next() {
		var (
			kind string
			item core.ExpenseItem
		)
		if err := rows.Scan(&kind, &item.Name, &item.Amount); err != nil {
			return p, &core.StorageError{Op: "scan expense", Err: err}
		}
		switch kind {
		case "fixed":
			p.FixedExpenses = append(p.FixedExpenses, item)
		case "variable":
			p.VariableExpenses = append(p.VariableExpenses, item)
		}
	}
	if err := rows.Err(); err != nil {
		return p, &core.StorageError{Op: "load expenses", Err: err}
	}

	return p, nil
}

// SaveCashflow implements ports.CashflowStore. The profile replaces the stored
// one in a single transaction.
func (r *SQLiteRepository) SaveCashflow(ctx context.Context, p core.CashflowProfile) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cashflow (id, monthly_income) VALUES (1, ?)
			 ON CONFLICT(id) DO UPDATE SET monthly_income = excluded.monthly_income`,
			p.MonthlyIncome); err != nil {
			return fmt.Errorf("upsert income: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses (kind, position, name, amount) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare expense insert: %w", err)
		}
		defer stmt.Close()

		for kind, items := range map[string][]core.ExpenseItem{"fixed": p.FixedExpenses, "variable": p.VariableExpenses} {
			for i, it := range items {
				if _, err := stmt.ExecContext(ctx, kind, i, it.Name, it.Amount); err != nil {
					return fmt.Errorf("insert %s expense %d: %w", kind, i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return &core.StorageError{Op: "save cashflow", Err: err}
	}

	slog.InfoContext(ctx, "Cashflow saved to SQLite",
		"income", p.MonthlyIncome,
		"fixed_items", len(p.FixedExpenses),
		"variable_items", len(p.VariableExpenses))
	return nil
}

const loanColumns = `id, loan_no, lender, type, status, principal, interest_rate, total_months,
	months_paid, emi, extra_paid, interest_only, archived, last_paid_month,
	created_at, archived_at, restored_at, closed_at`

// LoadLoans implements ports.LoanStore. Loans come back in saved order.
func (r *SQLiteRepository) LoadLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY position`)
	if err != nil {
		return nil, &core.StorageError{Op: "load loans", Err: err}
	}
	defer rows.Close()

	loans := []core.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, &core.StorageError{Op: "scan loan", Err: err}
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "load loans", Err: err}
	}
	return loans, nil
}

// SaveLoans implements ports.LoanStore by replacing every row in one
// transaction.
func (r *SQLiteRepository) SaveLoans(ctx context.Context, loans []core.Loan) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM loans`); err != nil {
			return fmt.Errorf("clear loans: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO loans (position, `+loanColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare loan insert: %w", err)
		}
		defer stmt.Close()

		for i, l := range loans {
			if _, err := stmt.ExecContext(ctx, i,
				l.ID, l.LoanNo, l.Lender, string(l.Type), string(l.Status),
				l.Principal, l.InterestRate, l.TotalMonths,
				l.MonthsPaid, l.EMI, l.ExtraPaid, l.InterestOnly, l.Archived, l.LastPaidMonth,
				formatTime(&l.CreatedAt), formatTime(l.ArchivedAt), formatTime(l.RestoredAt), formatTime(l.ClosedAt),
			); err != nil {
				return fmt.Errorf("insert loan %s: %w", l.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return &core.StorageError{Op: "save loans", Err: err}
	}

	slog.DebugContext(ctx, "Loans saved to SQLite", "count", len(loans))
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(s scanner) (core.Loan, error) {
	var l core.Loan
	var loanType, status string
	var createdAt, archivedAt, restoredAt, closedAt string
	err := s.Scan(
		&l.ID, &l.LoanNo, &l.Lender, &loanType, &status,
		&l.Principal, &l.InterestRate, &l.TotalMonths,
		&l.MonthsPaid, &l.EMI, &l.ExtraPaid, &l.InterestOnly, &l.Archived, &l.LastPaidMonth,
		&createdAt, &archivedAt, &restoredAt, &closedAt,
	)
	if err != nil {
		return l, err
	}
	l.Type = core.LoanType(loanType)
	l.Status = core.LoanStatus(status)

	if t := parseTime(createdAt); t != nil {
		l.CreatedAt = *t
	}
	l.ArchivedAt = parseTime(archivedAt)
	l.RestoredAt = parseTime(restoredAt)
	l.ClosedAt = parseTime(closedAt)

	l.Normalize()
	return l, nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
