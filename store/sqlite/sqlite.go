/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the persistence interfaces (statutory.TxTemplateStore,
  payroll.StaffStore, payroll.RunStore) using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  statutory.TxTemplateStore: Versioned deduction templates
  payroll.StaffStore:        Payable staff
  payroll.RunStore:          Priced payroll runs with payslips

APPEND-ONLY ENFORCEMENT:
  statutory_templates is append-only apart from effective_to:
  - The only UPDATE sets effective_to on a row where it is NULL
  - No DELETE statements on statutory_templates
  - Rates change by publishing a new version

KEY TABLES:
  statutory_templates: Template versions, formula stored as JSON
  staff:               Staff members
  payroll_runs:        One row per country and pay period
  payslips:            One row per staff member of a run
  payslip_lines:       One row per applied deduction

MONEY:
  Decimals are stored as TEXT (decimal.String) and never as REAL, so a
  payslip read back is identical to the one that was computed.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/edusuite.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  catalog := statutory.NewCatalog(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - statutory/store.go: Template store interfaces
  - payroll/store.go: Staff and run store interfaces
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Statutory deduction templates (append-only, effective_to set once)
	CREATE TABLE IF NOT EXISTS statutory_templates (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		country TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		calculation_type TEXT NOT NULL,
		formula_json TEXT NOT NULL,
		calculation_order INTEGER NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		reduces_taxable_income BOOLEAN NOT NULL DEFAULT FALSE,
		employer_rate TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Date resolution (hot path of every payroll run)
	CREATE INDEX IF NOT EXISTS idx_templates_country_code
		ON statutory_templates(country, code, effective_from);

	-- Staff
	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		country TEXT NOT NULL,
		gross_salary TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_staff_country
		ON staff(country, name);

	-- Payroll runs (one per country and period)
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		country TEXT NOT NULL,
		period TEXT NOT NULL,
		currency TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		status TEXT NOT NULL,
		totals_json TEXT NOT NULL,
		failures_json TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(country, period)
	);

	-- Payslips
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES payroll_runs(id),
		position INTEGER NOT NULL,
		staff_id TEXT NOT NULL,
		staff_name TEXT NOT NULL,
		gross_salary TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		total_employer_contributions TEXT NOT NULL,
		requires_review BOOLEAN NOT NULL DEFAULT FALSE,
		net_formatted TEXT NOT NULL,
		net_in_words TEXT NOT NULL,
		UNIQUE(run_id, staff_id)
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_run
		ON payslips(run_id, position);

	-- Payslip deduction lines
	CREATE TABLE IF NOT EXISTS payslip_lines (
		payslip_id TEXT NOT NULL REFERENCES payslips(id),
		position INTEGER NOT NULL,
		template_id TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		calculation_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		employer_contribution TEXT NOT NULL,
		taxable_base TEXT NOT NULL,
		reduces_taxable_income BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (payslip_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// inTx runs fn inside a database transaction. Callers hold s.mu.
func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payslip_lines", "payslips", "payroll_runs", "staff", "statutory_templates"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
