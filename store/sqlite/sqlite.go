/*
Package sqlite provides a SQLite-backed loan book and rate table store.

PURPOSE:
  Persists what the dashboard around the engine needs between requests:
  named commission rate tables and the loans agents have originated. The
  calculation engines never import this package; callers load records
  here and pass plain values into amortization/commission.

KEY TABLES:
  rate_tables: JSON rate table definitions (see factory/ratetable.go)
  loans:       Originated loans with the commission fixed at origination

MONEY COLUMNS:
  Decimals are stored as TEXT (decimal.Decimal.String()) so values
  round-trip exactly. SQLite REAL would reintroduce float drift.

DATES:
  disbursed_at is a YYYY-MM-DD TEXT column, NULL until disbursement.
  created_at / updated_at are RFC3339 timestamps.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are pinned to a
  single connection, since every new SQLite connection to ":memory:" opens
  a separate empty database.

USAGE:
  store, err := sqlite.New("./data/lending.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory/ratetable.go: parses rate_tables.config_json
  - commission/aggregate.go: consumes LoanRecord.Disbursed()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/generic"
)

// Store persists rate tables and loans in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
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

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rate_tables (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		client_name TEXT NOT NULL,
		amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		term_days INTEGER NOT NULL,
		frequency TEXT NOT NULL,
		rate_table_id TEXT,
		commission_amount TEXT NOT NULL,
		disbursed_at TEXT,
		created_at TEXT NOT NULL
	);

	-- Agent commission reports filter by agent then disbursement date
	CREATE INDEX IF NOT EXISTS idx_loans_agent_disbursed
		ON loans(agent_id, disbursed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RATE TABLES
// =============================================================================

// RateTableRecord is a stored rate table definition.
type RateTableRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveRateTable inserts a table or replaces its definition, bumping the version.
func (s *Store) SaveRateTable(ctx context.Context, rt RateTableRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rate_tables (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = rate_tables.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, query, rt.ID, rt.Name, rt.ConfigJSON, now, now); err != nil {
		return fmt.Errorf("failed to save rate table %s: %w", rt.ID, err)
	}
	return nil
}

// GetRateTable returns generic.ErrNotFound when no table has the id.
func (s *Store) GetRateTable(ctx context.Context, id string) (*RateTableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rt RateTableRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM rate_tables WHERE id = ?",
		id,
	).Scan(&rt.ID, &rt.Name, &rt.ConfigJSON, &rt.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rate table %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rt, nil
}

func (s *Store) ListRateTables(ctx context.Context) ([]RateTableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM rate_tables ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []RateTableRecord
	for rows.Next() {
		var rt RateTableRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.ConfigJSON, &rt.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		tables = append(tables, rt)
	}
	return tables, rows.Err()
}

func (s *Store) DeleteRateTable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM rate_tables WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "rate table "+id)
}

// =============================================================================
// LOANS
// =============================================================================

// LoanRecord is an originated loan. CommissionAmount is fixed when the loan
// is saved and never recomputed.
type LoanRecord struct {
	ID               string
	AgentID          string
	ClientName       string
	Amount           decimal.Decimal
	InterestRate     decimal.Decimal
	TermDays         int
	Frequency        string
	RateTableID      string
	CommissionAmount decimal.Decimal
	DisbursedAt      *generic.Date
	CreatedAt        time.Time
}

// Disbursed converts the record into the aggregator's input shape.
func (l LoanRecord) Disbursed() commission.DisbursedLoan {
	return commission.DisbursedLoan{
		ID:               l.ID,
		AgentID:          l.AgentID,
		Amount:           l.Amount,
		CommissionAmount: l.CommissionAmount,
		DisbursedAt:      l.DisbursedAt,
	}
}

// SaveLoan inserts a loan, assigning a UUID when ID is empty. Returns the
// stored record.
func (s *Store) SaveLoan(ctx context.Context, loan LoanRecord) (LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	loan.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO loans (id, agent_id, client_name, amount, interest_rate, term_days,
			frequency, rate_table_id, commission_amount, disbursed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		loan.ID, loan.AgentID, loan.ClientName,
		loan.Amount.String(), loan.InterestRate.String(), loan.TermDays,
		loan.Frequency, nullString(loan.RateTableID), loan.CommissionAmount.String(),
		nullDate(loan.DisbursedAt), loan.CreatedAt.Format(time.RFC3339),
	)
	if isPrimaryKeyViolation(err) {
		return LoanRecord{}, fmt.Errorf("loan %s: %w", loan.ID, generic.ErrConflict)
	}
	if err != nil {
		return LoanRecord{}, fmt.Errorf("failed to save loan %s: %w", loan.ID, err)
	}
	return loan, nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// GetLoan returns generic.ErrNotFound when no loan has the id.
func (s *Store) GetLoan(ctx context.Context, id string) (*LoanRecord, error) {
	loans, err := s.queryLoans(ctx, loanSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, fmt.Errorf("loan %s: %w", id, generic.ErrNotFound)
	}
	return &loans[0], nil
}

func (s *Store) ListLoans(ctx context.Context) ([]LoanRecord, error) {
	return s.queryLoans(ctx, loanSelect+" ORDER BY created_at, id")
}

func (s *Store) ListLoansByAgent(ctx context.Context, agentID string) ([]LoanRecord, error) {
	return s.queryLoans(ctx, loanSelect+" WHERE agent_id = ? ORDER BY created_at, id", agentID)
}

// MarkDisbursed sets the disbursement date of a loan.
func (s *Store) MarkDisbursed(ctx context.Context, id string, on generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE loans SET disbursed_at = ? WHERE id = ?", on.String(), id)
	if err != nil {
		return fmt.Errorf("failed to disburse loan %s: %w", id, err)
	}
	return requireAffected(res, "loan "+id)
}

// Reset clears all data (for testing/demo purposes).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM loans; DELETE FROM rate_tables;")
	return err
}

const loanSelect = `SELECT id, agent_id, client_name, amount, interest_rate, term_days,
	frequency, rate_table_id, commission_amount, disbursed_at, created_at FROM loans`

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []LoanRecord
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func scanLoan(rows *sql.Rows) (LoanRecord, error) {
	var l LoanRecord
	var amount, rate, commissionAmount, createdAt string
	var rateTableID, disbursedAt sql.NullString

	err := rows.Scan(&l.ID, &l.AgentID, &l.ClientName, &amount, &rate, &l.TermDays,
		&l.Frequency, &rateTableID, &commissionAmount, &disbursedAt, &createdAt)
	if err != nil {
		return LoanRecord{}, err
	}

	if l.Amount, err = decimal.NewFromString(amount); err != nil {
		return LoanRecord{}, fmt.Errorf("loan %s amount: %w", l.ID, err)
	}
	if l.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return LoanRecord{}, fmt.Errorf("loan %s interest_rate: %w", l.ID, err)
	}
	if l.CommissionAmount, err = decimal.NewFromString(commissionAmount); err != nil {
		return LoanRecord{}, fmt.Errorf("loan %s commission_amount: %w", l.ID, err)
	}
	l.RateTableID = rateTableID.String
	if disbursedAt.Valid {
		on, err := generic.ParseDate(disbursedAt.String)
		if err != nil {
			return LoanRecord{}, fmt.Errorf("loan %s disbursed_at: %w", l.ID, err)
		}
		l.DisbursedAt = &on
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return l, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d *generic.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, generic.ErrNotFound)
	}
	return nil
}
