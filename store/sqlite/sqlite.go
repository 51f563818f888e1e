/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Durable storage for shift policies, assignments and clock records. In
  production the same patterns apply to PostgreSQL; only minor SQL dialect
  differences.

KEY TABLES:
  policies:          Policy definitions as factory JSON (versioned)
  shift_assignments: Employee-to-policy periods (start/end dates, end NULL = open)
  clock_records:     Clock-in/clock-out pairs keyed by schedule date

ATOMIC ASSIGN:
  Assign loads the employee's periods, plans the change with
  shift.Timeline, then closes the open period and inserts the new one in a
  single SQL transaction. A failure rolls both back.

POLICY READS:
  Stored JSON is parsed and validated again on every read. A row that no
  longer validates (e.g. edited by hand) is reported, never used.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  st, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  engine := shift.NewEngine(st, st)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Store interface
  - store/memory.go: In-memory implementation for testing
  - factory/policy.go: Policy JSON format
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.PolicyFactory
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	st := &Store{db: db, factory: factory.NewPolicyFactory()}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Policies
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Shift Assignments
	CREATE TABLE IF NOT EXISTS shift_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		policy_id TEXT NOT NULL REFERENCES policies(id),
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON shift_assignments(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_assignments_policy
		ON shift_assignments(policy_id);

	-- At most one open assignment per employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_one_open
		ON shift_assignments(employee_id) WHERE end_date IS NULL;

	-- Clock Records
	CREATE TABLE IF NOT EXISTS clock_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clock_employee_date
		ON clock_records(employee_id, work_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// POLICY STORE
// =============================================================================

// SavePolicy validates and stores a policy, bumping its version on update.
func (s *Store) SavePolicy(ctx context.Context, p shift.ShiftPolicy) error {
	if err := shift.MustBeValid(p); err != nil {
		return err
	}
	config, err := s.factory.MarshalPolicy(p)
	if err != nil {
		return fmt.Errorf("failed to encode policy %s: %w", p.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO policies (id, name, shift_type, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			shift_type = excluded.shift_type,
			config_json = excluded.config_json,
			version = policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, string(p.ID), p.Name, string(p.Type), string(config), now, now)
	return err
}

// Policy retrieves a policy by ID.
func (s *Store) Policy(ctx context.Context, id shift.PolicyID) (shift.ShiftPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policyTx(ctx, s.db, id)
}

func (s *Store) policyTx(ctx context.Context, q queryer, id shift.PolicyID) (shift.ShiftPolicy, error) {
	var config string
	err := q.QueryRowContext(ctx, "SELECT config_json FROM policies WHERE id = ?", string(id)).Scan(&config)
	if errors.Is(err, sql.ErrNoRows) {
		return shift.ShiftPolicy{}, fmt.Errorf("%w: %s", shift.ErrPolicyNotFound, id)
	}
	if err != nil {
		return shift.ShiftPolicy{}, err
	}
	return s.decodePolicy(config)
}

// ListPolicies returns all policies ordered by ID.
func (s *Store) ListPolicies(ctx context.Context) ([]shift.ShiftPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json FROM policies ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []shift.ShiftPolicy
	for rows.Next() {
		var config string
		if err := rows.Scan(&config); err != nil {
			return nil, err
		}
		p, err := s.decodePolicy(config)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// PolicyVersion returns how many times a policy has been saved.
func (s *Store) PolicyVersion(ctx context.Context, id shift.PolicyID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM policies WHERE id = ?", string(id)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", shift.ErrPolicyNotFound, id)
	}
	return version, err
}

func (s *Store) decodePolicy(config string) (shift.ShiftPolicy, error) {
	var pj factory.PolicyJSON
	if err := json.Unmarshal([]byte(config), &pj); err != nil {
		return shift.ShiftPolicy{}, fmt.Errorf("corrupt policy row: %w", err)
	}
	p, violations := s.factory.FromJSON(pj)
	if len(violations) > 0 {
		return shift.ShiftPolicy{}, fmt.Errorf("stored policy %s: %w", p.ID,
			&shift.ValidationError{PolicyID: p.ID, Violations: violations})
	}
	return p, nil
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// AssignmentsFor returns an employee's assignments ordered by start date.
func (s *Store) AssignmentsFor(ctx context.Context, employee shift.EmployeeID) ([]shift.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAssignments(ctx, s.db, employee)
}

// Assign attaches a policy to an employee in one SQL transaction.
func (s *Store) Assign(ctx context.Context, a shift.ShiftAssignment) (shift.AssignmentChange, error) {
	a = store.PrepareAssignment(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return shift.AssignmentChange{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := s.policyTx(ctx, sqlTx, a.PolicyID); err != nil {
		return shift.AssignmentChange{}, err
	}

	existing, err := queryAssignments(ctx, sqlTx, a.EmployeeID)
	if err != nil {
		return shift.AssignmentChange{}, err
	}
	change, err := shift.NewTimeline(a.EmployeeID, existing).Plan(a)
	if err != nil {
		return shift.AssignmentChange{}, err
	}

	if change.Closed != nil {
		if _, err := sqlTx.ExecContext(ctx,
			"UPDATE shift_assignments SET end_date = ? WHERE id = ? AND end_date IS NULL",
			change.Closed.EndDate.String(), string(change.Closed.ID),
		); err != nil {
			return shift.AssignmentChange{}, fmt.Errorf("failed to close assignment %s: %w", change.Closed.ID, err)
		}
	}

	opened := change.Opened
	if _, err := sqlTx.ExecContext(ctx, `
		INSERT INTO shift_assignments (id, employee_id, policy_id, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(opened.ID), string(opened.EmployeeID), string(opened.PolicyID),
		opened.StartDate.String(), nullDate(opened.EndDate),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return shift.AssignmentChange{}, fmt.Errorf("failed to insert assignment: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return shift.AssignmentChange{}, err
	}
	return change, nil
}

// Employees lists employees with assignments, ordered by ID.
func (s *Store) Employees(ctx context.Context) ([]shift.EmployeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT employee_id FROM shift_assignments ORDER BY employee_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shift.EmployeeID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, shift.EmployeeID(id))
	}
	return out, rows.Err()
}

func queryAssignments(ctx context.Context, q queryer, employee shift.EmployeeID) ([]shift.ShiftAssignment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, employee_id, policy_id, start_date, end_date
		FROM shift_assignments
		WHERE employee_id = ?
		ORDER BY start_date ASC
	`, string(employee))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []shift.ShiftAssignment
	for rows.Next() {
		var id, emp, policy, start string
		var end sql.NullString
		if err := rows.Scan(&id, &emp, &policy, &start, &end); err != nil {
			return nil, err
		}

		a := shift.ShiftAssignment{
			ID:         shift.AssignmentID(id),
			EmployeeID: shift.EmployeeID(emp),
			PolicyID:   shift.PolicyID(policy),
		}
		if a.StartDate, err = shift.ParseDate(start); err != nil {
			return nil, fmt.Errorf("assignment %s: %w", id, err)
		}
		if end.Valid {
			d, err := shift.ParseDate(end.String)
			if err != nil {
				return nil, fmt.Errorf("assignment %s: %w", id, err)
			}
			a.EndDate = &d
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// =============================================================================
// CLOCK RECORDS
// =============================================================================

// RecordClock stores a clock-in/clock-out pair.
func (s *Store) RecordClock(ctx context.Context, r store.ClockRecord) (store.ClockRecord, error) {
	r, err := store.PrepareClock(r)
	if err != nil {
		return store.ClockRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clock_records (id, employee_id, work_date, clock_in, clock_out, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.EmployeeID), r.Date.String(),
		r.In.UTC().Format(time.RFC3339), r.Out.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return store.ClockRecord{}, fmt.Errorf("clock record %s already exists", r.ID)
	}
	if err != nil {
		return store.ClockRecord{}, err
	}
	return r, nil
}

// ClockRecords returns the records whose schedule date is in [from, to],
// ordered by clock-in.
func (s *Store) ClockRecords(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) ([]store.ClockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, work_date, clock_in, clock_out
		FROM clock_records
		WHERE employee_id = ? AND work_date BETWEEN ? AND ?
		ORDER BY clock_in ASC
	`, string(employee), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.ClockRecord
	for rows.Next() {
		var r store.ClockRecord
		var emp, workDate, in, out string
		if err := rows.Scan(&r.ID, &emp, &workDate, &in, &out); err != nil {
			return nil, err
		}
		r.EmployeeID = shift.EmployeeID(emp)
		r.Date, _ = shift.ParseDate(workDate)
		r.In, _ = time.Parse(time.RFC3339, in)
		r.Out, _ = time.Parse(time.RFC3339, out)
		records = append(records, r)
	}
	return records, rows.Err()
}

// PresentDates returns the distinct schedule dates with a clock record.
func (s *Store) PresentDates(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) ([]shift.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT work_date
		FROM clock_records
		WHERE employee_id = ? AND work_date BETWEEN ? AND ?
		ORDER BY work_date ASC
	`, string(employee), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []shift.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := shift.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CountPresentDays counts distinct dates with a clock record.
func (s *Store) CountPresentDays(ctx context.Context, employee shift.EmployeeID, from, to shift.Date) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT work_date)
		FROM clock_records
		WHERE employee_id = ? AND work_date BETWEEN ? AND ?
	`, string(employee), from.String(), to.String()).Scan(&n)
	return n, err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"clock_records", "shift_assignments", "policies"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullDate(d *shift.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
