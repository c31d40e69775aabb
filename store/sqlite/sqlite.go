/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements grievance.Store (regions, levels, cases, sweep runs) using
  SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  hierarchy_levels:    Level records with their SLA policy fields
  regions:             Flat region records, parent by id
  cases:               Grievance records with per-lane SLA state
  escalation_history:  Append-only audit of region moves
  sweep_runs:          One row per monitor execution

APPEND-ONLY HISTORY:
  escalation_history has no UPDATE or DELETE path. SaveCase only inserts
  the records beyond the stored count, so audit rows survive every
  rewrite of the case row.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx wraps the per-case
  read-evaluate-persist cycle in one database transaction; the tx view
  routes through unlocked helpers so it never re-enters the mutex.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  during the sweep's writes.

USAGE:
  store, err := sqlite.New("./data/grievance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - grievance/store.go: Interface definitions
  - grievance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/grievance-engine/grievance"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store implements grievance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// memSeq names in-memory databases so each store gets its own.
var memSeq atomic.Int64

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		// Plain ":memory:" gives every pooled connection its own empty
		// database; a named shared-cache database keeps the pool on one
		// without leaking state between stores.
		dsn = fmt.Sprintf("file:memdb%d?mode=memory&cache=shared&_foreign_keys=on",
			memSeq.Add(1))
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hierarchy_levels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		project_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		ack_days INTEGER NOT NULL,
		resolution_days INTEGER NOT NULL,
		reminder_before_days INTEGER NOT NULL,
		auto_escalate INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_levels_project_rank
		ON hierarchy_levels(project_id, rank);

	CREATE TABLE IF NOT EXISTS regions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		project_id TEXT NOT NULL,
		level_id TEXT NOT NULL REFERENCES hierarchy_levels(id),
		parent_id TEXT REFERENCES regions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_regions_project
		ON regions(project_id);
	CREATE INDEX IF NOT EXISTS idx_regions_parent
		ON regions(parent_id) WHERE parent_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		tracking_code TEXT NOT NULL UNIQUE,
		project_id TEXT NOT NULL,
		region_id TEXT NOT NULL REFERENCES regions(id),
		status TEXT NOT NULL,
		clock_start TEXT NOT NULL,
		ack_due TEXT NOT NULL,
		resolution_due TEXT NOT NULL,
		ack_lane TEXT NOT NULL,
		resolution_lane TEXT NOT NULL,
		ack_breached_at TEXT,
		resolution_breached_at TEXT,
		acknowledged_at TEXT,
		resolved_at TEXT,
		escalation_count INTEGER NOT NULL DEFAULT 0,
		last_escalated_at TEXT
	);

	-- Hot path: the sweep lists non-terminal cases every run
	CREATE INDEX IF NOT EXISTS idx_cases_status
		ON cases(status);
	CREATE INDEX IF NOT EXISTS idx_cases_region
		ON cases(region_id);

	-- Append-only audit of escalations; seq preserves order per case
	CREATE TABLE IF NOT EXISTS escalation_history (
		case_id TEXT NOT NULL REFERENCES cases(id),
		seq INTEGER NOT NULL,
		from_region TEXT NOT NULL,
		to_region TEXT NOT NULL,
		at TEXT NOT NULL,
		reason TEXT NOT NULL,
		note TEXT,
		actor TEXT,
		PRIMARY KEY (case_id, seq)
	);

	CREATE TABLE IF NOT EXISTS sweep_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		status TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		reminders_sent INTEGER NOT NULL DEFAULT 0,
		breached INTEGER NOT NULL DEFAULT 0,
		escalated INTEGER NOT NULL DEFAULT 0,
		escalation_blocked INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// HIERARCHY LEVELS
// =============================================================================

func (s *Store) SaveLevel(ctx context.Context, level grievance.HierarchyLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO hierarchy_levels
		(id, name, project_id, rank, ack_days, resolution_days, reminder_before_days, auto_escalate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			project_id = excluded.project_id,
			rank = excluded.rank,
			ack_days = excluded.ack_days,
			resolution_days = excluded.resolution_days,
			reminder_before_days = excluded.reminder_before_days,
			auto_escalate = excluded.auto_escalate
	`
	_, err := s.db.ExecContext(ctx, query,
		level.ID, level.Name, level.ProjectID, level.Rank,
		level.Policy.AckDays, level.Policy.ResolutionDays,
		level.Policy.ReminderBeforeDays, boolToInt(level.Policy.AutoEscalate))
	if err != nil {
		return fmt.Errorf("failed to save level: %w", err)
	}
	return nil
}

func (s *Store) GetLevel(ctx context.Context, id grievance.LevelID) (grievance.HierarchyLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, project_id, rank, ack_days, resolution_days, reminder_before_days, auto_escalate
		FROM hierarchy_levels WHERE id = ?`, id)
	return scanLevel(row)
}

func (s *Store) ListLevels(ctx context.Context, project grievance.ProjectID) ([]grievance.HierarchyLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, project_id, rank, ack_days, resolution_days, reminder_before_days, auto_escalate
		FROM hierarchy_levels WHERE project_id = ? ORDER BY rank`, project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []grievance.HierarchyLevel
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLevel(row scanner) (grievance.HierarchyLevel, error) {
	var level grievance.HierarchyLevel
	var autoEscalate int
	err := row.Scan(&level.ID, &level.Name, &level.ProjectID, &level.Rank,
		&level.Policy.AckDays, &level.Policy.ResolutionDays,
		&level.Policy.ReminderBeforeDays, &autoEscalate)
	if err == sql.ErrNoRows {
		return grievance.HierarchyLevel{}, grievance.ErrUnknownLevel
	}
	if err != nil {
		return grievance.HierarchyLevel{}, fmt.Errorf("failed to scan level: %w", err)
	}
	level.Policy.AutoEscalate = autoEscalate != 0
	return level, nil
}

// =============================================================================
// REGIONS
// =============================================================================

func (s *Store) SaveRegion(ctx context.Context, region grievance.AdministrativeRegion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent any
	if region.ParentID != nil {
		parent = string(*region.ParentID)
	}
	query := `
		INSERT INTO regions (id, name, project_id, level_id, parent_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			project_id = excluded.project_id,
			level_id = excluded.level_id,
			parent_id = excluded.parent_id
	`
	_, err := s.db.ExecContext(ctx, query, region.ID, region.Name, region.ProjectID, region.LevelID, parent)
	if err != nil {
		return fmt.Errorf("failed to save region: %w", err)
	}
	return nil
}

func (s *Store) GetRegion(ctx context.Context, id grievance.RegionID) (grievance.AdministrativeRegion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, project_id, level_id, parent_id FROM regions WHERE id = ?`, id)
	return scanRegion(row)
}

func (s *Store) ListRegions(ctx context.Context, project grievance.ProjectID) ([]grievance.AdministrativeRegion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, project_id, level_id, parent_id FROM regions
		WHERE project_id = ? ORDER BY id`, project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []grievance.AdministrativeRegion
	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func scanRegion(row scanner) (grievance.AdministrativeRegion, error) {
	var region grievance.AdministrativeRegion
	var parent sql.NullString
	err := row.Scan(&region.ID, &region.Name, &region.ProjectID, &region.LevelID, &parent)
	if err == sql.ErrNoRows {
		return grievance.AdministrativeRegion{}, grievance.ErrUnknownRegion
	}
	if err != nil {
		return grievance.AdministrativeRegion{}, fmt.Errorf("failed to scan region: %w", err)
	}
	if parent.Valid {
		id := grievance.RegionID(parent.String)
		region.ParentID = &id
	}
	return region, nil
}

// =============================================================================
// CASES
// =============================================================================

func (s *Store) SaveCase(ctx context.Context, c grievance.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCase(ctx, s.db, c)
}

func (s *Store) saveCase(ctx context.Context, db dbtx, c grievance.Case) error {
	query := `
		INSERT INTO cases
		(id, tracking_code, project_id, region_id, status,
		 clock_start, ack_due, resolution_due, ack_lane, resolution_lane,
		 ack_breached_at, resolution_breached_at, acknowledged_at, resolved_at,
		 escalation_count, last_escalated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tracking_code = excluded.tracking_code,
			project_id = excluded.project_id,
			region_id = excluded.region_id,
			status = excluded.status,
			clock_start = excluded.clock_start,
			ack_due = excluded.ack_due,
			resolution_due = excluded.resolution_due,
			ack_lane = excluded.ack_lane,
			resolution_lane = excluded.resolution_lane,
			ack_breached_at = excluded.ack_breached_at,
			resolution_breached_at = excluded.resolution_breached_at,
			acknowledged_at = excluded.acknowledged_at,
			resolved_at = excluded.resolved_at,
			escalation_count = excluded.escalation_count,
			last_escalated_at = excluded.last_escalated_at
	`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.TrackingCode, c.ProjectID, c.RegionID, c.Status,
		formatDate(c.ClockStart), formatDate(c.AckDue), formatDate(c.ResolutionDue),
		c.AckLane, c.ResolutionLane,
		nullTime(c.AckBreachedAt), nullTime(c.ResolutionBreachedAt),
		nullTime(c.AcknowledgedAt), nullTime(c.ResolvedAt),
		c.EscalationCount, nullTime(c.LastEscalatedAt))
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}

	return s.appendHistory(ctx, db, c)
}

// appendHistory inserts only the history records beyond the stored
// count. The table is append-only; existing rows are never touched.
func (s *Store) appendHistory(ctx context.Context, db dbtx, c grievance.Case) error {
	var stored int
	row := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM escalation_history WHERE case_id = ?`, c.ID)
	if err := row.Scan(&stored); err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	for i := stored; i < len(c.History); i++ {
		rec := c.History[i]
		_, err := db.ExecContext(ctx, `
			INSERT INTO escalation_history (case_id, seq, from_region, to_region, at, reason, note, actor)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, rec.FromRegion, rec.ToRegion, rec.At.UTC().Format(timeLayout),
			rec.Reason, rec.Note, rec.Actor)
		if err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
	}
	return nil
}

func (s *Store) GetCase(ctx context.Context, id grievance.CaseID) (grievance.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCase(ctx, s.db, id)
}

func (s *Store) getCase(ctx context.Context, db dbtx, id grievance.CaseID) (grievance.Case, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, tracking_code, project_id, region_id, status,
		       clock_start, ack_due, resolution_due, ack_lane, resolution_lane,
		       ack_breached_at, resolution_breached_at, acknowledged_at, resolved_at,
		       escalation_count, last_escalated_at
		FROM cases WHERE id = ?`, id)
	c, err := scanCase(row)
	if err != nil {
		return grievance.Case{}, err
	}

	history, err := loadHistory(ctx, db, id)
	if err != nil {
		return grievance.Case{}, err
	}
	c.History = history
	return c, nil
}

func (s *Store) ListOpenCases(ctx context.Context) ([]grievance.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tracking_code, project_id, region_id, status,
		       clock_start, ack_due, resolution_due, ack_lane, resolution_lane,
		       ack_breached_at, resolution_breached_at, acknowledged_at, resolved_at,
		       escalation_count, last_escalated_at
		FROM cases WHERE status NOT IN ('resolved', 'closed') ORDER BY id`)
	if err != nil {
		return nil, err
	}

	var cases []grievance.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range cases {
		history, err := loadHistory(ctx, s.db, cases[i].ID)
		if err != nil {
			return nil, err
		}
		cases[i].History = history
	}
	return cases, nil
}

func loadHistory(ctx context.Context, db dbtx, id grievance.CaseID) ([]grievance.EscalationRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT from_region, to_region, at, reason, note, actor
		FROM escalation_history WHERE case_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []grievance.EscalationRecord
	for rows.Next() {
		var rec grievance.EscalationRecord
		var at string
		var note, actor sql.NullString
		if err := rows.Scan(&rec.FromRegion, &rec.ToRegion, &at, &rec.Reason, &note, &actor); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		rec.At, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history timestamp: %w", err)
		}
		rec.Note = note.String
		rec.Actor = actor.String
		history = append(history, rec)
	}
	return history, rows.Err()
}

func scanCase(row scanner) (grievance.Case, error) {
	var c grievance.Case
	var clockStart, ackDue, resolutionDue string
	var ackBreached, resBreached, acknowledged, resolved, lastEscalated sql.NullString

	err := row.Scan(&c.ID, &c.TrackingCode, &c.ProjectID, &c.RegionID, &c.Status,
		&clockStart, &ackDue, &resolutionDue, &c.AckLane, &c.ResolutionLane,
		&ackBreached, &resBreached, &acknowledged, &resolved,
		&c.EscalationCount, &lastEscalated)
	if err == sql.ErrNoRows {
		return grievance.Case{}, grievance.ErrUnknownCase
	}
	if err != nil {
		return grievance.Case{}, fmt.Errorf("failed to scan case: %w", err)
	}

	if c.ClockStart, err = parseDate(clockStart); err != nil {
		return grievance.Case{}, err
	}
	if c.AckDue, err = parseDate(ackDue); err != nil {
		return grievance.Case{}, err
	}
	if c.ResolutionDue, err = parseDate(resolutionDue); err != nil {
		return grievance.Case{}, err
	}
	if c.AckBreachedAt, err = parseNullTime(ackBreached); err != nil {
		return grievance.Case{}, err
	}
	if c.ResolutionBreachedAt, err = parseNullTime(resBreached); err != nil {
		return grievance.Case{}, err
	}
	if c.AcknowledgedAt, err = parseNullTime(acknowledged); err != nil {
		return grievance.Case{}, err
	}
	if c.ResolvedAt, err = parseNullTime(resolved); err != nil {
		return grievance.Case{}, err
	}
	if c.LastEscalatedAt, err = parseNullTime(lastEscalated); err != nil {
		return grievance.Case{}, err
	}
	return c, nil
}

// =============================================================================
// TRANSACTIONAL STORE (grievance.TxCaseStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The tx view routes
// case reads/writes through the same *sql.Tx so the sweep's
// read-evaluate-persist cycle commits atomically.
//
// WithTx deliberately does not take the store mutex: fn resolves
// regions and policies through the ordinary read methods, which lock on
// their own. Atomicity for the case row comes from the database
// transaction itself.
func (s *Store) WithTx(ctx context.Context, fn func(grievance.CaseStore) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetCase(ctx context.Context, id grievance.CaseID) (grievance.Case, error) {
	return ts.parent.getCase(ctx, ts.tx, id)
}

func (ts *txStore) SaveCase(ctx context.Context, c grievance.Case) error {
	return ts.parent.saveCase(ctx, ts.tx, c)
}

func (ts *txStore) ListOpenCases(ctx context.Context) ([]grievance.Case, error) {
	return nil, fmt.Errorf("ListOpenCases is not available inside a case transaction")
}

// =============================================================================
// SWEEP RUNS
// =============================================================================

func (s *Store) SaveSweepRun(ctx context.Context, run grievance.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sweep_runs
		(id, started_at, completed_at, status, processed, reminders_sent,
		 breached, escalated, escalation_blocked, errors, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed_at = excluded.completed_at,
			status = excluded.status,
			processed = excluded.processed,
			reminders_sent = excluded.reminders_sent,
			breached = excluded.breached,
			escalated = excluded.escalated,
			escalation_blocked = excluded.escalation_blocked,
			errors = excluded.errors,
			error = excluded.error
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.StartedAt.UTC().Format(timeLayout), nullTime(run.CompletedAt), run.Status,
		run.Summary.Processed, run.Summary.RemindersSent, run.Summary.Breached,
		run.Summary.Escalated, run.Summary.EscalationBlocked, run.Summary.Errors,
		run.Error)
	if err != nil {
		return fmt.Errorf("failed to save sweep run: %w", err)
	}
	return nil
}

func (s *Store) ListSweepRuns(ctx context.Context, limit int) ([]grievance.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, status, processed, reminders_sent,
		       breached, escalated, escalation_blocked, errors, error
		FROM sweep_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []grievance.SweepRun
	for rows.Next() {
		var run grievance.SweepRun
		var started string
		var completed, runErr sql.NullString
		if err := rows.Scan(&run.ID, &started, &completed, &run.Status,
			&run.Summary.Processed, &run.Summary.RemindersSent, &run.Summary.Breached,
			&run.Summary.Escalated, &run.Summary.EscalationBlocked, &run.Summary.Errors,
			&runErr); err != nil {
			return nil, fmt.Errorf("failed to scan sweep run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("failed to parse sweep run timestamp: %w", err)
		}
		if run.CompletedAt, err = parseNullTime(completed); err != nil {
			return nil, err
		}
		run.Error = runErr.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) LastCompletedSweep(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var started sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT MAX(started_at) FROM sweep_runs WHERE status = 'completed'`)
	if err := row.Scan(&started); err != nil {
		return time.Time{}, err
	}
	if !started.Valid {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, started.String)
}

// Reset clears all data. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM escalation_history;
		DELETE FROM cases;
		DELETE FROM regions;
		DELETE FROM hierarchy_levels;
		DELETE FROM sweep_runs;
	`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatDate(d grievance.Date) string { return d.Time.Format(dateLayout) }

func parseDate(s string) (grievance.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return grievance.Date{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return grievance.Date{Time: t}, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", ns.String, err)
	}
	return &t, nil
}

var _ grievance.Store = (*Store)(nil)
