package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/easelhq/easel/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS editors (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    active     INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS editor_capacity (
    editor_id            TEXT PRIMARY KEY REFERENCES editors(id),
    max_concurrent_units INTEGER NOT NULL DEFAULT 10,
    max_hours_per_week   INTEGER,
    load_percentage      REAL NOT NULL DEFAULT 0,
    status               TEXT NOT NULL DEFAULT 'available',
    is_available         INTEGER NOT NULL DEFAULT 1,
    unavailable_until    DATETIME,
    last_updated         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
    id                    TEXT PRIMARY KEY,
    title                 TEXT NOT NULL,
    total_units_requested INTEGER NOT NULL DEFAULT 0,
    status                TEXT NOT NULL,
    active                INTEGER NOT NULL DEFAULT 1,
    due_date              DATETIME,
    completed_at          DATETIME,
    created_at            DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
    id              TEXT PRIMARY KEY,
    request_id      TEXT NOT NULL REFERENCES requests(id),
    editor_id       TEXT NOT NULL REFERENCES editors(id),
    units_assigned  INTEGER NOT NULL DEFAULT 0,
    units_completed INTEGER NOT NULL DEFAULT 0,
    status          TEXT NOT NULL,
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL,
    UNIQUE (request_id, editor_id)
);

CREATE INDEX IF NOT EXISTS idx_assignments_editor ON assignments(editor_id);

CREATE TABLE IF NOT EXISTS workload_alerts (
    id          TEXT PRIMARY KEY,
    editor_id   TEXT NOT NULL REFERENCES editors(id),
    alert_type  TEXT NOT NULL,
    severity    TEXT NOT NULL,
    message     TEXT NOT NULL,
    request_id  TEXT NOT NULL DEFAULT '',
    resolved    INTEGER NOT NULL DEFAULT 0,
    resolved_by TEXT NOT NULL DEFAULT '',
    resolved_at DATETIME,
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_editor_unresolved ON workload_alerts(editor_id, resolved);
`

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time interface satisfaction checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*txStore)(nil)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	queries
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each pooled connection to :memory: would open its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{queries: queries{ext: db}, db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InTx runs fn against a transaction-scoped Store.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&txStore{queries{ext: tx}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStore is a Store scoped to an open transaction.
type txStore struct {
	queries
}

// InTx on a transaction-scoped store runs fn in the same transaction.
func (t *txStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

// Close is a no-op; the transaction lifecycle is owned by the root store.
func (t *txStore) Close() error { return nil }

// queries implements every Store query against either a *sql.DB or a *sql.Tx.
type queries struct {
	ext execer
}

// --- Editors ---

func (q queries) CreateEditor(ctx context.Context, e *model.Editor) error {
	_, err := q.ext.ExecContext(ctx,
		"INSERT INTO editors (id, name, active, created_at) VALUES (?, ?, ?, ?)",
		e.ID, e.Name, e.Active, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert editor: %w", err)
	}
	return nil
}

func (q queries) GetEditor(ctx context.Context, id string) (*model.Editor, error) {
	e := &model.Editor{}
	err := q.ext.QueryRowContext(ctx,
		"SELECT id, name, active, created_at FROM editors WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.Active, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get editor: %w", err)
	}
	return e, nil
}

func (q queries) ListEditors(ctx context.Context, activeOnly bool) ([]model.Editor, error) {
	query := "SELECT id, name, active, created_at FROM editors ORDER BY name"
	if activeOnly {
		query = "SELECT id, name, active, created_at FROM editors WHERE active = 1 ORDER BY name"
	}

	rows, err := q.ext.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list editors: %w", err)
	}
	defer rows.Close()

	var editors []model.Editor
	for rows.Next() {
		var e model.Editor
		if err := rows.Scan(&e.ID, &e.Name, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan editor: %w", err)
		}
		editors = append(editors, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate editors: %w", err)
	}
	return editors, nil
}

func (q queries) DeactivateEditor(ctx context.Context, id string) error {
	result, err := q.ext.ExecContext(ctx, "UPDATE editors SET active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivate editor: %w", err)
	}
	return checkAffected(result)
}

// --- Capacity ---

func (q queries) GetCapacity(ctx context.Context, editorID string) (*model.EditorCapacity, error) {
	c := &model.EditorCapacity{}
	err := q.ext.QueryRowContext(ctx,
		`SELECT editor_id, max_concurrent_units, max_hours_per_week, load_percentage,
			status, is_available, unavailable_until, last_updated
		FROM editor_capacity WHERE editor_id = ?`, editorID,
	).Scan(
		&c.EditorID, &c.MaxConcurrentUnits, &c.MaxHoursPerWeek, &c.LoadPercentage,
		&c.Status, &c.IsAvailable, &c.UnavailableUntil, &c.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get capacity: %w", err)
	}
	return c, nil
}

func (q queries) UpsertCapacity(ctx context.Context, c *model.EditorCapacity) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO editor_capacity (
			editor_id, max_concurrent_units, max_hours_per_week, load_percentage,
			status, is_available, unavailable_until, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(editor_id) DO UPDATE SET
			max_concurrent_units = excluded.max_concurrent_units,
			max_hours_per_week   = excluded.max_hours_per_week,
			load_percentage      = excluded.load_percentage,
			status               = excluded.status,
			is_available         = excluded.is_available,
			unavailable_until    = excluded.unavailable_until,
			last_updated         = excluded.last_updated`,
		c.EditorID, c.MaxConcurrentUnits, c.MaxHoursPerWeek, c.LoadPercentage,
		c.Status, c.IsAvailable, c.UnavailableUntil, c.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert capacity: %w", err)
	}
	return nil
}

func (q queries) UpdateCapacitySettings(ctx context.Context, editorID string, maxConcurrentUnits int, maxHoursPerWeek *int) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO editor_capacity (editor_id, max_concurrent_units, max_hours_per_week, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(editor_id) DO UPDATE SET
			max_concurrent_units = excluded.max_concurrent_units,
			max_hours_per_week   = excluded.max_hours_per_week,
			last_updated         = excluded.last_updated`,
		editorID, maxConcurrentUnits, maxHoursPerWeek, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update capacity settings: %w", err)
	}
	return nil
}

func (q queries) SetAvailability(ctx context.Context, editorID string, available bool, until *time.Time) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO editor_capacity (editor_id, is_available, unavailable_until, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(editor_id) DO UPDATE SET
			is_available      = excluded.is_available,
			unavailable_until = excluded.unavailable_until,
			last_updated      = excluded.last_updated`,
		editorID, available, until, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}

// --- Requests ---

func (q queries) UpsertRequest(ctx context.Context, r *model.Request) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO requests (
			id, title, total_units_requested, status, active, due_date, completed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title                 = excluded.title,
			total_units_requested = excluded.total_units_requested,
			status                = excluded.status,
			active                = excluded.active,
			due_date              = excluded.due_date,
			completed_at          = excluded.completed_at`,
		r.ID, r.Title, r.TotalUnitsRequested, r.Status, r.Active, r.DueDate, r.CompletedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert request: %w", err)
	}
	return nil
}

func (q queries) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	r := &model.Request{}
	err := q.ext.QueryRowContext(ctx,
		`SELECT id, title, total_units_requested, status, active, due_date, completed_at, created_at
		FROM requests WHERE id = ?`, id,
	).Scan(
		&r.ID, &r.Title, &r.TotalUnitsRequested, &r.Status, &r.Active,
		&r.DueDate, &r.CompletedAt, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (q queries) UpdateRequestStatus(ctx context.Context, id, status string, active bool, completedAt *time.Time) error {
	result, err := q.ext.ExecContext(ctx,
		"UPDATE requests SET status = ?, active = ?, completed_at = ? WHERE id = ?",
		status, active, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return checkAffected(result)
}

// --- Assignments ---

const assignmentColumns = `id, request_id, editor_id, units_assigned, units_completed, status, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }, a *model.Assignment) error {
	return row.Scan(
		&a.ID, &a.RequestID, &a.EditorID, &a.UnitsAssigned, &a.UnitsCompleted,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
}

func (q queries) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a := &model.Assignment{}
	row := q.ext.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE id = ?", id)
	err := scanAssignment(row, a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (q queries) GetAssignmentByPair(ctx context.Context, requestID, editorID string) (*model.Assignment, error) {
	a := &model.Assignment{}
	row := q.ext.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE request_id = ? AND editor_id = ?",
		requestID, editorID)
	err := scanAssignment(row, a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment by pair: %w", err)
	}
	return a, nil
}

func (q queries) ListAssignmentsByRequest(ctx context.Context, requestID string) ([]model.Assignment, error) {
	rows, err := q.ext.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE request_id = ? ORDER BY created_at",
		requestID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

// UpsertAssignment inserts a new assignment or, when the (request, editor)
// pair already exists, replaces its quota, progress, and status. The original
// id is preserved on conflict.
func (q queries) UpsertAssignment(ctx context.Context, a *model.Assignment) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO assignments (
			id, request_id, editor_id, units_assigned, units_completed, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id, editor_id) DO UPDATE SET
			units_assigned  = excluded.units_assigned,
			units_completed = excluded.units_completed,
			status          = excluded.status,
			created_at      = excluded.created_at,
			updated_at      = excluded.updated_at`,
		a.ID, a.RequestID, a.EditorID, a.UnitsAssigned, a.UnitsCompleted,
		a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

func (q queries) UpdateAssignmentProgress(ctx context.Context, id string, unitsCompleted int, status string) error {
	result, err := q.ext.ExecContext(ctx,
		"UPDATE assignments SET units_completed = ?, status = ?, updated_at = ? WHERE id = ?",
		unitsCompleted, status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update assignment progress: %w", err)
	}
	return checkAffected(result)
}

func (q queries) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	result, err := q.ext.ExecContext(ctx,
		"UPDATE assignments SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return checkAffected(result)
}

func (q queries) DeleteAssignment(ctx context.Context, id string) error {
	result, err := q.ext.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return checkAffected(result)
}

// SumAssignedUnits returns the total units assigned for a request, excluding
// one editor (pass "" to include everyone). Declined assignments release
// their quota back to the pool and are not counted.
func (q queries) SumAssignedUnits(ctx context.Context, requestID, excludeEditorID string) (int, error) {
	var sum int
	err := q.ext.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(units_assigned), 0) FROM assignments
		WHERE request_id = ? AND editor_id != ? AND status != ?`,
		requestID, excludeEditorID, model.AssignmentDeclined,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum assigned units: %w", err)
	}
	return sum, nil
}

func (q queries) ListEditorAssignmentFacts(ctx context.Context, editorID string) ([]model.AssignmentFact, error) {
	rows, err := q.ext.QueryContext(ctx,
		`SELECT a.status, a.units_assigned, r.status, r.active, r.total_units_requested
		FROM assignments a
		JOIN requests r ON r.id = a.request_id
		WHERE a.editor_id = ?`, editorID)
	if err != nil {
		return nil, fmt.Errorf("list assignment facts: %w", err)
	}
	defer rows.Close()

	var facts []model.AssignmentFact
	for rows.Next() {
		var f model.AssignmentFact
		if err := rows.Scan(
			&f.AssignmentStatus, &f.UnitsAssigned, &f.RequestStatus,
			&f.RequestActive, &f.TotalUnitsRequested,
		); err != nil {
			return nil, fmt.Errorf("scan assignment fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment facts: %w", err)
	}
	return facts, nil
}

func (q queries) ListEditorIDsForRequest(ctx context.Context, requestID string) ([]string, error) {
	rows, err := q.ext.QueryContext(ctx,
		"SELECT editor_id FROM assignments WHERE request_id = ?", requestID)
	if err != nil {
		return nil, fmt.Errorf("list editors for request: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan editor id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate editor ids: %w", err)
	}
	return ids, nil
}

// --- Alerts ---

func (q queries) CreateAlert(ctx context.Context, a *model.WorkloadAlert) error {
	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO workload_alerts (
			id, editor_id, alert_type, severity, message, request_id, resolved, resolved_by, resolved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EditorID, a.AlertType, a.Severity, a.Message, a.RequestID,
		a.Resolved, a.ResolvedBy, a.ResolvedAt, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (q queries) ListUnresolvedAlerts(ctx context.Context, editorID string) ([]model.WorkloadAlert, error) {
	query := `SELECT id, editor_id, alert_type, severity, message, request_id,
			resolved, resolved_by, resolved_at, created_at
		FROM workload_alerts WHERE resolved = 0`
	args := []any{}
	if editorID != "" {
		query += " AND editor_id = ?"
		args = append(args, editorID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.ext.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unresolved alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.WorkloadAlert
	for rows.Next() {
		var a model.WorkloadAlert
		if err := rows.Scan(
			&a.ID, &a.EditorID, &a.AlertType, &a.Severity, &a.Message, &a.RequestID,
			&a.Resolved, &a.ResolvedBy, &a.ResolvedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

// HasUnresolvedAlert reports whether an unresolved alert of the given type
// exists for the editor. A non-empty requestID narrows the check to alerts
// referencing that request.
func (q queries) HasUnresolvedAlert(ctx context.Context, editorID, alertType, requestID string) (bool, error) {
	query := `SELECT COUNT(*) FROM workload_alerts
		WHERE editor_id = ? AND alert_type = ? AND resolved = 0`
	args := []any{editorID, alertType}
	if requestID != "" {
		query += " AND request_id = ?"
		args = append(args, requestID)
	}

	var count int
	if err := q.ext.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check unresolved alert: %w", err)
	}
	return count > 0, nil
}

func (q queries) ResolveAlert(ctx context.Context, alertID, resolverID string) error {
	result, err := q.ext.ExecContext(ctx,
		`UPDATE workload_alerts SET resolved = 1, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND resolved = 0`,
		resolverID, time.Now().UTC(), alertID,
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := q.ext.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM workload_alerts WHERE id = ?", alertID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check alert exists: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrAlertResolved
	}
	return nil
}

// --- Aggregates ---

func (q queries) GetWorkloadSummary(ctx context.Context) ([]EditorWorkloadRow, error) {
	rows, err := q.ext.QueryContext(ctx,
		`SELECT e.id, e.name,
			COALESCE(c.load_percentage, 0),
			COALESCE(c.status, ?),
			COALESCE(SUM(CASE WHEN a.status IN (?, ?, ?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0)
		FROM editors e
		LEFT JOIN editor_capacity c ON c.editor_id = e.id
		LEFT JOIN assignments a ON a.editor_id = e.id
		WHERE e.active = 1
		GROUP BY e.id, e.name, c.load_percentage, c.status
		ORDER BY e.name`,
		model.CapacityAvailable,
		model.AssignmentPending, model.AssignmentAccepted, model.AssignmentInProgress,
		model.AssignmentCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("workload summary: %w", err)
	}
	defer rows.Close()

	var summary []EditorWorkloadRow
	for rows.Next() {
		var row EditorWorkloadRow
		if err := rows.Scan(
			&row.EditorID, &row.Name, &row.LoadPercentage, &row.Status,
			&row.ActiveAssignments, &row.CompletedAssignments,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

func (q queries) ListDeadlineCandidates(ctx context.Context, before time.Time) ([]DeadlineCandidate, error) {
	rows, err := q.ext.QueryContext(ctx,
		`SELECT a.id, a.editor_id, a.request_id, r.title, r.due_date
		FROM assignments a
		JOIN requests r ON r.id = a.request_id
		WHERE r.active = 1 AND r.due_date IS NOT NULL AND r.due_date <= ?
			AND a.status NOT IN (?, ?)`,
		before, model.AssignmentCompleted, model.AssignmentDeclined,
	)
	if err != nil {
		return nil, fmt.Errorf("list deadline candidates: %w", err)
	}
	defer rows.Close()

	var candidates []DeadlineCandidate
	for rows.Next() {
		var c DeadlineCandidate
		if err := rows.Scan(&c.AssignmentID, &c.EditorID, &c.RequestID, &c.RequestTitle, &c.DueDate); err != nil {
			return nil, fmt.Errorf("scan deadline candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deadline candidates: %w", err)
	}
	return candidates, nil
}

// checkAffected converts a zero-row update into ErrNotFound.
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
