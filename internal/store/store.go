package store

import (
	"context"
	"errors"
	"time"

	"github.com/easelhq/easel/internal/model"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlertResolved = errors.New("alert already resolved")
)

// EditorWorkloadRow is one row of the dashboard workload summary.
type EditorWorkloadRow struct {
	EditorID             string  `json:"editor_id"`
	Name                 string  `json:"name"`
	LoadPercentage       float64 `json:"load_percentage"`
	Status               string  `json:"status"`
	ActiveAssignments    int     `json:"active_assignments"`
	CompletedAssignments int     `json:"completed_assignments"`
}

// DeadlineCandidate is an open assignment whose request due date falls inside
// the deadline-alert window.
type DeadlineCandidate struct {
	AssignmentID string
	EditorID     string
	RequestID    string
	RequestTitle string
	DueDate      time.Time
}

// Store defines the persistence operations for the workload engine.
//
// InTx runs fn against a transaction-scoped Store; the transaction commits
// when fn returns nil and rolls back otherwise. Calling InTx on an already
// transaction-scoped Store runs fn in the same transaction.
type Store interface {
	CreateEditor(ctx context.Context, e *model.Editor) error
	GetEditor(ctx context.Context, id string) (*model.Editor, error)
	ListEditors(ctx context.Context, activeOnly bool) ([]model.Editor, error)
	DeactivateEditor(ctx context.Context, id string) error

	GetCapacity(ctx context.Context, editorID string) (*model.EditorCapacity, error)
	UpsertCapacity(ctx context.Context, c *model.EditorCapacity) error
	UpdateCapacitySettings(ctx context.Context, editorID string, maxConcurrentUnits int, maxHoursPerWeek *int) error
	SetAvailability(ctx context.Context, editorID string, available bool, until *time.Time) error

	UpsertRequest(ctx context.Context, r *model.Request) error
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	UpdateRequestStatus(ctx context.Context, id, status string, active bool, completedAt *time.Time) error

	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	GetAssignmentByPair(ctx context.Context, requestID, editorID string) (*model.Assignment, error)
	ListAssignmentsByRequest(ctx context.Context, requestID string) ([]model.Assignment, error)
	UpsertAssignment(ctx context.Context, a *model.Assignment) error
	UpdateAssignmentProgress(ctx context.Context, id string, unitsCompleted int, status string) error
	UpdateAssignmentStatus(ctx context.Context, id, status string) error
	DeleteAssignment(ctx context.Context, id string) error
	SumAssignedUnits(ctx context.Context, requestID, excludeEditorID string) (int, error)
	ListEditorAssignmentFacts(ctx context.Context, editorID string) ([]model.AssignmentFact, error)
	ListEditorIDsForRequest(ctx context.Context, requestID string) ([]string, error)

	CreateAlert(ctx context.Context, a *model.WorkloadAlert) error
	ListUnresolvedAlerts(ctx context.Context, editorID string) ([]model.WorkloadAlert, error)
	HasUnresolvedAlert(ctx context.Context, editorID, alertType, requestID string) (bool, error)
	ResolveAlert(ctx context.Context, alertID, resolverID string) error

	GetWorkloadSummary(ctx context.Context) ([]EditorWorkloadRow, error)
	ListDeadlineCandidates(ctx context.Context, before time.Time) ([]DeadlineCandidate, error)

	InTx(ctx context.Context, fn func(Store) error) error
	Close() error
}
