package model

import "time"

// Assignment status constants.
const (
	AssignmentPending    = "pending"
	AssignmentAccepted   = "accepted"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentDeclined   = "declined"
)

// Capacity status constants, derived from load percentage.
const (
	CapacityAvailable  = "available"
	CapacityBusy       = "busy"
	CapacityOverloaded = "overloaded"
	CapacityAtCapacity = "at_capacity"
)

// Request status constants. Requests are owned by an external collaborator;
// easel only consumes these as facts.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestDelivered  = "delivered"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// Alert type constants.
const (
	AlertOverload            = "overload"
	AlertDeadlineApproaching = "deadline_approaching"
)

// Alert severity constants.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// DefaultMaxConcurrentUnits is the capacity assumed for editors without an
// explicit setting.
const DefaultMaxConcurrentUnits = 10

// validTransitions maps each assignment status to the set of statuses it may
// transition to. completed and declined are terminal.
var validTransitions = map[string]map[string]bool{
	AssignmentPending: {
		AssignmentAccepted: true,
		AssignmentDeclined: true,
	},
	AssignmentAccepted: {
		AssignmentInProgress: true,
		AssignmentDeclined:   true,
	},
	AssignmentInProgress: {
		AssignmentCompleted: true,
	},
}

// ValidTransition reports whether transitioning an assignment from one status
// to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// TerminalAssignment reports whether an assignment status is terminal.
// Reassigning over a terminal assignment supersedes it with a fresh cycle.
func TerminalAssignment(status string) bool {
	return status == AssignmentCompleted || status == AssignmentDeclined
}

// ClosedRequest reports whether a request status is terminal. Assignments on a
// closed request carry no weight in the load computation.
func ClosedRequest(status string) bool {
	return status == RequestCompleted || status == RequestCancelled
}

// Editor is a creative team member who can receive a bounded quota of work.
// Editors are created and deactivated by an external user-management collaborator.
type Editor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EditorCapacity holds per-editor capacity settings and the cached derived
// load. LoadPercentage and Status are a materialized cache of a pure function
// over the assignment ledger; they are written only by recomputation, never
// set independently.
type EditorCapacity struct {
	EditorID           string     `json:"editor_id"`
	MaxConcurrentUnits int        `json:"max_concurrent_units"`
	MaxHoursPerWeek    *int       `json:"max_hours_per_week,omitempty"`
	LoadPercentage     float64    `json:"load_percentage"`
	Status             string     `json:"status"`
	IsAvailable        bool       `json:"is_available"`
	UnavailableUntil   *time.Time `json:"unavailable_until,omitempty"`
	LastUpdated        time.Time  `json:"last_updated"`
}

// Request is the read-only view of a file request owned by an external
// collaborator. TotalUnitsRequested of 0 means the request is unbounded.
type Request struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	TotalUnitsRequested int        `json:"total_units_requested"`
	Status              string     `json:"status"`
	Active              bool       `json:"active"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Assignment binds an editor to a request with a unit quota and progress
// state. The (RequestID, EditorID) pair is unique.
type Assignment struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	EditorID       string    `json:"editor_id"`
	UnitsAssigned  int       `json:"units_assigned"`
	UnitsCompleted int       `json:"units_completed"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AssignmentFact is the slice of ledger state the load calculator consumes:
// one row per assignment joined with its request.
type AssignmentFact struct {
	AssignmentStatus    string
	UnitsAssigned       int
	RequestStatus       string
	RequestActive       bool
	TotalUnitsRequested int
}

// WorkloadAlert records a threshold crossing for an editor. Alerts are
// append-only and never auto-resolve; resolution is an explicit reviewer
// action recorded with who and when.
type WorkloadAlert struct {
	ID         string     `json:"id"`
	EditorID   string     `json:"editor_id"`
	AlertType  string     `json:"alert_type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	RequestID  string     `json:"request_id,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
