package workload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easelhq/easel/internal/model"
	"github.com/easelhq/easel/internal/store"
)

// DefaultDeadlineWindow is how far ahead EvaluateDeadlines looks when no
// window is configured.
const DefaultDeadlineWindow = 48 * time.Hour

// Engine is the recalculation orchestrator: it owns every ledger mutation,
// recomputes the affected editors' capacity inside the same transaction, and
// evaluates alerting on the result.
type Engine struct {
	store          store.Store
	logger         *slog.Logger
	broker         *CapacityBroker
	deadlineWindow time.Duration

	// locks serializes validate-then-write per request so two concurrent
	// assignments cannot both pass distribution validation and jointly
	// exceed the requested total.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEngine creates a new workload engine.
func NewEngine(s store.Store, logger *slog.Logger, deadlineWindow time.Duration) *Engine {
	if deadlineWindow <= 0 {
		deadlineWindow = DefaultDeadlineWindow
	}
	return &Engine{
		store:          s,
		logger:         logger,
		broker:         NewCapacityBroker(),
		deadlineWindow: deadlineWindow,
		locks:          make(map[string]*sync.Mutex),
	}
}

// Broker returns the engine's capacity broker for watch subscriptions.
func (e *Engine) Broker() *CapacityBroker {
	return e.broker
}

// requestLock returns the mutex serializing mutations for one request.
func (e *Engine) requestLock(requestID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[requestID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[requestID] = mu
	}
	return mu
}

// RecalcDelta is one editor's before/after load from an admin recalculation.
type RecalcDelta struct {
	EditorID string  `json:"editor_id"`
	OldLoad  float64 `json:"old_load"`
	NewLoad  float64 `json:"new_load"`
	Status   string  `json:"status"`
}

// Assign creates or rebalances the assignment of an editor to a request.
// The distribution invariant is validated against the proposed total (the
// current ledger sum with this editor's old quota replaced by units) before
// anything is written; validation, the ledger write, and the recompute commit
// together or not at all.
func (e *Engine) Assign(ctx context.Context, requestID, editorID string, units int) (*model.Assignment, error) {
	if units < 0 {
		return nil, validationErrorf("units_assigned must not be negative, got %d", units)
	}

	mu := e.requestLock(requestID)
	mu.Lock()
	defer mu.Unlock()

	var (
		assignment *model.Assignment
		update     *CapacityUpdate
	)
	err := e.store.InTx(ctx, func(tx store.Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get request %s: %w", requestID, err)
		}
		if _, err := tx.GetEditor(ctx, editorID); err != nil {
			return fmt.Errorf("get editor %s: %w", editorID, err)
		}

		sumOthers, err := tx.SumAssignedUnits(ctx, requestID, editorID)
		if err != nil {
			return err
		}
		if err := ValidateDistribution(requestID, req.TotalUnitsRequested, sumOthers, units); err != nil {
			distributionRejections.Inc()
			return err
		}

		now := time.Now().UTC()
		existing, err := tx.GetAssignmentByPair(ctx, requestID, editorID)
		switch {
		case err == nil:
			if model.TerminalAssignment(existing.Status) {
				// Reassignment over a declined or completed row supersedes
				// it: progress resets and a fresh cycle starts.
				existing.Status = model.AssignmentPending
				existing.UnitsCompleted = 0
				existing.CreatedAt = now
			} else if units < existing.UnitsCompleted {
				return validationErrorf("units_assigned %d is below units_completed %d", units, existing.UnitsCompleted)
			}
			existing.UnitsAssigned = units
			existing.UpdatedAt = now
			assignment = existing
		case errors.Is(err, store.ErrNotFound):
			assignment = &model.Assignment{
				ID:            model.NewID(),
				RequestID:     requestID,
				EditorID:      editorID,
				UnitsAssigned: units,
				Status:        model.AssignmentPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		default:
			return err
		}

		if err := tx.UpsertAssignment(ctx, assignment); err != nil {
			return err
		}

		update, err = e.recompute(ctx, tx, editorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.broker.Publish(*update)
	return assignment, nil
}

// RecordCompletion updates an assignment's completed-unit count. Progress
// implies status: the first completed unit moves a pending or accepted
// assignment to in_progress, and completing the full quota marks it
// completed.
func (e *Engine) RecordCompletion(ctx context.Context, assignmentID string, unitsCompleted int) (*model.Assignment, error) {
	if unitsCompleted < 0 {
		return nil, validationErrorf("units_completed must not be negative, got %d", unitsCompleted)
	}

	var (
		assignment *model.Assignment
		update     *CapacityUpdate
	)
	err := e.store.InTx(ctx, func(tx store.Store) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("get assignment %s: %w", assignmentID, err)
		}
		if unitsCompleted > a.UnitsAssigned {
			return validationErrorf("units_completed %d exceeds units_assigned %d", unitsCompleted, a.UnitsAssigned)
		}

		status := a.Status
		if unitsCompleted > 0 && (status == model.AssignmentPending || status == model.AssignmentAccepted) {
			status = model.AssignmentInProgress
		}
		if a.UnitsAssigned > 0 && unitsCompleted == a.UnitsAssigned {
			status = model.AssignmentCompleted
		}

		if err := tx.UpdateAssignmentProgress(ctx, assignmentID, unitsCompleted, status); err != nil {
			return err
		}
		a.UnitsCompleted = unitsCompleted
		a.Status = status
		assignment = a

		update, err = e.recompute(ctx, tx, a.EditorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.broker.Publish(*update)
	return assignment, nil
}

// UpdateAssignmentStatus applies an explicit status transition, checked
// against the assignment state machine. Declining an assignment releases its
// quota, so the editor is recomputed in the same transaction.
func (e *Engine) UpdateAssignmentStatus(ctx context.Context, assignmentID, newStatus string) (*model.Assignment, error) {
	var (
		assignment *model.Assignment
		update     *CapacityUpdate
	)
	err := e.store.InTx(ctx, func(tx store.Store) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("get assignment %s: %w", assignmentID, err)
		}
		if !model.ValidTransition(a.Status, newStatus) {
			return validationErrorf("invalid assignment transition %s -> %s", a.Status, newStatus)
		}

		if err := tx.UpdateAssignmentStatus(ctx, assignmentID, newStatus); err != nil {
			return err
		}
		a.Status = newStatus
		assignment = a

		update, err = e.recompute(ctx, tx, a.EditorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.broker.Publish(*update)
	return assignment, nil
}

// RemoveAssignment deletes an assignment (reassignment supersedes it) and
// recomputes the released editor.
func (e *Engine) RemoveAssignment(ctx context.Context, assignmentID string) error {
	a, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("get assignment %s: %w", assignmentID, err)
	}

	mu := e.requestLock(a.RequestID)
	mu.Lock()
	defer mu.Unlock()

	var update *CapacityUpdate
	err = e.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.DeleteAssignment(ctx, assignmentID); err != nil {
			return err
		}
		update, err = e.recompute(ctx, tx, a.EditorID)
		return err
	})
	if err != nil {
		return err
	}

	e.broker.Publish(*update)
	return nil
}

// HandleUploadRecorded reacts to an upload landing on a request by
// recomputing every editor assigned to it, each in its own transaction.
func (e *Engine) HandleUploadRecorded(ctx context.Context, requestID string) error {
	editorIDs, err := e.store.ListEditorIDsForRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("resolve editors for request %s: %w", requestID, err)
	}
	return e.recomputeEditors(ctx, editorIDs)
}

// HandleRequestStatusChanged applies a request lifecycle change and
// recomputes every assigned editor in the same transaction, so the status
// write and the derived loads commit together.
func (e *Engine) HandleRequestStatusChanged(ctx context.Context, requestID, newStatus string) error {
	var updates []CapacityUpdate
	err := e.store.InTx(ctx, func(tx store.Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get request %s: %w", requestID, err)
		}

		active := !model.ClosedRequest(newStatus)
		completedAt := req.CompletedAt
		if newStatus == model.RequestCompleted && completedAt == nil {
			now := time.Now().UTC()
			completedAt = &now
		}
		if err := tx.UpdateRequestStatus(ctx, requestID, newStatus, active, completedAt); err != nil {
			return err
		}

		editorIDs, err := tx.ListEditorIDsForRequest(ctx, requestID)
		if err != nil {
			return err
		}
		for _, id := range editorIDs {
			update, err := e.recompute(ctx, tx, id)
			if err != nil {
				return err
			}
			updates = append(updates, *update)
		}

		e.logger.Info("request status changed",
			"request_id", requestID,
			"old_status", req.Status,
			"new_status", newStatus,
			"editors_recomputed", len(editorIDs),
		)
		return nil
	})
	if err != nil {
		return err
	}

	for _, u := range updates {
		e.broker.Publish(u)
	}
	return nil
}

// Recalculate re-derives one editor's capacity in its own transaction and
// returns the before/after delta.
func (e *Engine) Recalculate(ctx context.Context, editorID string) (*RecalcDelta, error) {
	var (
		delta  *RecalcDelta
		update *CapacityUpdate
	)
	err := e.store.InTx(ctx, func(tx store.Store) error {
		var oldLoad float64
		if c, err := tx.GetCapacity(ctx, editorID); err == nil {
			oldLoad = c.LoadPercentage
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		var err error
		update, err = e.recompute(ctx, tx, editorID)
		if err != nil {
			return err
		}
		delta = &RecalcDelta{
			EditorID: editorID,
			OldLoad:  oldLoad,
			NewLoad:  update.LoadPercentage,
			Status:   update.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.broker.Publish(*update)
	return delta, nil
}

// RecalculateAll reruns the recomputation for every active editor and
// returns the deltas for audit. Each editor is an independent transaction,
// so the batch interleaves safely with live traffic.
func (e *Engine) RecalculateAll(ctx context.Context) ([]RecalcDelta, error) {
	editors, err := e.store.ListEditors(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list editors: %w", err)
	}

	deltas := make([]RecalcDelta, 0, len(editors))
	for _, ed := range editors {
		delta, err := e.Recalculate(ctx, ed.ID)
		if err != nil {
			return deltas, fmt.Errorf("recalculate editor %s: %w", ed.ID, err)
		}
		deltas = append(deltas, *delta)
	}
	return deltas, nil
}

// GetEditorLoad returns the editor's cached capacity. A missing capacity row
// self-heals: the editor is recomputed with defaults and the fresh row
// returned.
func (e *Engine) GetEditorLoad(ctx context.Context, editorID string) (*model.EditorCapacity, error) {
	if _, err := e.store.GetEditor(ctx, editorID); err != nil {
		return nil, fmt.Errorf("get editor %s: %w", editorID, err)
	}

	c, err := e.store.GetCapacity(ctx, editorID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if _, err := e.Recalculate(ctx, editorID); err != nil {
		return nil, err
	}
	return e.store.GetCapacity(ctx, editorID)
}

// GetWorkloadSummary returns the read-only per-editor aggregate for
// dashboards.
func (e *Engine) GetWorkloadSummary(ctx context.Context) ([]store.EditorWorkloadRow, error) {
	return e.store.GetWorkloadSummary(ctx)
}

// SetCapacitySettings updates an editor's capacity settings and recomputes
// the load against the new limit in the same transaction.
func (e *Engine) SetCapacitySettings(ctx context.Context, editorID string, maxConcurrentUnits int, maxHoursPerWeek *int) (*model.EditorCapacity, error) {
	if maxConcurrentUnits < 0 {
		return nil, validationErrorf("max_concurrent_units must not be negative, got %d", maxConcurrentUnits)
	}
	if _, err := e.store.GetEditor(ctx, editorID); err != nil {
		return nil, fmt.Errorf("get editor %s: %w", editorID, err)
	}

	var update *CapacityUpdate
	err := e.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateCapacitySettings(ctx, editorID, maxConcurrentUnits, maxHoursPerWeek); err != nil {
			return err
		}
		var err error
		update, err = e.recompute(ctx, tx, editorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.broker.Publish(*update)
	return e.store.GetCapacity(ctx, editorID)
}

// SetAvailability records an availability override. This is a routing hint
// consumed at the assignment-intake boundary; it does not feed the load
// formula, so no recompute is triggered.
func (e *Engine) SetAvailability(ctx context.Context, editorID string, available bool, until *time.Time) (*model.EditorCapacity, error) {
	if _, err := e.store.GetEditor(ctx, editorID); err != nil {
		return nil, fmt.Errorf("get editor %s: %w", editorID, err)
	}
	if err := e.store.SetAvailability(ctx, editorID, available, until); err != nil {
		return nil, err
	}
	return e.store.GetCapacity(ctx, editorID)
}

// recomputeEditors recomputes each editor in its own transaction. Per-editor
// recompute is a pure re-derivation, so interleavings converge.
func (e *Engine) recomputeEditors(ctx context.Context, editorIDs []string) error {
	for _, id := range editorIDs {
		var update *CapacityUpdate
		err := e.store.InTx(ctx, func(tx store.Store) error {
			var err error
			update, err = e.recompute(ctx, tx, id)
			return err
		})
		if err != nil {
			return fmt.Errorf("recompute editor %s: %w", id, err)
		}
		e.broker.Publish(*update)
	}
	return nil
}

// recompute re-derives one editor's load and status from the ledger and
// writes the capacity row, creating it with defaults if absent. Alerting is
// evaluated on the result. Must run inside the transaction of the triggering
// mutation; any error rolls the whole transaction back.
func (e *Engine) recompute(ctx context.Context, tx store.Store, editorID string) (*CapacityUpdate, error) {
	start := time.Now()

	c, err := tx.GetCapacity(ctx, editorID)
	if errors.Is(err, store.ErrNotFound) {
		c = &model.EditorCapacity{
			EditorID:           editorID,
			MaxConcurrentUnits: model.DefaultMaxConcurrentUnits,
			Status:             model.CapacityAvailable,
			IsAvailable:        true,
		}
	} else if err != nil {
		return nil, fmt.Errorf("get capacity for %s: %w", editorID, err)
	}

	facts, err := tx.ListEditorAssignmentFacts(ctx, editorID)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", editorID, err)
	}

	c.LoadPercentage = ComputeLoad(facts, c.MaxConcurrentUnits)
	c.Status = Classify(c.LoadPercentage)
	c.LastUpdated = time.Now().UTC()

	if err := tx.UpsertCapacity(ctx, c); err != nil {
		return nil, fmt.Errorf("write capacity for %s: %w", editorID, err)
	}
	if err := e.evaluateOverload(ctx, tx, c); err != nil {
		return nil, err
	}

	recomputesTotal.Inc()
	recomputeDuration.Observe(time.Since(start).Seconds())

	return &CapacityUpdate{
		EditorID:       editorID,
		LoadPercentage: c.LoadPercentage,
		Status:         c.Status,
		LastUpdated:    c.LastUpdated,
	}, nil
}
