package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/easelhq/easel/internal/model"
	"github.com/easelhq/easel/internal/store"
)

// evaluateOverload creates an overload alert when a recompute lands an editor
// in overloaded or at_capacity and no unresolved overload alert exists yet.
// Runs inside the recompute transaction so the alert commits with the load.
func (e *Engine) evaluateOverload(ctx context.Context, tx store.Store, c *model.EditorCapacity) error {
	if c.Status != model.CapacityOverloaded && c.Status != model.CapacityAtCapacity {
		return nil
	}

	exists, err := tx.HasUnresolvedAlert(ctx, c.EditorID, model.AlertOverload, "")
	if err != nil {
		return fmt.Errorf("check overload alert: %w", err)
	}
	if exists {
		return nil
	}

	severity := model.SeverityMedium
	if c.Status == model.CapacityAtCapacity {
		severity = model.SeverityHigh
	}

	alert := &model.WorkloadAlert{
		ID:        model.NewID(),
		EditorID:  c.EditorID,
		AlertType: model.AlertOverload,
		Severity:  severity,
		Message:   fmt.Sprintf("editor at %.2f%% load (%s)", c.LoadPercentage, c.Status),
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("create overload alert: %w", err)
	}

	alertsCreated.WithLabelValues(model.AlertOverload, severity).Inc()
	e.logger.Warn("overload alert created",
		"editor_id", c.EditorID,
		"load_percentage", c.LoadPercentage,
		"status", c.Status,
		"severity", severity,
	)
	return nil
}

// EvaluateDeadlines scans open assignments whose request due date falls
// within the engine's deadline window and raises a deadline_approaching alert
// per (editor, request), deduplicated against unresolved alerts. Returns the
// number of alerts created. Independent of the load formula; callers poll it
// or hook it to upload events.
func (e *Engine) EvaluateDeadlines(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(e.deadlineWindow)
	candidates, err := e.store.ListDeadlineCandidates(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list deadline candidates: %w", err)
	}

	created := 0
	for _, c := range candidates {
		err := e.store.InTx(ctx, func(tx store.Store) error {
			exists, err := tx.HasUnresolvedAlert(ctx, c.EditorID, model.AlertDeadlineApproaching, c.RequestID)
			if err != nil {
				return fmt.Errorf("check deadline alert: %w", err)
			}
			if exists {
				return nil
			}

			alert := &model.WorkloadAlert{
				ID:        model.NewID(),
				EditorID:  c.EditorID,
				AlertType: model.AlertDeadlineApproaching,
				Severity:  model.SeverityMedium,
				Message:   fmt.Sprintf("request %q is due %s", c.RequestTitle, c.DueDate.Format(time.RFC3339)),
				RequestID: c.RequestID,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.CreateAlert(ctx, alert); err != nil {
				return fmt.Errorf("create deadline alert: %w", err)
			}

			alertsCreated.WithLabelValues(model.AlertDeadlineApproaching, model.SeverityMedium).Inc()
			created++
			return nil
		})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// ListUnresolvedAlerts returns unresolved alerts, optionally filtered to one
// editor (empty editorID means all).
func (e *Engine) ListUnresolvedAlerts(ctx context.Context, editorID string) ([]model.WorkloadAlert, error) {
	return e.store.ListUnresolvedAlerts(ctx, editorID)
}

// ResolveAlert closes an alert, recording who resolved it.
func (e *Engine) ResolveAlert(ctx context.Context, alertID, resolverID string) error {
	if resolverID == "" {
		return validationErrorf("resolver_id is required")
	}
	return e.store.ResolveAlert(ctx, alertID, resolverID)
}
