package workload_test

import (
	"testing"

	"github.com/easelhq/easel/internal/model"
	"github.com/easelhq/easel/internal/workload"
)

func activeFact(requestStatus string, unitsAssigned, totalRequested int) model.AssignmentFact {
	return model.AssignmentFact{
		AssignmentStatus:    model.AssignmentInProgress,
		UnitsAssigned:       unitsAssigned,
		RequestStatus:       requestStatus,
		RequestActive:       true,
		TotalUnitsRequested: totalRequested,
	}
}

func TestStatusWeights(t *testing.T) {
	tests := []struct {
		status string
		want   float64
	}{
		{model.RequestOpen, 1.0},
		{model.RequestInProgress, 0.8},
		{model.RequestDelivered, 0.3},
		{model.RequestCompleted, 0.0},
		{model.RequestCancelled, 0.0},
		{"unknown", 0.0},
	}
	for _, tt := range tests {
		if got := workload.StatusWeight(tt.status); got != tt.want {
			t.Errorf("StatusWeight(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestComputeLoadSingleFullAssignment(t *testing.T) {
	// One open assignment at full creative share against a capacity of 10.
	facts := []model.AssignmentFact{activeFact(model.RequestOpen, 5, 5)}

	got := workload.ComputeLoad(facts, 10)
	if got != 10.0 {
		t.Errorf("ComputeLoad = %v, want 10.0", got)
	}
}

func TestComputeLoadSaturation(t *testing.T) {
	// Five full-weight assignments against a capacity of five.
	var facts []model.AssignmentFact
	for i := 0; i < 5; i++ {
		facts = append(facts, activeFact(model.RequestOpen, 3, 3))
	}

	got := workload.ComputeLoad(facts, 5)
	if got != 100.0 {
		t.Errorf("ComputeLoad = %v, want 100.0", got)
	}
}

func TestComputeLoadCapsAtHundred(t *testing.T) {
	var facts []model.AssignmentFact
	for i := 0; i < 8; i++ {
		facts = append(facts, activeFact(model.RequestOpen, 1, 1))
	}

	got := workload.ComputeLoad(facts, 5)
	if got != 100.0 {
		t.Errorf("ComputeLoad = %v, want capped 100.0", got)
	}
}

func TestComputeLoadStatusDecay(t *testing.T) {
	// The same assignment weighs less as its request moves through delivery.
	inProgress := workload.ComputeLoad([]model.AssignmentFact{activeFact(model.RequestInProgress, 4, 4)}, 10)
	delivered := workload.ComputeLoad([]model.AssignmentFact{activeFact(model.RequestDelivered, 4, 4)}, 10)

	if inProgress != 8.0 {
		t.Errorf("in_progress load = %v, want 8.0", inProgress)
	}
	if delivered != 3.0 {
		t.Errorf("delivered load = %v, want 3.0", delivered)
	}
	if delivered >= inProgress {
		t.Errorf("delivered load %v should be below in_progress load %v", delivered, inProgress)
	}
}

func TestComputeLoadCreativeShare(t *testing.T) {
	// 3 of 10 units on an open request: weight 1.0 × share 0.3 over capacity 10.
	facts := []model.AssignmentFact{activeFact(model.RequestOpen, 3, 10)}

	got := workload.ComputeLoad(facts, 10)
	if got != 3.0 {
		t.Errorf("ComputeLoad = %v, want 3.0", got)
	}
}

func TestComputeLoadUnboundedRequestFullShare(t *testing.T) {
	// A request without an explicit total counts as one full unit.
	facts := []model.AssignmentFact{activeFact(model.RequestOpen, 7, 0)}

	got := workload.ComputeLoad(facts, 10)
	if got != 10.0 {
		t.Errorf("ComputeLoad = %v, want 10.0", got)
	}
}

func TestComputeLoadSkipsClosedAndInactiveRequests(t *testing.T) {
	facts := []model.AssignmentFact{
		activeFact(model.RequestCompleted, 5, 5),
		{
			AssignmentStatus:    model.AssignmentInProgress,
			UnitsAssigned:       5,
			RequestStatus:       model.RequestOpen,
			RequestActive:       false,
			TotalUnitsRequested: 5,
		},
	}

	if got := workload.ComputeLoad(facts, 10); got != 0.0 {
		t.Errorf("ComputeLoad = %v, want 0.0", got)
	}
}

func TestComputeLoadSkipsDeclinedAssignments(t *testing.T) {
	f := activeFact(model.RequestOpen, 5, 5)
	f.AssignmentStatus = model.AssignmentDeclined

	if got := workload.ComputeLoad([]model.AssignmentFact{f}, 10); got != 0.0 {
		t.Errorf("ComputeLoad = %v, want 0.0", got)
	}
}

func TestComputeLoadRounding(t *testing.T) {
	// 1/3 share of an open request over capacity 10 → 3.3333…% → 3.33.
	facts := []model.AssignmentFact{activeFact(model.RequestOpen, 1, 3)}

	got := workload.ComputeLoad(facts, 10)
	if got != 3.33 {
		t.Errorf("ComputeLoad = %v, want 3.33", got)
	}
}

func TestComputeLoadZeroCapacity(t *testing.T) {
	// Zero capacity: any outstanding work saturates, no work means idle.
	busy := workload.ComputeLoad([]model.AssignmentFact{activeFact(model.RequestOpen, 1, 1)}, 0)
	if busy != 100.0 {
		t.Errorf("ComputeLoad with work = %v, want 100.0", busy)
	}

	idle := workload.ComputeLoad(nil, 0)
	if idle != 0.0 {
		t.Errorf("ComputeLoad without work = %v, want 0.0", idle)
	}
}

func TestComputeLoadIdempotent(t *testing.T) {
	facts := []model.AssignmentFact{
		activeFact(model.RequestOpen, 2, 5),
		activeFact(model.RequestInProgress, 3, 7),
		activeFact(model.RequestDelivered, 1, 3),
	}

	first := workload.ComputeLoad(facts, 10)
	second := workload.ComputeLoad(facts, 10)
	if first != second {
		t.Errorf("ComputeLoad not idempotent: %v != %v", first, second)
	}
}

func TestComputeLoadMonotonicInUnits(t *testing.T) {
	// Increasing one assignment's quota never decreases the load.
	prev := -1.0
	for units := 0; units <= 10; units++ {
		facts := []model.AssignmentFact{activeFact(model.RequestOpen, units, 10)}
		load := workload.ComputeLoad(facts, 10)
		if load < prev {
			t.Fatalf("load decreased from %v to %v at units=%d", prev, load, units)
		}
		prev = load
	}
}
