package workload_test

import (
	"errors"
	"testing"

	"github.com/easelhq/easel/internal/workload"
)

func TestValidateDistributionWithinTotal(t *testing.T) {
	// 6 already assigned elsewhere, 4 proposed, 10 requested: exactly full.
	if err := workload.ValidateDistribution("r1", 10, 6, 4); err != nil {
		t.Errorf("ValidateDistribution(10, 6, 4) = %v, want nil", err)
	}
}

func TestValidateDistributionExceeded(t *testing.T) {
	// 6 already assigned, 5 proposed, 10 requested: 11 > 10.
	err := workload.ValidateDistribution("r1", 10, 6, 5)

	var distErr *workload.DistributionExceededError
	if !errors.As(err, &distErr) {
		t.Fatalf("ValidateDistribution(10, 6, 5) = %v, want DistributionExceededError", err)
	}
	if distErr.Proposed != 11 {
		t.Errorf("Proposed = %d, want 11", distErr.Proposed)
	}
	if distErr.TotalRequested != 10 {
		t.Errorf("TotalRequested = %d, want 10", distErr.TotalRequested)
	}
	if distErr.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", distErr.Remaining)
	}
}

func TestValidateDistributionUnboundedAlwaysPasses(t *testing.T) {
	if err := workload.ValidateDistribution("r1", 0, 1000, 1000); err != nil {
		t.Errorf("ValidateDistribution on unbounded request = %v, want nil", err)
	}
}

func TestRemainingUnits(t *testing.T) {
	tests := []struct {
		total, assigned int
		wantRemaining   int
		wantBounded     bool
	}{
		{10, 6, 4, true},
		{10, 10, 0, true},
		{10, 12, 0, true}, // over-assignment clamps to zero
		{0, 5, 0, false},  // unbounded
	}

	for _, tt := range tests {
		remaining, bounded := workload.RemainingUnits(tt.total, tt.assigned)
		if remaining != tt.wantRemaining || bounded != tt.wantBounded {
			t.Errorf("RemainingUnits(%d, %d) = (%d, %v), want (%d, %v)",
				tt.total, tt.assigned, remaining, bounded, tt.wantRemaining, tt.wantBounded)
		}
	}
}
