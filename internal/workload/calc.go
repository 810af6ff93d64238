package workload

import (
	"math"

	"github.com/easelhq/easel/internal/model"
)

// statusWeights maps a request lifecycle status to how much of an assigned
// unit still occupies the editor. Closed statuses carry no weight.
var statusWeights = map[string]float64{
	model.RequestOpen:       1.0,
	model.RequestInProgress: 0.8,
	model.RequestDelivered:  0.3,
}

// StatusWeight returns the load weight for a request status. Unknown and
// closed statuses weigh zero.
func StatusWeight(status string) float64 {
	return statusWeights[status]
}

// ComputeLoad derives an editor's load percentage from ledger facts and the
// editor's concurrent-unit capacity. The result is in [0, 100], rounded to
// two decimals. The function is pure: calling it twice over the same facts
// yields the identical value.
//
// Each assignment on an active, non-closed request contributes
// StatusWeight(request) × creative share, where the share is
// units_assigned / total_units_requested, or a full unit when the request has
// no explicit total. Declined assignments contribute nothing.
//
// A capacity of zero units means any outstanding work saturates the editor:
// the load is 100 when weighted work exists and 0 otherwise.
func ComputeLoad(facts []model.AssignmentFact, maxConcurrentUnits int) float64 {
	var weighted float64
	for _, f := range facts {
		if !f.RequestActive || model.ClosedRequest(f.RequestStatus) {
			continue
		}
		if f.AssignmentStatus == model.AssignmentDeclined {
			continue
		}

		share := 1.0
		if f.TotalUnitsRequested > 0 {
			share = float64(f.UnitsAssigned) / float64(f.TotalUnitsRequested)
		}
		weighted += StatusWeight(f.RequestStatus) * share
	}

	if maxConcurrentUnits <= 0 {
		if weighted > 0 {
			return 100
		}
		return 0
	}

	load := weighted / float64(maxConcurrentUnits) * 100
	if load >= 100 {
		return 100
	}
	return math.Round(load*100) / 100
}
