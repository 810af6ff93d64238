package workload

import "github.com/easelhq/easel/internal/model"

// Classification thresholds for capacity status.
const (
	busyThreshold       = 50
	overloadedThreshold = 80
	atCapacityThreshold = 100
)

// Classify maps a load percentage to a capacity status bucket.
func Classify(loadPercentage float64) string {
	switch {
	case loadPercentage < busyThreshold:
		return model.CapacityAvailable
	case loadPercentage < overloadedThreshold:
		return model.CapacityBusy
	case loadPercentage < atCapacityThreshold:
		return model.CapacityOverloaded
	default:
		return model.CapacityAtCapacity
	}
}
