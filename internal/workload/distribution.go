package workload

// ValidateDistribution checks whether assigning candidate units to one editor
// keeps the request within its requested total, given the sum assigned to all
// other editors. Requests with no explicit total (zero) are unbounded and
// always pass. Returns a *DistributionExceededError on violation.
func ValidateDistribution(requestID string, totalRequested, sumOthers, candidate int) error {
	if totalRequested <= 0 {
		return nil
	}

	proposed := sumOthers + candidate
	if proposed > totalRequested {
		remaining, _ := RemainingUnits(totalRequested, sumOthers)
		return &DistributionExceededError{
			RequestID:      requestID,
			TotalRequested: totalRequested,
			Proposed:       proposed,
			Remaining:      remaining,
		}
	}
	return nil
}

// RemainingUnits reports how many units are still assignable on a request.
// bounded is false when the request has no explicit total, in which case
// remaining is meaningless.
func RemainingUnits(totalRequested, sumAssigned int) (remaining int, bounded bool) {
	if totalRequested <= 0 {
		return 0, false
	}
	remaining = totalRequested - sumAssigned
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
