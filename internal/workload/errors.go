package workload

import "fmt"

// DistributionExceededError is returned when a proposed assignment would push
// the total units assigned for a request past its requested total. Remaining
// reports how many units are still assignable, for caller-facing messages.
type DistributionExceededError struct {
	RequestID      string
	TotalRequested int
	Proposed       int
	Remaining      int
}

func (e *DistributionExceededError) Error() string {
	return fmt.Sprintf("request %s: proposed total of %d units exceeds the %d requested (%d remaining)",
		e.RequestID, e.Proposed, e.TotalRequested, e.Remaining)
}

// ValidationError is returned for malformed mutations: negative quantities,
// completion counts above the assigned quota, or illegal status transitions.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
