package core

// Status is the terminal condition that produced a request's answer.
type Status string

const (
	// StatusDone means the router selected Finish.
	StatusDone Status = "DONE"
	// StatusBudgetExceeded means the step budget stopped the loop; the answer
	// may be incomplete.
	StatusBudgetExceeded Status = "BUDGET_EXCEEDED"
	// StatusCancelled means the request was cancelled externally.
	StatusCancelled Status = "CANCELLED"
	// StatusFailed marks a hard failure (e.g. an invalid routing decision).
	StatusFailed Status = "FAILED"
)

// Complete reports whether the status is a confirmed completion.
func (s Status) Complete() bool { return s == StatusDone }
