package core

import (
	"errors"
	"fmt"
)

// Sentinel conditions. Typed errors below match them through errors.Is.
var (
	// ErrRoutingDecisionInvalid means the router produced a value outside the
	// closed enumeration. Fatal for the request; never retried.
	ErrRoutingDecisionInvalid = errors.New("routing decision invalid")
	// ErrWorkerExhausted means a worker hit its iteration cap without a final answer.
	ErrWorkerExhausted = errors.New("worker exhausted")
	// ErrBudgetExceeded means the request hit the global step budget.
	ErrBudgetExceeded = errors.New("step budget exceeded")
	// ErrActionExecutionFailed means a single tool call failed against its collaborator.
	ErrActionExecutionFailed = errors.New("action execution failed")
	// ErrCancelled means the request was cancelled at a suspension point.
	ErrCancelled = errors.New("request cancelled")
)

// RoutingDecisionInvalidError carries the offending router output.
type RoutingDecisionInvalidError struct {
	Value   string   // raw value or arguments produced by the model
	Allowed []string // the closed enumeration
	Reason  string
}

func (e *RoutingDecisionInvalidError) Error() string {
	return fmt.Sprintf("routing decision invalid: %s (got %q, allowed %v)", e.Reason, e.Value, e.Allowed)
}

// Is matches ErrRoutingDecisionInvalid.
func (e *RoutingDecisionInvalidError) Is(target error) bool {
	return target == ErrRoutingDecisionInvalid
}

// WorkerExhaustedError reports the worker, the cap it hit and the best
// partial text produced before giving up (possibly empty).
type WorkerExhaustedError struct {
	Worker     string
	Iterations int
	Partial    string
}

func (e *WorkerExhaustedError) Error() string {
	return fmt.Sprintf("worker %s exhausted after %d iterations", e.Worker, e.Iterations)
}

// Is matches ErrWorkerExhausted.
func (e *WorkerExhaustedError) Is(target error) bool { return target == ErrWorkerExhausted }

// ActionError wraps a collaborator failure for one action call.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e *ActionError) Unwrap() error { return e.Err }

// Is matches ErrActionExecutionFailed.
func (e *ActionError) Is(target error) bool { return target == ErrActionExecutionFailed }
