package core

import (
	"fmt"
	"sync"
)

// StepBudget enforces the maximum number of Router and Worker invocations per
// request. Unlike a plain counter it refuses to be taken past its limit, so
// Count never exceeds Max.
type StepBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepBudget creates a budget allowing max steps. max must be positive.
func NewStepBudget(max int) (*StepBudget, error) {
	if max <= 0 {
		return nil, fmt.Errorf("step budget must be positive, got %d", max)
	}
	return &StepBudget{max: max}, nil
}

// Take consumes one step. It returns ErrBudgetExceeded, without consuming,
// when no step remains.
func (b *StepBudget) Take() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.max {
		return fmt.Errorf("%w: %d steps", ErrBudgetExceeded, b.max)
	}
	b.count++

	return nil
}

// Count returns the number of steps taken.
func (b *StepBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Remaining returns how many steps are left.
func (b *StepBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.max - b.count
}

// Max returns the configured limit.
func (b *StepBudget) Max() int { return b.max }
