package tool

import (
	"context"
	"sync"
)

type turnKey struct{}

// turn counts tool invocations within one worker turn.
type turn struct {
	mu     sync.Mutex
	counts map[string]int
}

// WithTurn returns a context scoped to a fresh worker turn. Counters read
// through CountInTurn start at zero for each new turn.
func WithTurn(ctx context.Context) context.Context {
	return context.WithValue(ctx, turnKey{}, &turn{counts: map[string]int{}})
}

// CountInTurn increments and returns the counter for key in the current turn.
// Without a turn in ctx it returns 0 and nothing is counted.
func CountInTurn(ctx context.Context, key string) int {
	t, ok := ctx.Value(turnKey{}).(*turn)
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[key]++
	return t.counts[key]
}
