package testutil

import (
	"github.com/PaulCrtr/cart-ai/core"
)

// StateBuilder helps construct conversation states with fluent chaining.
// Messages are merged through core.Merge so NextHop follows the reducer.
// Example:
//
//	st := NewStateBuilder("add a lamp").Route("researcher").Worker("researcher", "found it").Build()
type StateBuilder struct {
	state core.State
}

// NewStateBuilder seeds a state with the user's query.
func NewStateBuilder(query string) *StateBuilder {
	return &StateBuilder{state: core.NewState(core.NewUserMessage(query))}
}

// Route merges a routing decision (chainable).
func (b *StateBuilder) Route(next string) *StateBuilder {
	b.state = core.Merge(b.state, core.NewRouterMessage(core.Decision{Next: next}))
	return b
}

// Worker merges a worker contribution (chainable).
func (b *StateBuilder) Worker(name, content string) *StateBuilder {
	b.state = core.Merge(b.state, core.NewWorkerMessage(name, content))
	return b
}

// Build returns the accumulated state.
func (b *StateBuilder) Build() core.State { return b.state }
