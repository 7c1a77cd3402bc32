// Package engine implements the orchestration state machine that drives one
// Router and a fixed set of Workers over a shared conversation state.
//
// # State machine
//
//	INIT ──► ROUTING ──► DISPATCHING ──► ROUTING ──► ... ──► DONE
//	             │              │
//	             └──────────────┴──► BUDGET_EXCEEDED
//
// INIT seeds the state with the caller's query. ROUTING asks the Router for
// the next hop and merges the decision; FINISH ends the request. DISPATCHING
// invokes the selected Worker and merges its single contribution. Every
// Router and Worker invocation consumes one step; the engine refuses to start
// an invocation once the step budget is spent, so the counter never exceeds
// MaxSteps.
//
// # Ownership
//
// The engine is the only writer of the conversation state. Workers and the
// Router receive it by value and return new data; merging happens through
// core.Merge only after a step completes. When a request is cancelled the
// step in flight is discarded and nothing from it is merged.
//
// # Concurrency
//
// Independent requests run concurrently up to MaxConcurrentRequests; each
// request has its own state, budget and cancel function. Cancel(requestID)
// aborts a single in-flight request.
//
// # Observability
//
// An Observer receives a StepEvent after every committed merge. Structured
// logs use dotted event names (engine.request.start, engine.step.route,
// engine.step.dispatch, engine.request.complete).
package engine
