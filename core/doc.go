// Package core provides the foundational domain types shared by every part of
// cart-ai. It defines:
//
//   - Messages (immutable transcript entries authored by the user, a worker or the router)
//   - ActionCalls / ActionResults (tool requests and their outcomes within one worker turn)
//   - State and Merge (the per-request conversation record and its pure reducer)
//   - Decision (the router's closed-enumeration output)
//   - StepBudget (the global cap guaranteeing termination)
//   - The error taxonomy and terminal Status values surfaced to callers
//
// The package holds no orchestration logic; engine, agent and flow build on
// these types.
package core
