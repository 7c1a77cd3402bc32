// Package model defines the Action Capability: the provider‑agnostic boundary
// through which workers and the router ask a reasoning model for either a
// final answer or a request to invoke actions.
//
// Core goals:
//   - A single blocking Generate call that honours context cancellation
//   - Normalized tool call representation (ToolDefinition, core.ActionCall)
//   - Forced tool choice so the router's output is structurally constrained
//   - Deterministic test doubles (ScriptedModel)
//
// Providers (openai, anthropic) implement Model so agents remain decoupled
// from vendor SDKs.
package model
