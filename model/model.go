package model

import (
	"context"

	"github.com/PaulCrtr/cart-ai/core"
)

// ToolDefinition declaratively exposes a callable action to the model.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Exchange is one worker-private tool round: the calls the model requested and
// the results fed back, in call order.
type Exchange struct {
	Text    string              `json:"text,omitempty"` // text the model produced alongside the calls
	Calls   []core.ActionCall   `json:"calls"`
	Results []core.ActionResult `json:"results"`
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"`
	Transcript   []core.Message   `json:"transcript"`
	Scratch      []Exchange       `json:"scratch,omitempty"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	// ToolChoice forces the named tool when non-empty.
	ToolChoice string `json:"tool_choice,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is either a final answer (no Calls) or an action request.
type Response struct {
	Text         string            `json:"text,omitempty"`
	Calls        []core.ActionCall `json:"calls,omitempty"`
	FinishReason string            `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage       `json:"usage,omitempty"`
}

// IsFinal reports whether the response is a final answer.
func (r Response) IsFinal() bool { return len(r.Calls) == 0 }

// Tokens returns the total token count, or 0 when usage is unknown.
func (r Response) Tokens() int {
	if r.Usage == nil {
		return 0
	}
	return r.Usage.TotalTokens
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the Action Capability consumed by workers and the router.
// Generate blocks until the provider answers or ctx is done.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
