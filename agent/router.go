package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/tool"
)

// closingPrompt is appended to every router instruction.
const closingPrompt = "Given the conversation above, who should act next? Or should we FINISH? Select one of: {{join \", \" .Options}}"

// RouterOptions configures a Router instance.
type RouterOptions struct {
	// Instruction is the supervisor preamble. The closing selection prompt is
	// always appended after it.
	Instruction Instruction
	Logger      logging.Logger
}

// Router chooses the next worker or FINISH from a closed enumeration. The
// model is forced to call the route action and its argument is checked
// against the enumeration; anything else fails the request.
type Router struct {
	llm         model.Model
	members     []string
	options     []string
	instruction string
	definition  model.ToolDefinition
	schema      *tool.Schema
	logger      logging.Logger
}

// NewRouter creates a router over the given members. Members are fixed for
// the router's lifetime; an empty name, a duplicate or FINISH is rejected.
func NewRouter(llm model.Model, members []string, optFns ...func(o *RouterOptions)) (*Router, error) {
	opts := RouterOptions{
		Instruction: NewInstructionFromText("You are a supervisor tasked with managing a conversation between the following workers: {{join \", \" .Members}}. Route each request to the worker best suited to act next."),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if llm == nil {
		return nil, fmt.Errorf("router model must not be nil")
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("router requires at least one member")
	}

	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		switch {
		case m == "":
			return nil, fmt.Errorf("router member name must not be empty")
		case m == core.Finish:
			return nil, fmt.Errorf("router member name %q is reserved", m)
		}
		if _, dup := seen[m]; dup {
			return nil, fmt.Errorf("duplicate router member %q", m)
		}
		seen[m] = struct{}{}
	}

	members = slices.Clone(members)
	options := core.Options(members)

	data := InstructionData{Name: core.AuthorRouter, Members: members, Options: options}
	preamble, err := opts.Instruction.Resolve(data)
	if err != nil {
		return nil, fmt.Errorf("router: resolve instruction: %w", err)
	}
	closing, err := NewInstructionFromText(closingPrompt).Resolve(data)
	if err != nil {
		return nil, fmt.Errorf("router: resolve closing prompt: %w", err)
	}

	definition := model.ToolDefinition{
		Name:        core.RouteActionName,
		Description: "Select the next role.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"next": map[string]any{
					"type": "string",
					"enum": stringsToAny(options),
				},
			},
			"required":             []any{"next"},
			"additionalProperties": false,
		},
	}

	schema, err := tool.CompileSchema(definition.Name, definition.Parameters)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	return &Router{
		llm:         llm,
		members:     members,
		options:     options,
		instruction: strings.TrimSpace(preamble) + "\n\n" + closing,
		definition:  definition,
		schema:      schema,
		logger:      logging.With(logging.OrNoOp(opts.Logger), "component", "router"),
	}, nil
}

// Members returns the worker names in registration order.
func (r *Router) Members() []string { return slices.Clone(r.members) }

// Options returns the closed enumeration: FINISH followed by the members.
func (r *Router) Options() []string { return slices.Clone(r.options) }

// Instruction returns the fully rendered router prompt.
func (r *Router) Instruction() string { return r.instruction }

// Decide asks the model who acts next. Routing messages in transcript are
// ignored. Every malformed or out-of-range answer yields a
// *core.RoutingDecisionInvalidError; there is no default and no retry.
func (r *Router) Decide(ctx context.Context, transcript []core.Message) (core.Decision, error) {
	conversation := make([]core.Message, 0, len(transcript))
	for _, m := range transcript {
		if !m.IsRouting() {
			conversation = append(conversation, m)
		}
	}

	start := time.Now()
	resp, err := r.llm.Generate(ctx, model.Request{
		Instructions: r.instruction,
		Transcript:   conversation,
		Tools:        []model.ToolDefinition{r.definition},
		ToolChoice:   core.RouteActionName,
	})
	logging.LogModelCall(r.logger, r.llm.Info().Name, resp.Tokens(), time.Since(start), err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.Decision{}, ctxErr
		}
		return core.Decision{}, fmt.Errorf("router: model call failed: %w", err)
	}

	decision, err := r.parse(resp)
	if err != nil {
		r.logger.Error("router.decision.invalid", "error", err.Error())
		return core.Decision{}, err
	}

	r.logger.Debug("router.decision", "next", decision.Next)

	return decision, nil
}

func (r *Router) parse(resp model.Response) (core.Decision, error) {
	invalid := func(value, format string, args ...any) error {
		return &core.RoutingDecisionInvalidError{
			Value:   value,
			Allowed: r.Options(),
			Reason:  fmt.Sprintf(format, args...),
		}
	}

	if len(resp.Calls) != 1 {
		return core.Decision{}, invalid(resp.Text, "expected exactly one %s call, got %d", core.RouteActionName, len(resp.Calls))
	}

	call := resp.Calls[0]
	if call.Name != core.RouteActionName {
		return core.Decision{}, invalid(string(call.Arguments), "unexpected action %q", call.Name)
	}

	var args map[string]any
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		return core.Decision{}, invalid(string(call.Arguments), "malformed arguments: %v", err)
	}
	if err := r.schema.Validate(args); err != nil {
		return core.Decision{}, invalid(string(call.Arguments), "arguments rejected: %v", err)
	}

	next, _ := args["next"].(string)
	decision := core.Decision{Next: next}
	if !decision.ValidFor(r.members) {
		return core.Decision{}, invalid(next, "not a member")
	}

	return decision, nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
