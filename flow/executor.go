package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/tool"
)

// Executor runs a batch of action calls against a tool registry.
type Executor struct {
	logger logging.Logger
}

// NewExecutor constructs an Executor. A nil logger discards output.
func NewExecutor(logger logging.Logger) *Executor {
	return &Executor{logger: logging.OrNoOp(logger)}
}

// Execute runs calls sequentially and returns one result per call, in call
// order. It stops early only when ctx is done, returning the results gathered
// so far together with ctx's error.
func (e *Executor) Execute(ctx context.Context, registry *tool.Registry, calls []core.ActionCall) ([]core.ActionResult, error) {
	results := make([]core.ActionResult, 0, len(calls))
	batchStart := time.Now()

	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		output, err := e.executeOne(ctx, registry, call)
		dur := time.Since(start)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			actionErr := &core.ActionError{Action: call.Name, Err: err}
			e.logger.Warn("action.execute.failed", "action", call.Name, "call_id", call.ID, "duration_ms", dur.Milliseconds(), "error", err.Error())
			results = append(results, core.ActionResult{
				CallID: call.ID,
				Name:   call.Name,
				Output: "error: " + actionErr.Error(),
				Failed: true,
			})
			continue
		}

		e.logger.Info("action.execute.success", "action", call.Name, "call_id", call.ID, "duration_ms", dur.Milliseconds())
		results = append(results, core.ActionResult{CallID: call.ID, Name: call.Name, Output: output})
	}

	e.logger.Debug("action.batch.complete", "count", len(calls), "duration_ms", time.Since(batchStart).Milliseconds())

	return results, nil
}

// executeOne looks up and invokes a single tool, converting panics into errors.
func (e *Executor) executeOne(ctx context.Context, registry *tool.Registry, call core.ActionCall) (out string, err error) {
	impl, ok := registry.Lookup(call.Name)
	if !ok {
		return "", tool.NewToolError(call.Name, fmt.Sprintf("tool %s not found", call.Name), tool.CodeNotFound)
	}

	args := map[string]any{}
	if len(call.Arguments) > 0 && string(call.Arguments) != "null" {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return "", &tool.ToolError{Tool: call.Name, Message: fmt.Sprintf("failed to unmarshal args: %v", err), Code: tool.CodeBadInput, Err: err}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action.execute.panic", "action", call.Name, "recover", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	return impl.Call(ctx, args)
}
