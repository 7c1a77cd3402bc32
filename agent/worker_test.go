package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []map[string]any
}

func (r *recorder) tool(t *testing.T, name string) tool.Tool {
	t.Helper()
	tl, err := tool.NewFunctionTool(name, "records its arguments", nil, func(_ context.Context, args map[string]any) (string, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, args)
		return name + " done", nil
	})
	require.NoError(t, err)
	return tl
}

func call(id, name, args string) core.ActionCall {
	return core.ActionCall{ID: id, Name: name, Arguments: []byte(args)}
}

func seedState(query string) core.State {
	return core.NewState(core.NewUserMessage(query))
}

func TestWorker_FinalAnswerWithoutTools(t *testing.T) {
	llm := model.NewScriptedModel("test").Reply("hello there")
	w, err := NewWorker("greeter", llm)
	require.NoError(t, err)

	msg, err := w.Run(context.Background(), seedState("hi"))
	require.NoError(t, err)

	assert.Equal(t, "greeter", msg.Author)
	assert.Equal(t, core.RoleWorker, msg.Role)
	assert.Equal(t, "hello there", msg.Content)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are greeter, a helpful assistant.", reqs[0].Instructions)
	assert.Empty(t, reqs[0].Scratch)
}

func TestWorker_MultipleCallsFedBackTogether(t *testing.T) {
	rec := &recorder{}
	llm := model.NewScriptedModel("test").
		Enqueue(model.Response{Calls: []core.ActionCall{
			call("c1", "add_tool", `{"n":1}`),
			call("c2", "add_tool", `{"n":2}`),
		}}, nil).
		Reply("added two products")

	w, err := NewWorker(CartHandlerName, llm, func(o *WorkerOptions) {
		o.Tools = []tool.Tool{rec.tool(t, "add_tool")}
	})
	require.NoError(t, err)

	msg, err := w.Run(context.Background(), seedState("add two"))
	require.NoError(t, err)
	assert.Equal(t, "added two products", msg.Content)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, float64(1), rec.calls[0]["n"])
	assert.Equal(t, float64(2), rec.calls[1]["n"])

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[1].Scratch, 1, "both results belong to one exchange")
	ex := reqs[1].Scratch[0]
	require.Len(t, ex.Results, 2)
	assert.Equal(t, "c1", ex.Results[0].CallID)
	assert.Equal(t, "c2", ex.Results[1].CallID)
	assert.Equal(t, []string{"add_tool"}, w.ToolNames())
}

func TestWorker_ScratchIsNotShared(t *testing.T) {
	rec := &recorder{}
	llm := model.NewScriptedModel("test").
		Enqueue(model.Response{Calls: []core.ActionCall{call("c1", "read_tool", `{}`)}}, nil).
		Reply("first").
		Reply("second")

	w, err := NewWorker("w", llm, func(o *WorkerOptions) { o.Tools = []tool.Tool{rec.tool(t, "read_tool")} })
	require.NoError(t, err)

	state := seedState("q")
	_, err = w.Run(context.Background(), state)
	require.NoError(t, err)
	_, err = w.Run(context.Background(), state)
	require.NoError(t, err)

	reqs := llm.Requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[2].Scratch)
	assert.Equal(t, 1, state.Len(), "worker must not touch the shared state")
}

func TestWorker_ToolFailureIsFedBack(t *testing.T) {
	failing, err := tool.NewFunctionTool("remove_tool", "", nil, func(context.Context, map[string]any) (string, error) {
		return "", errors.New("disk full")
	})
	require.NoError(t, err)

	llm := model.NewScriptedModel("test").
		Enqueue(model.Response{Calls: []core.ActionCall{call("c1", "remove_tool", `{}`)}}, nil).
		Reply("could not remove")

	w, err := NewWorker("w", llm, func(o *WorkerOptions) { o.Tools = []tool.Tool{failing} })
	require.NoError(t, err)

	msg, err := w.Run(context.Background(), seedState("remove"))
	require.NoError(t, err)
	assert.Equal(t, "could not remove", msg.Content)

	res := llm.Requests()[1].Scratch[0].Results[0]
	assert.True(t, res.Failed)
	assert.Contains(t, res.Output, "disk full")
}

func TestWorker_Exhausted(t *testing.T) {
	rec := &recorder{}
	llm := model.NewScriptedModel("test")
	llm.Responder = func(model.Request) (model.Response, error) {
		return model.Response{Text: "still searching", Calls: []core.ActionCall{call("", "search", `{}`)}}, nil
	}

	w, err := NewWorker("researcher", llm, func(o *WorkerOptions) {
		o.MaxIterations = 3
		o.Tools = []tool.Tool{rec.tool(t, "search")}
	})
	require.NoError(t, err)

	_, err = w.Run(context.Background(), seedState("find"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrWorkerExhausted)

	var exhausted *core.WorkerExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "researcher", exhausted.Worker)
	assert.Equal(t, 3, exhausted.Iterations)
	assert.Equal(t, "still searching", exhausted.Partial)
	assert.Len(t, llm.Requests(), 3)
}

func TestWorker_ExhaustedPartialFallsBackToResult(t *testing.T) {
	rec := &recorder{}
	llm := model.NewScriptedModel("test")
	llm.Responder = func(model.Request) (model.Response, error) {
		return model.Response{Calls: []core.ActionCall{call("", "search", `{}`)}}, nil
	}

	w, err := NewWorker("researcher", llm, func(o *WorkerOptions) {
		o.MaxIterations = 1
		o.Tools = []tool.Tool{rec.tool(t, "search")}
	})
	require.NoError(t, err)

	_, err = w.Run(context.Background(), seedState("find"))
	var exhausted *core.WorkerExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "search done", exhausted.Partial)
}

func TestWorker_ModelFailure(t *testing.T) {
	llm := model.NewScriptedModel("test").Enqueue(model.Response{}, errors.New("rate limited"))
	w, err := NewWorker("w", llm)
	require.NoError(t, err)

	_, err = w.Run(context.Background(), seedState("q"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.NotErrorIs(t, err, core.ErrWorkerExhausted)
}

func TestWorker_Cancelled(t *testing.T) {
	llm := model.NewScriptedModel("test").Reply("never")
	llm.Gate = make(chan struct{})
	llm.Started = make(chan struct{}, 1)

	w, err := NewWorker("w", llm)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := w.Run(ctx, seedState("q"))
		done <- err
	}()

	<-llm.Started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewWorker_Validation(t *testing.T) {
	llm := model.NewScriptedModel("test")

	_, err := NewWorker("", llm)
	assert.Error(t, err)

	_, err = NewWorker("w", nil)
	assert.Error(t, err)

	_, err = NewWorker("w", llm, func(o *WorkerOptions) { o.MaxIterations = 0 })
	assert.Error(t, err)

	rec := &recorder{}
	_, err = NewWorker("w", llm, func(o *WorkerOptions) {
		o.Tools = []tool.Tool{rec.tool(t, "dup"), rec.tool(t, "dup")}
	})
	assert.Error(t, err)
}

func TestWorker_TurnScopedCounter(t *testing.T) {
	var counts []int
	counting, err := tool.NewFunctionTool("add_tool", "", nil, func(ctx context.Context, _ map[string]any) (string, error) {
		counts = append(counts, tool.CountInTurn(ctx, "add"))
		return "ok", nil
	})
	require.NoError(t, err)

	llm := model.NewScriptedModel("test").
		Enqueue(model.Response{Calls: []core.ActionCall{call("a", "add_tool", `{}`), call("b", "add_tool", `{}`)}}, nil).
		Reply("one").
		Enqueue(model.Response{Calls: []core.ActionCall{call("c", "add_tool", `{}`)}}, nil).
		Reply("two")

	w, err := NewWorker("w", llm, func(o *WorkerOptions) { o.Tools = []tool.Tool{counting} })
	require.NoError(t, err)

	_, err = w.Run(context.Background(), seedState("q"))
	require.NoError(t, err)
	_, err = w.Run(context.Background(), seedState("q"))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 1}, counts)
}
