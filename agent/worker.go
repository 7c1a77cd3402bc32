package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/flow"
	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/tool"
)

// DefaultMaxIterations bounds a worker's reason/act loop when no cap is set.
const DefaultMaxIterations = 6

// WorkerOptions configures a Worker instance.
//
// Use functional options with NewWorker to override defaults.
type WorkerOptions struct {
	Instruction     Instruction
	Tools           []tool.Tool
	MaxIterations   int
	MaxItemsPerTurn int
	Logger          logging.Logger
}

// Worker is a named participant that runs a bounded loop of model calls and
// action executions until the model gives a final answer.
//
// The tool rounds of one invocation live in a private scratch list that is
// discarded when Run returns; only the final answer reaches the transcript.
type Worker struct {
	name          string
	llm           model.Model
	instruction   Instruction
	registry      *tool.Registry
	executor      *flow.Executor
	maxIterations int
	maxItems      int
	logger        logging.Logger
}

// NewWorker creates a worker with a default instruction and no tools.
//
// It fails when two tools share a name.
func NewWorker(name string, llm model.Model, optFns ...func(o *WorkerOptions)) (*Worker, error) {
	opts := WorkerOptions{
		Instruction:   NewInstructionFromText("You are {{.Name}}, a helpful assistant."),
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, fmt.Errorf("worker name must not be empty")
	}
	if llm == nil {
		return nil, fmt.Errorf("worker %s: model must not be nil", name)
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("worker %s: max iterations must be positive, got %d", name, opts.MaxIterations)
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", name, err)
	}

	logger := logging.With(logging.OrNoOp(opts.Logger), "worker", name)

	return &Worker{
		name:          name,
		llm:           llm,
		instruction:   opts.Instruction,
		registry:      registry,
		executor:      flow.NewExecutor(logger),
		maxIterations: opts.MaxIterations,
		maxItems:      opts.MaxItemsPerTurn,
		logger:        logger,
	}, nil
}

// Name returns the worker's unique name.
func (w *Worker) Name() string { return w.name }

// MaxIterations returns the iteration cap.
func (w *Worker) MaxIterations() int { return w.maxIterations }

// ToolNames lists the actions the worker may call, in registration order.
func (w *Worker) ToolNames() []string { return w.registry.Names() }

// Run reads the conversation and produces one contribution authored by the
// worker. It returns ctx.Err() when cancelled and a *core.WorkerExhaustedError
// when the iteration cap is hit before a final answer.
func (w *Worker) Run(ctx context.Context, state core.State) (core.Message, error) {
	instructions, err := w.instruction.Resolve(InstructionData{Name: w.name, MaxItems: w.maxItems})
	if err != nil {
		return core.Message{}, fmt.Errorf("worker %s: resolve instruction: %w", w.name, err)
	}

	ctx = tool.WithTurn(ctx)
	transcript := state.Conversation()
	definitions := w.registry.Definitions()

	var (
		scratch    []model.Exchange
		lastText   string
		lastOutput string
	)

	for iteration := 1; iteration <= w.maxIterations; iteration++ {
		start := time.Now()
		resp, err := w.llm.Generate(ctx, model.Request{
			Instructions: instructions,
			Transcript:   transcript,
			Scratch:      scratch,
			Tools:        definitions,
		})
		logging.LogModelCall(w.logger, w.llm.Info().Name, resp.Tokens(), time.Since(start), err)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return core.Message{}, ctxErr
			}
			return core.Message{}, fmt.Errorf("worker %s: model call failed: %w", w.name, err)
		}

		if resp.IsFinal() {
			w.logger.Debug("worker.answer", "iteration", iteration, "length", len(resp.Text))
			return core.NewWorkerMessage(w.name, resp.Text), nil
		}

		w.logger.Debug("worker.iteration", "iteration", iteration, "calls", len(resp.Calls))

		if resp.Text != "" {
			lastText = resp.Text
		}

		results, err := w.executor.Execute(ctx, w.registry, resp.Calls)
		if err != nil {
			return core.Message{}, err
		}
		if n := len(results); n > 0 {
			lastOutput = results[n-1].Output
		}

		scratch = append(scratch, model.Exchange{Text: resp.Text, Calls: resp.Calls, Results: results})
	}

	partial := lastText
	if partial == "" {
		partial = lastOutput
	}

	w.logger.Warn("worker.exhausted", "iterations", w.maxIterations, "has_partial", partial != "")

	return core.Message{}, &core.WorkerExhaustedError{
		Worker:     w.name,
		Iterations: w.maxIterations,
		Partial:    partial,
	}
}
