package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/logging"
)

// Default operational limits.
const (
	DefaultMaxSteps              = 20
	DefaultMaxConcurrentRequests = 10
)

var (
	// ErrRequestNotFound is returned by Cancel for unknown or finished requests.
	ErrRequestNotFound = errors.New("request not found")
	// ErrEmptyQuery is returned by Run for a blank query.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrWorkerNotRegistered means the router selected a member with no
	// registered worker.
	ErrWorkerNotRegistered = errors.New("worker not registered")
)

// Router decides the next hop. It is satisfied by *agent.Router.
type Router interface {
	Members() []string
	Decide(ctx context.Context, transcript []core.Message) (core.Decision, error)
}

// Worker turns the current state into one contribution. It is satisfied by
// *agent.Worker.
type Worker interface {
	Name() string
	MaxIterations() int
	Run(ctx context.Context, state core.State) (core.Message, error)
}

// Options configures an Engine instance.
type Options struct {
	// MaxSteps bounds Router plus Worker invocations per request.
	MaxSteps int
	// MaxConcurrentRequests bounds requests executing at once. Further
	// requests wait for a slot or for their context to end.
	MaxConcurrentRequests int
	Logger                logging.Logger
	Observer              Observer
}

// Result is the outcome of one request.
type Result struct {
	RequestID  string
	Answer     string
	Status     core.Status
	Steps      int
	Transcript []core.Message
	// Err is the condition behind a non-DONE status: the budget error, the
	// cancellation cause, an exhausted worker that still contributed, or the
	// hard failure.
	Err error
}

// Engine orchestrates one Router and its Workers.
//
// Register all workers before serving requests. Run, Handle and Cancel are
// safe for concurrent use.
type Engine struct {
	router   Router
	maxSteps int
	logger   logging.Logger
	observer Observer
	slots    chan struct{}

	mu      sync.RWMutex
	workers map[string]Worker

	activeMu       sync.Mutex
	activeRequests map[string]context.CancelFunc
}

// New creates an engine around router.
func New(router Router, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxSteps:              DefaultMaxSteps,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		Logger:                logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}

	return &Engine{
		router:         router,
		maxSteps:       opts.MaxSteps,
		logger:         logging.With(logging.OrNoOp(opts.Logger), "component", "engine"),
		observer:       opts.Observer,
		slots:          make(chan struct{}, opts.MaxConcurrentRequests),
		workers:        make(map[string]Worker),
		activeRequests: make(map[string]context.CancelFunc),
	}
}

// MaxSteps returns the per-request step budget.
func (e *Engine) MaxSteps() int { return e.maxSteps }

// Register adds a worker. The name must be one of the router's members and
// not yet registered, and the worker's iteration cap must be smaller than
// the step budget.
func (e *Engine) Register(w Worker) error {
	name := w.Name()
	switch {
	case name == "":
		return fmt.Errorf("worker name must not be empty")
	case name == core.Finish:
		return fmt.Errorf("worker name %q is reserved", name)
	case !slices.Contains(e.router.Members(), name):
		return fmt.Errorf("worker %q is not a router member %v", name, e.router.Members())
	case w.MaxIterations() >= e.maxSteps:
		return fmt.Errorf("worker %q iteration cap %d must be smaller than the step budget %d", name, w.MaxIterations(), e.maxSteps)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.workers[name]; exists {
		return fmt.Errorf("worker %q already registered", name)
	}
	e.workers[name] = w
	return nil
}

// Workers returns the registered worker names in router member order.
func (e *Engine) Workers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.workers))
	for _, m := range e.router.Members() {
		if _, ok := e.workers[m]; ok {
			names = append(names, m)
		}
	}
	return names
}

func (e *Engine) worker(name string) (Worker, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.workers[name]
	return w, ok
}

// Cancel aborts the in-flight request with the given id.
func (e *Engine) Cancel(requestID string) error {
	e.activeMu.Lock()
	cancel, ok := e.activeRequests[requestID]
	e.activeMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	cancel()
	return nil
}

// Active returns the ids of in-flight requests.
func (e *Engine) Active() []string {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	ids := make([]string, 0, len(e.activeRequests))
	for id := range e.activeRequests {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Handle runs query and returns the answer text. DONE, BUDGET_EXCEEDED and
// CANCELLED requests always yield text; a failed request yields text when a
// worker contributed before the failure and an error otherwise.
func (e *Engine) Handle(ctx context.Context, query string) (string, error) {
	res, err := e.Run(ctx, query)
	if res.Answered() {
		return res.Answer, nil
	}
	return "", err
}

// Run executes one request to a terminal status. The returned error is
// non-nil only for FAILED requests and invalid input; other conditions are
// reported through Result.Status and Result.Err.
func (e *Engine) Run(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{Status: core.StatusFailed, Err: ErrEmptyQuery}, ErrEmptyQuery
	}

	requestID := core.NewID()
	seed := core.NewState(core.NewUserMessage(query))

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return e.result(requestID, seed, 0, core.StatusCancelled, fmt.Errorf("%w: %w", core.ErrCancelled, ctx.Err())), nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.activeMu.Lock()
	e.activeRequests[requestID] = cancel
	e.activeMu.Unlock()
	defer func() {
		e.activeMu.Lock()
		delete(e.activeRequests, requestID)
		e.activeMu.Unlock()
	}()

	logger := logging.With(e.logger, "request_id", requestID)
	logger.Info("engine.request.start", "max_steps", e.maxSteps)
	start := time.Now()

	res := e.loop(runCtx, logger, requestID, seed)

	logger.Info("engine.request.complete",
		"status", string(res.Status),
		"steps", res.Steps,
		"transcript", len(res.Transcript),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if res.Status == core.StatusFailed {
		return res, res.Err
	}
	return res, nil
}

func (e *Engine) loop(ctx context.Context, logger logging.Logger, requestID string, state core.State) Result {
	budget, err := core.NewStepBudget(e.maxSteps)
	if err != nil {
		return e.result(requestID, state, 0, core.StatusFailed, err)
	}

	var exhausted error

	phase := PhaseRouting
	for {
		if err := budget.Take(); err != nil {
			logger.Warn("engine.budget.exceeded", "phase", string(phase), "steps", budget.Count())
			return e.result(requestID, state, budget.Count(), core.StatusBudgetExceeded, err)
		}
		step := budget.Count()

		switch phase {
		case PhaseRouting:
			decision, err := e.router.Decide(ctx, state.Transcript)
			if err != nil {
				if ctx.Err() != nil {
					return e.cancelled(ctx, requestID, state, step)
				}
				logger.Error("engine.step.route.failed", "step", step, "error", err.Error())
				return e.result(requestID, state, step, core.StatusFailed, err)
			}

			msg := core.NewRouterMessage(decision)
			state = core.Merge(state, msg)
			logger.Debug("engine.step.route", "step", step, "next", decision.Next)
			e.notify(StepEvent{RequestID: requestID, Step: step, Phase: PhaseRouting, Actor: core.AuthorRouter, Message: msg})

			if decision.IsFinish() {
				return e.result(requestID, state, step, core.StatusDone, exhausted)
			}
			phase = PhaseDispatching

		case PhaseDispatching:
			w, ok := e.worker(state.NextHop)
			if !ok {
				err := fmt.Errorf("%w: %s", ErrWorkerNotRegistered, state.NextHop)
				logger.Error("engine.step.dispatch.failed", "step", step, "worker", state.NextHop, "error", err.Error())
				return e.result(requestID, state, step, core.StatusFailed, err)
			}

			msg, err := w.Run(ctx, state)
			if err != nil {
				if ctx.Err() != nil {
					return e.cancelled(ctx, requestID, state, step)
				}

				var we *core.WorkerExhaustedError
				if !errors.As(err, &we) || we.Partial == "" {
					logger.Error("engine.step.dispatch.failed", "step", step, "worker", w.Name(), "error", err.Error())
					return e.result(requestID, state, step, core.StatusFailed, err)
				}

				logger.Warn("engine.worker.exhausted", "step", step, "worker", w.Name(), "iterations", we.Iterations)
				msg = core.NewWorkerMessage(w.Name(), we.Partial)
				exhausted = err
			}

			state = core.Merge(state, msg)
			logger.Debug("engine.step.dispatch", "step", step, "worker", w.Name())
			e.notify(StepEvent{RequestID: requestID, Step: step, Phase: PhaseDispatching, Actor: w.Name(), Message: msg})

			phase = PhaseRouting
		}
	}
}

func (e *Engine) cancelled(ctx context.Context, requestID string, state core.State, step int) Result {
	e.logger.Warn("engine.request.cancelled", "request_id", requestID, "step", step)
	return e.result(requestID, state, step, core.StatusCancelled, fmt.Errorf("%w: %w", core.ErrCancelled, context.Cause(ctx)))
}

func (e *Engine) notify(ev StepEvent) {
	if e.observer != nil {
		e.observer.OnStep(ev)
	}
}

func (e *Engine) result(requestID string, state core.State, steps int, status core.Status, err error) Result {
	var answer string
	if m, ok := state.LastContribution(); ok {
		answer = m.Content
	}
	return Result{
		RequestID:  requestID,
		Answer:     answer,
		Status:     status,
		Steps:      steps,
		Transcript: state.Transcript,
		Err:        err,
	}
}

// Answered reports whether the result carries text worth returning: every
// status except FAILED, and FAILED requests in which a worker contributed
// before the failure.
func (r Result) Answered() bool {
	if r.Status != core.StatusFailed {
		return r.Status != ""
	}
	for _, m := range r.Transcript {
		if m.Role == core.RoleWorker {
			return true
		}
	}
	return false
}
