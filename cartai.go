// Package cartai wires the shopping cart assistant: a supervisor router over
// a researcher and a cart handler, a persistent cart and web search.
//
// Quick start:
//
//	cfg, _ := config.Load("")
//	app, err := cartai.New(func(o *cartai.Options) { o.Config = cfg })
//	if err != nil { ... }
//	defer app.Close()
//	answer, err := app.Handle(ctx, "add a red desk lamp to my cart")
//
// Models, the cart store and the searcher can be replaced through Options,
// which is how tests run the whole assistant offline.
package cartai

import (
	"context"
	"errors"
	"fmt"
	"io"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/PaulCrtr/cart-ai/agent"
	"github.com/PaulCrtr/cart-ai/cart"
	"github.com/PaulCrtr/cart-ai/config"
	"github.com/PaulCrtr/cart-ai/engine"
	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/model/anthropic"
	"github.com/PaulCrtr/cart-ai/model/openai"
	"github.com/PaulCrtr/cart-ai/search"
	"github.com/PaulCrtr/cart-ai/tool"
)

// Options configures the assistant. Zero fields are built from Config.
type Options struct {
	Config *config.Config
	Logger logging.Logger

	// Model is used by the router and every worker unless RouterModel is set.
	Model       model.Model
	RouterModel model.Model

	Store    cart.Store
	Searcher search.Searcher
	Observer engine.Observer
}

// CartAI is a ready-to-serve assistant.
type CartAI struct {
	engine  *engine.Engine
	store   cart.Store
	closers []io.Closer
	logger  logging.Logger
}

// New builds the assistant.
func New(optFns ...func(o *Options)) (*CartAI, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.OrNoOp(opts.Logger)
	app := &CartAI{logger: logger}

	llm := opts.Model
	if llm == nil {
		llm = NewModel(cfg.Model)
	}
	routerLLM := opts.RouterModel
	if routerLLM == nil {
		routerLLM = llm
	}

	app.store = opts.Store
	if app.store == nil {
		store, closer, err := OpenStore(cfg.Cart)
		if err != nil {
			return nil, err
		}
		app.store = store
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	searcher := opts.Searcher
	if searcher == nil {
		tavily, err := search.NewTavily(func(o *search.TavilyOptions) {
			o.APIKey = cfg.Search.APIKey
			if cfg.Search.Endpoint != "" {
				o.Endpoint = cfg.Search.Endpoint
			}
		})
		if err != nil {
			app.Close() //nolint:errcheck // construction already failed
			return nil, fmt.Errorf("search: %w", err)
		}
		searcher = tavily
	}

	searchTool, err := search.NewTool(searcher, cfg.Search.MaxResults, logger)
	if err != nil {
		app.Close() //nolint:errcheck // construction already failed
		return nil, err
	}
	cartTools, err := cart.Tools(app.store, func(o *cart.ToolOptions) {
		o.MaxAddsPerTurn = cfg.Agents.MaxItemsPerTurn
		o.Logger = logger
	})
	if err != nil {
		app.Close() //nolint:errcheck // construction already failed
		return nil, err
	}

	workerOpts := func(o *agent.WorkerOptions) {
		o.MaxIterations = cfg.Agents.MaxIterations
		o.MaxItemsPerTurn = cfg.Agents.MaxItemsPerTurn
		o.Logger = logger
	}

	researcher, err := agent.NewResearcher(llm, []tool.Tool{searchTool}, workerOpts)
	if err != nil {
		app.Close() //nolint:errcheck // construction already failed
		return nil, err
	}
	handler, err := agent.NewCartHandler(llm, cartTools, workerOpts)
	if err != nil {
		app.Close() //nolint:errcheck // construction already failed
		return nil, err
	}
	router, err := agent.NewSupervisor(routerLLM, func(o *agent.RouterOptions) { o.Logger = logger })
	if err != nil {
		app.Close() //nolint:errcheck // construction already failed
		return nil, err
	}

	app.engine = engine.New(router, func(o *engine.Options) {
		o.MaxSteps = cfg.Engine.MaxSteps
		o.MaxConcurrentRequests = cfg.Engine.MaxConcurrentRequests
		o.Logger = logger
		o.Observer = opts.Observer
	})
	for _, w := range []engine.Worker{handler, researcher} {
		if err := app.engine.Register(w); err != nil {
			app.Close() //nolint:errcheck // construction already failed
			return nil, err
		}
	}

	logger.Info("cartai.ready",
		"provider", llm.Info().Provider,
		"model", llm.Info().Name,
		"cart_backend", cfg.Cart.Backend,
		"max_steps", cfg.Engine.MaxSteps,
	)

	return app, nil
}

// Handle answers one query.
func (c *CartAI) Handle(ctx context.Context, query string) (string, error) {
	return c.engine.Handle(ctx, query)
}

// Run answers one query and reports the terminal status and transcript.
func (c *CartAI) Run(ctx context.Context, query string) (engine.Result, error) {
	return c.engine.Run(ctx, query)
}

// Cancel aborts an in-flight request.
func (c *CartAI) Cancel(requestID string) error { return c.engine.Cancel(requestID) }

// Store returns the cart store.
func (c *CartAI) Store() cart.Store { return c.store }

// Engine returns the underlying engine.
func (c *CartAI) Engine() *engine.Engine { return c.engine }

// Close releases stores opened by New.
func (c *CartAI) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// NewModel builds the provider adapter selected by cfg.
func NewModel(cfg config.ModelConfig) model.Model {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		})
	default:
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.MaxTokens)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		})
	}
}

// OpenStore opens the cart backend selected by cfg. The closer is nil for
// backends that hold no resources.
func OpenStore(cfg config.CartConfig) (cart.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := cart.OpenSQLStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open cart: %w", err)
		}
		return s, s, nil
	case config.BackendMemory:
		return cart.NewMemoryStore(), nil, nil
	case config.BackendFile, "":
		return cart.NewFileStore(cfg.Path), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart backend %q", cfg.Backend)
	}
}
