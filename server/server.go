// Package server exposes a CartAI instance over HTTP.
package server

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	hzserver "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/PaulCrtr/cart-ai/config"
	"github.com/PaulCrtr/cart-ai/engine"
	"github.com/PaulCrtr/cart-ai/logging"
)

// StatusHeader carries the terminal status of the request.
const StatusHeader = "X-Cartai-Status"

// Runner runs one request to completion. *cartai.CartAI and *engine.Engine
// satisfy it.
type Runner interface {
	Run(ctx context.Context, query string) (engine.Result, error)
}

// Handler serves the HTTP routes.
type Handler struct {
	Runner Runner
	Logger logging.Logger
}

// RegisterRoutes mounts the routes on s.
func (h Handler) RegisterRoutes(s *hzserver.Hertz) {
	s.GET("/invoke", h.invoke)
	s.GET("/healthz", h.healthz)
}

// New builds a hertz server bound to cfg.Addr. Call Spin to serve.
func New(runner Runner, cfg config.ServerConfig, logger logging.Logger) *hzserver.Hertz {
	s := hzserver.Default(hzserver.WithHostPorts(cfg.Addr))
	if cfg.RateLimit > 0 {
		s.Use(NewRateLimiter(cfg.RateLimit, cfg.Burst).Middleware())
	}
	Handler{Runner: runner, Logger: logger}.RegisterRoutes(s)
	return s
}

func (h Handler) invoke(c context.Context, ctx *app.RequestContext) {
	log := logging.OrNoOp(h.Logger)

	query := strings.TrimSpace(ctx.Query("query"))
	if query == "" {
		ctx.String(consts.StatusBadRequest, "%s", "missing query parameter")
		return
	}

	res, err := h.Runner.Run(c, query)
	if res.Status != "" {
		ctx.Header(StatusHeader, string(res.Status))
	}
	if !res.Answered() {
		if err == nil {
			err = errors.New("request produced no answer")
		}
		log.Error("server.invoke.failed", "request_id", res.RequestID, "error", err)
		if errors.Is(err, engine.ErrEmptyQuery) {
			ctx.String(consts.StatusBadRequest, "%s", err.Error())
			return
		}
		ctx.String(consts.StatusInternalServerError, "%s", err.Error())
		return
	}

	log.Info("server.invoke.complete", "request_id", res.RequestID, "status", res.Status, "steps", res.Steps)
	ctx.String(consts.StatusOK, "%s", res.Answer)
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.String(consts.StatusOK, "%s", "ok")
}
