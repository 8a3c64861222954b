package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tripplanner/internal/gateway/config"
	"tripplanner/internal/gateway/handler"
	"tripplanner/internal/gateway/server"
	"tripplanner/internal/gateway/service/plan"
	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/llm"
	"tripplanner/internal/logging"
	"tripplanner/internal/mcp"
	"tripplanner/internal/research"
	"tripplanner/internal/session"
	"tripplanner/internal/trip"
)

type App struct {
	server  *server.Server
	handler http.Handler
	log     *zap.Logger
	closers []func() error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(context.Background(), cfg, log)
}

// NewWithConfig wires the gateway from an already loaded config.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)
	a := &App{log: log}

	// Dependencies
	client, err := NewLLM(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	tools := mcp.NewRegistry()
	mcp.RegisterDefaultTools(tools, mcp.Host{
		Search: research.NewSearcher(log.Named("search")),
		Fetch:  research.NewFetcher(log.Named("fetch")),
	})
	planner := trip.NewPlanner(client, tools, log.Named("crew"))
	planner.Verbose = cfg.LogLevel == "debug"

	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, stores.close)

	pages, err := ui.NewRenderer()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	sessions := session.NewStore(cfg.Session.MaxSize, cfg.Session.TTL)
	h := handler.New(planner, sessions, plan.New(stores.plans, log.Named("plans")), pages, log.Named("http"))

	// Routing & Server
	a.handler = server.NewMux(h, log.Named("access"))
	a.server = server.New(cfg.Port, a.handler, log)
	return a, nil
}

// NewLLM builds the model client with retry, rate limiting, logging and
// hooks applied. LLM_FAKE selects the offline client.
func NewLLM(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.LLMClient, error) {
	var base llm.LLMClient
	if cfg.LLM.Fake {
		log.Warn("using the offline fake LLM client")
		base = llm.NewFakeClient()
	} else {
		g, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		base = g
	}
	return llm.Wrap(base,
		llm.WithHooks(),
		llm.WithLogging(log.Named("llm")),
		llm.Retry(cfg.LLM.Retries, 2*time.Second),
		llm.RateLimitFromEnv("LLM", "GEMINI"),
	), nil
}

func (a *App) Logger() *zap.Logger { return a.log }

// Handler exposes the routed handler for in-process use.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the LLM client and the plan store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := a.log.Sync(); err != nil {
		a.log.Debug("log sync failed", zap.Error(err))
	}
	return errors.Join(errs...)
}
