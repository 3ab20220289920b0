package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/internal/agents"
	"github.com/aletheia-intel/aletheia/internal/dataflows"
	"github.com/aletheia-intel/aletheia/internal/graph"
	"github.com/aletheia-intel/aletheia/internal/llm"
	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/internal/metrics"
	"github.com/aletheia-intel/aletheia/internal/server"
)

// app bundles the wired service components. Backing stores are optional:
// when Postgres, Chroma or Redis is unreachable the app still runs with
// reduced persistence.
type app struct {
	cfg *config.Config

	flows        *dataflows.DataFlows
	store        *memory.RelationalStore
	vectors      *memory.VectorMemory
	redisStore   *memory.RedisSessionStore
	sessions     memory.SessionStore
	orchestrator *graph.Orchestrator
	strategist   *agents.Strategist
	metrics      *metrics.Registry
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	quick, err := llm.NewQuickThinkModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deep, err := llm.NewDeepThinkModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		flows:   dataflows.New(cfg),
		metrics: metrics.NewRegistry(),
	}

	if store, err := memory.NewRelationalStore(cfg.PostgresDSN()); err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, running without relational memory")
	} else {
		a.store = store
	}

	embedder := memory.NewOpenAIEmbedder(cfg)
	if vectors, err := memory.NewVectorMemory(ctx, cfg, embedder); err != nil {
		log.Warn().Err(err).Msg("chroma unavailable, running without vector memory")
	} else {
		a.vectors = vectors
	}

	a.sessions = memory.NewInMemorySessionStore()
	if cfg.RedisAddr != "" {
		if redisStore, err := memory.NewRedisSessionStore(ctx, cfg); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory sessions")
		} else {
			a.redisStore = redisStore
			a.sessions = redisStore
		}
	}

	orchestrator, err := graph.New(ctx, cfg, quick, deep, a.flows, a.store, a.vectors)
	if err != nil {
		return nil, err
	}
	a.orchestrator = orchestrator
	a.strategist = agents.NewStrategist(quick, a.sessions, cfg.MemoryWindow, orchestrator.Run)

	orchestrator.SetMetrics(a.metrics)
	dataflows.SetObserver(func(provider string, err error) {
		a.metrics.ProviderRequests.WithLabelValues(provider).Inc()
		if err != nil {
			a.metrics.ProviderErrors.WithLabelValues(provider).Inc()
		}
	})

	return a, nil
}

func (a *app) healthChecks() map[string]server.HealthCheck {
	checks := make(map[string]server.HealthCheck)
	if a.store != nil {
		checks["postgres"] = a.store.Ping
	}
	if a.vectors != nil {
		checks["chroma"] = func(ctx context.Context) error {
			_, err := a.vectors.Stats(ctx)
			return err
		}
	}
	if a.redisStore != nil {
		checks["redis"] = a.redisStore.Ping
	}
	return checks
}

// applyConfig adopts the runtime-tunable settings from a reloaded
// configuration. Clients built at startup keep their original wiring.
func (a *app) applyConfig(next *config.Config) {
	a.orchestrator.SetMaxIterations(next.MaxRecurLimit)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close relational store")
		}
	}
}
