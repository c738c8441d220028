package main

import (
	"context"
	"fmt"
	"time"

	"erp-assistant/internal/assistant"
	"erp-assistant/internal/audit"
	"erp-assistant/internal/common/cache"
	"erp-assistant/internal/common/config"
	"erp-assistant/internal/common/database"
	"erp-assistant/internal/common/llm"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/observability"
	"erp-assistant/internal/queries"
	"erp-assistant/internal/store"
	answerquestion "erp-assistant/internal/workers/ai-conversation/answer-question"
	checkcontextbudget "erp-assistant/internal/workers/ai-conversation/check-context-budget"
	llmsynthesis "erp-assistant/internal/workers/ai-conversation/llm-synthesis"
	parseuserintent "erp-assistant/internal/workers/ai-conversation/parse-user-intent"
	queryinternaldata "erp-assistant/internal/workers/ai-conversation/query-internal-data"
	"erp-assistant/pkg/registry"
)

const retryDelay = 2 * time.Second

// app holds every long-lived dependency of a command.
type app struct {
	cfg *config.Config
	log logger.Logger

	sql   *database.SQLClient
	store *store.Store
	redis *database.RedisClient
	es    *database.ElasticsearchClient
	obs   *observability.Observability

	registry     *registry.Registry
	dispatcher   *queryinternaldata.Handler
	assistant    *assistant.Assistant
	interactions *audit.ElasticsearchRecorder
}

// openStore connects to the record store and creates missing tables.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger, attempts int) (*database.SQLClient, *store.Store, error) {
	var client *database.SQLClient
	err := retryWithBackoff(ctx, func() error {
		c, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return err
		}
		client = c
		return nil
	}, attempts, retryDelay, log, "Database connection")
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(client.DB, client.Driver)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("record store ready", map[string]interface{}{"driver": client.Driver})
	return client, st, nil
}

// newApp connects the configured backends and assembles the assistant.
// Redis and Elasticsearch are optional.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger, attempts int) (*app, error) {
	a := &app{cfg: cfg, log: log}

	var err error
	a.sql, a.store, err = openStore(ctx, cfg, log, attempts)
	if err != nil {
		return nil, err
	}

	var resultCache queryinternaldata.ResultCache
	if cfg.Database.Redis.Enabled() {
		a.redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(ctx, func() error { return a.redis.Ping(ctx) }, attempts, retryDelay, log, "Redis connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		resultCache = cache.NewRedisCache(a.redis.Client, queryinternaldata.CachePrefix, config.GetDuration(cfg.Assistant.CacheTTL))
		log.Info("dispatch cache enabled", map[string]interface{}{"address": cfg.Database.Redis.Address})
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		a.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = retryWithBackoff(ctx, func() error { return a.es.Ping(ctx) }, attempts, retryDelay, log, "Elasticsearch connection")
		}
		if err != nil {
			a.Close()
			return nil, err
		}
		a.interactions = audit.NewElasticsearchRecorder(a.es.Client, cfg.Audit.Index)
		recorder = a.interactions
		log.Info("interaction audit enabled", map[string]interface{}{"index": cfg.Audit.Index})
	}

	a.obs, err = observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("OpenTelemetry metrics disabled", map[string]interface{}{"error": err})
	}

	generator, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	systems, err := a.store.AllSystemInfo(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load system catalogue: %w", err)
	}
	if len(systems) == 0 {
		log.Warn("no SystemInfo found, add some with `erp-assistant system-info add` or POST /api/system_info/", nil)
	}
	a.registry = registry.Build(systems, queries.NewCatalog(a.store, cfg.Assistant.QueryLimit, log), log)

	stages := newStageConfigs(cfg)
	a.dispatcher = queryinternaldata.NewHandler(stages.dispatch, resultCache, log)
	a.assistant = assistant.New(assistant.Deps{
		Registry:      a.registry,
		Classifier:    parseuserintent.NewHandler(stages.intent, generator, log),
		Dispatcher:    a.dispatcher,
		Guard:         checkcontextbudget.NewGuard(stages.guard, log),
		Summarizer:    llmsynthesis.NewHandler(stages.summary, generator, log),
		Recorder:      recorder,
		Observability: a.obs,
	}, log)
	return a, nil
}

// stageConfigs holds the per-stage settings of the assistant pipeline.
type stageConfigs struct {
	intent   *parseuserintent.Config
	dispatch *queryinternaldata.Config
	guard    *checkcontextbudget.Config
	summary  *llmsynthesis.Config
	worker   *answerquestion.Config
}

// newStageConfigs starts from each stage's defaults and applies the values
// set in cfg.
func newStageConfigs(cfg *config.Config) stageConfigs {
	s := stageConfigs{
		intent:   parseuserintent.LoadConfig(),
		dispatch: queryinternaldata.LoadConfig(),
		guard:    checkcontextbudget.LoadConfig(),
		summary:  llmsynthesis.LoadConfig(),
		worker:   answerquestion.LoadConfig(),
	}
	if timeout := config.GetDuration(cfg.LLM.Timeout); timeout > 0 {
		s.intent.Timeout = timeout
		s.summary.Timeout = timeout
	}
	if timeout := config.GetDuration(cfg.Assistant.QueryTimeout); timeout > 0 {
		s.dispatch.QueryTimeout = timeout
	}
	if cfg.Assistant.ContextBudget > 0 {
		s.guard.Budget = cfg.Assistant.ContextBudget
	}
	if timeout := config.GetDuration(cfg.Camunda.Timeout); timeout > 0 {
		s.worker.Timeout = timeout
	}
	return s
}

// ready pings every connected backend.
func (a *app) ready(ctx context.Context) error {
	if err := a.sql.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			return err
		}
	}
	if a.es != nil {
		if err := a.es.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) Close() {
	if a.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.obs.Shutdown(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.sql != nil {
		_ = a.sql.Close()
	}
}
