package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/clients/redis"
	"github.com/yungbote/sdgraph-backend/internal/data/db"
	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	httpx "github.com/yungbote/sdgraph-backend/internal/http"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
	"github.com/yungbote/sdgraph-backend/internal/platform/neo4jdb"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *httpx.Server

	store        *db.Service
	cache        redis.Cache
	neo4j        *neo4jdb.Client
	otelShutdown func(context.Context) error
}

// New connects every configured backend and wires the service graph.
// Redis and Neo4j are optional and skipped when unconfigured.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg.LogSafe(log)

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel())
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	a.store, err = db.Open(cfg.DB(), log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := a.store.AutoMigrateAll(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	a.DB = a.store.DB()

	a.cache, err = redis.NewCache(log, cfg.Redis())
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init redis: %w", err)
	}
	a.neo4j, err = neo4jdb.New(log, cfg.Neo4j())
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init neo4j: %w", err)
	}

	registry := ingest.Default()
	a.Repos = wireRepos(a.DB, log, registry)
	a.Services, err = wireServices(a.DB, log, cfg, registry, a.Repos, a.cache, a.neo4j, a.Metrics)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	handlers := wireHandlers(log, a.DB, a.Services)
	a.Server = httpx.NewServer(log, wireRouter(log, cfg, a.Metrics, handlers))
	return a, nil
}

// Serve blocks until ctx is done. A separate metrics listener runs when
// METRICS_ADDR is set; /metrics is always mounted on the API router.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Run(ctx, a.Cfg.HTTPAddr) })
	g.Go(func() error { return a.Metrics.Serve(ctx, a.Log, a.Cfg.MetricsAddr) })
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.neo4j != nil {
		if err := a.neo4j.Close(ctx); err != nil {
			a.Log.Warn("neo4j close failed", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate opens the store and creates or updates every table.
func Migrate(cfg Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	store, err := db.Open(cfg.DB(), log)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.AutoMigrateAll()
}
