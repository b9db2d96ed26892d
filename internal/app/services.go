package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/clients/redis"
	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
	"github.com/yungbote/sdgraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/sdgraph-backend/internal/services"
)

type Services struct {
	Engine  *ingest.Engine
	Graph   services.GraphService
	Imports services.ImportService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	registry *ingest.Registry,
	reposet Repos,
	remote redis.Cache,
	neo4j *neo4jdb.Client,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")
	cache, err := services.NewGraphCache(log, cfg.GraphCacheSize, remote, cfg.GraphCacheTTL, metrics)
	if err != nil {
		return Services{}, fmt.Errorf("init graph cache: %w", err)
	}
	var opts []ingest.Option
	if metrics != nil {
		opts = append(opts, ingest.WithObserver(metrics))
	}
	engine := ingest.NewEngine(db, log, registry, opts...)
	graphSvc := services.NewGraphService(db, log, registry, reposet.Tables, cache)
	return Services{
		Engine:  engine,
		Graph:   graphSvc,
		Imports: services.NewImportService(log, engine, reposet.ImportRuns, graphSvc, neo4j, metrics),
	}, nil
}
