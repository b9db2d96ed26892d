package app

import (
	httpx "github.com/yungbote/sdgraph-backend/internal/http"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers) httpx.RouterConfig {
	return httpx.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   cfg.OtelServiceName,
		CORSOrigins:   cfg.CORSOrigins,
		StaticDir:     cfg.StaticDir,
		HealthHandler: h.Health,
		GraphHandler:  h.Graph,
		ImportHandler: h.Import,
	}
}
