package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/http/handlers"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Graph  *handlers.GraphHandler
	Import *handlers.ImportHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(db),
		Graph:  handlers.NewGraphHandler(services.Graph),
		Import: handlers.NewImportHandler(services.Imports),
	}
}
