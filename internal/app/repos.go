package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type Repos struct {
	Tables     repos.TableRepo
	ImportRuns repos.ImportRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, registry *ingest.Registry) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tables:     repos.NewTableRepo(db, log, registry),
		ImportRuns: repos.NewImportRunRepo(db, log),
	}
}
