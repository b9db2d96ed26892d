package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/data/ingest"
	"github.com/yungbote/sdgraph-backend/internal/data/repos/imports"
	"github.com/yungbote/sdgraph-backend/internal/data/repos/kg"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type TableRepo = kg.TableRepo
type ImportRunRepo = imports.ImportRunRepo

func NewTableRepo(db *gorm.DB, baseLog *logger.Logger, registry *ingest.Registry) TableRepo {
	return kg.NewTableRepo(db, baseLog, registry)
}

func NewImportRunRepo(db *gorm.DB, baseLog *logger.Logger) ImportRunRepo {
	return imports.NewImportRunRepo(db, baseLog)
}
