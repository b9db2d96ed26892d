package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sdgraph-backend/internal/domain"
)

// AutoMigrateAll creates every table with its primary keys and foreign key
// constraints. Existing columns are never dropped.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running auto migration")
	return AutoMigrateAll(s.db)
}
