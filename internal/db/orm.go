package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DelphiTri/website/internal/config"
	"github.com/DelphiTri/website/internal/logging"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

// InitORM opens the GORM handle used by the ledgers. TranslateError is on so
// unique index violations surface as gorm.ErrDuplicatedKey on both drivers.
func InitORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logging.Info("Schema migrated", "driver", cfg.Driver)
	}

	return db, nil
}

// Migrate creates or updates every ledger table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormModels.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
