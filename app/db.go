package app

import (
	"context"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewDatabase(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info("Database started")

	log.Info("Starting migrations")
	err = db.AutoMigrate(
		&models.Release{},
		&models.Subscriber{},
		&models.Subscription{},
		&models.FiredReminder{},
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}
