package migration

import (
	"github.com/masarmall/leasing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBMigrate {
			log.Info("database migrations skipped")
			return nil
		}
		if err := Run(conn, cfg.DBType); err != nil {
			return err
		}
		log.Info("database migrations applied", zap.String("db_type", cfg.DBType))
		return nil
	}),
)
