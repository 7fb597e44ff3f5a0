package app

import (
	"fmt"

	"github.com/jaennil/guide_helper/backend/seeder/internal/repository/progress"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/config"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
)

// NewProgressStore opens the progress store selected by STORE_DRIVER.
func NewProgressStore(cfg *config.Config, l logger.Logger) (progress.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory, "":
		return progress.NewMapStore(), nil
	case config.StoreSQLite:
		store, err := progress.NewSQLiteStore(cfg.SQLite.Path, l)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite progress store: %w", err)
		}
		return store, nil
	case config.StoreRedis:
		store, err := progress.NewRedisStore(progress.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreValkey:
		store, err := progress.NewValkeyStore(cfg.Valkey.Addr, cfg.Valkey.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
