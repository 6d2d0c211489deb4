package main

import (
	"context"
	"fmt"

	"github.com/hostbounce/hostbounce/pkg/config"
	"github.com/hostbounce/hostbounce/pkg/store"
	redisstore "github.com/hostbounce/hostbounce/pkg/store/redis"
	sqlitestore "github.com/hostbounce/hostbounce/pkg/store/sqlite"
)

// openStore builds the configured durable store backend.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return sqlitestore.New(cfg.DBPath, cfg.Table)
	case "redis":
		return redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Table,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
