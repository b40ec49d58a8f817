package repository

import (
	"context"
	"fmt"
	"log/slog"

	"studydash/internal/config"
	"studydash/internal/domain/repositories"
	"studydash/internal/repository/memory"
	"studydash/internal/repository/postgres"
	"studydash/internal/repository/sqlite"
)

// Backend is an opened key-value store with its transaction manager
type Backend struct {
	Name  string
	KV    repositories.KVStore
	Tx    repositories.TransactionManager
	close func()
}

// Close releases the underlying connection or pool
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// OpenBackend opens the store selected by STORE_BACKEND and creates its
// table if needed. Keys of different environments are kept apart by the
// table prefix.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreBackend {
	case "memory":
		kv := memory.NewKVStore()
		logger.Warn("using in-memory store, nothing will be persisted")
		return &Backend{Name: "memory", KV: kv, Tx: kv}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		kv, err := sqlite.NewKVStore(ctx, db, cfg.KeyPrefix, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.SQLitePath, "table_prefix", cfg.KeyPrefix)
		return &Backend{
			Name:  "sqlite",
			KV:    kv,
			Tx:    sqlite.NewTransactionManager(db, logger),
			close: func() { db.Close() },
		}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create connection pool: %w", err)
		}
		kv := postgres.NewKVStore(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.KeyPrefix),
			Logger: logger,
		})
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "table_prefix", cfg.KeyPrefix)
		return &Backend{
			Name:  "postgres",
			KV:    kv,
			Tx:    postgres.NewTransactionManager(pool, logger),
			close: pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want sqlite, postgres or memory)", cfg.StoreBackend)
	}
}
