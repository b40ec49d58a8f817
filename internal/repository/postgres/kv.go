package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"studydash/internal/domain/repositories"
)

// PostgresKVStore implements repositories.KVStore on a prefixed table
type PostgresKVStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewKVStore creates a PostgresKVStore
func NewKVStore(config *RepositoryConfig) *PostgresKVStore {
	return &PostgresKVStore{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// EnsureSchema creates the entries table if it does not exist
func (r *PostgresKVStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, r.tables.KVEntries)

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", r.tables.KVEntries, err)
	}
	return nil
}

// Get retrieves the value stored under key
func (r *PostgresKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, r.tables.KVEntries)

	var value string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if IsPgNoRowsError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put creates or overwrites the value under key
func (r *PostgresKVStore) Put(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, r.tables.KVEntries)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys
func (r *PostgresKVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, r.tables.KVEntries)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, keys)
	if err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	r.logger.Debug("deleted kv entries", "requested", len(keys), "deleted", tag.RowsAffected())
	return nil
}

// Keys lists keys starting with prefix
func (r *PostgresKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT key FROM %s
		WHERE left(key, $1) = $2
		ORDER BY key
	`, r.tables.KVEntries)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

var _ repositories.KVStore = (*PostgresKVStore)(nil)
