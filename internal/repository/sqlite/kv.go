package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studydash/internal/domain/repositories"
)

// KVStore stores entries in a single prefixed table
type KVStore struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewKVStore creates the store and its table if missing.
// tablePrefix separates environments sharing one database file (dev_, test_, prod_).
func NewKVStore(ctx context.Context, db *sql.DB, tablePrefix string, logger *slog.Logger) (*KVStore, error) {
	s := &KVStore{db: db, table: tablePrefix + "kv_entries", logger: logger}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`, s.table)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.table, err)
	}
	return s, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table)

	var value string
	err := getExecutor(ctx, s.db).QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Put(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.table)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := getExecutor(ctx, s.db).ExecContext(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := fmt.Sprintf(`DELETE FROM %s WHERE key IN (%s)`, s.table, placeholders)

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	res, err := getExecutor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("deleted kv entries", "requested", len(keys), "deleted", n)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	// substr avoids LIKE wildcards in user-controlled prefixes
	query := fmt.Sprintf(`SELECT key FROM %s WHERE substr(key, 1, ?) = ? ORDER BY key`, s.table)

	rows, err := getExecutor(ctx, s.db).QueryContext(ctx, query, len(prefix), prefix)
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

var _ repositories.KVStore = (*KVStore)(nil)
