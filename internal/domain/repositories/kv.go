package repositories

import "context"

// KVStore is the persistence primitive behind every backend: a flat map of
// string keys to JSON-encoded string values.
type KVStore interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Put creates or overwrites the value for key
	Put(ctx context.Context, key, value string) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists stored keys with the given prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)
}
