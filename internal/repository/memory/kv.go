package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"studydash/internal/domain/repositories"
)

// KVStore keeps everything in a map. Used in tests and with STORE_BACKEND=memory.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]string

	txMu sync.Mutex
}

// NewKVStore creates an empty store
func NewKVStore() *KVStore {
	return &KVStore{data: map[string]string{}}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *KVStore) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(ctx, key)
	s.data[key] = value
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.record(ctx, k)
		delete(s.data, k)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := []string{}
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// undoLog holds the value each key had before a transaction first wrote it.
// nil means the key did not exist.
type undoLog map[string]*string

type undoLogKey struct{}

// record saves the current value of key in the transaction's undo log, if
// ctx carries one. Callers hold s.mu.
func (s *KVStore) record(ctx context.Context, key string) {
	log, ok := ctx.Value(undoLogKey{}).(undoLog)
	if !ok {
		return
	}
	if _, seen := log[key]; seen {
		return
	}
	if v, exists := s.data[key]; exists {
		log[key] = &v
	} else {
		log[key] = nil
	}
}

// ExecTx runs fn against the live map and, if fn fails, restores the keys
// written through fn's context. Writes made outside the transaction survive
// unless they touched the same keys. There is no isolation: other callers see
// uncommitted writes. Transactions are serialised with each other and nested
// calls join the outer one.
func (s *KVStore) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if _, nested := ctx.Value(undoLogKey{}).(undoLog); nested {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := undoLog{}
	if err := fn(context.WithValue(ctx, undoLogKey{}, log)); err != nil {
		s.mu.Lock()
		for k, prev := range log {
			if prev == nil {
				delete(s.data, k)
			} else {
				s.data[k] = *prev
			}
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

var (
	_ repositories.KVStore            = (*KVStore)(nil)
	_ repositories.TransactionManager = (*KVStore)(nil)
)
