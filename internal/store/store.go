// Package store provides the key-value backends launchdeck persists into.
//
// Every backend implements Store. Values are opaque bytes; callers own the
// encoding. Writes are synchronous: once Set returns, a subsequent Get (in
// this process or a restarted one) observes the value. Concurrent writers
// are not reconciled, the last write wins.
//
// Backends:
//
//	memory  in-process map, used by tests and --store memory
//	file    one JSON document per key under a directory, watchable
//	sqlite  single kv table (modernc.org/sqlite, no cgo)
//	redis   keys under a "launchdeck:" prefix
package store

import (
	"context"
	"errors"
	"fmt"

	"launchdeck/internal/config"
	"launchdeck/internal/logging"

	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is the key-value contract shared by all backends.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set persists value under key before returning.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Watcher is implemented by backends that can report writes made by other
// processes.
type Watcher interface {
	// Watch calls fn each time key is rewritten by someone other than this
	// store. It returns once the watch is armed; the watch ends when ctx is
	// cancelled or the store is closed.
	Watch(ctx context.Context, key string, fn func()) error
}

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Store, error) {
	log := logger.Get(logging.CategoryStore)
	backend := cfg.Storage.Backend
	log.Debug("opening store", zap.String("backend", backend))

	switch backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile, "":
		return NewFileStore(cfg.StoragePath(), log)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.StoragePath(), log)
	case config.BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Address:  cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
