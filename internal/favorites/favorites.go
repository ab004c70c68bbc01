// Package favorites persists the launch identifier -> starred mapping.
//
// The whole map is stored as one JSON object under the "dictionary" key of a
// store.Store. Entries are only ever added or flipped, never removed.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"launchdeck/internal/store"

	"go.uber.org/zap"
)

// Key is the persistent slot holding the serialized map.
const Key = "dictionary"

// Map is identifier -> favorite flag.
type Map map[string]bool

// Clone returns an independent copy. Clone of nil is an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IDs returns the identifiers in sorted order.
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Store reads and writes the favorites map.
type Store struct {
	mu     sync.Mutex
	kv     store.Store
	logger *zap.Logger
}

// NewStore wraps a key-value backend.
func NewStore(kv store.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// Get returns a copy of the persisted map. A missing slot is an empty map.
func (s *Store) Get(ctx context.Context) (Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Set persists m synchronously, replacing the stored map.
func (s *Store) Set(ctx context.Context, m Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, m)
}

// Toggle flips id and persists the result. Other entries are untouched.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	m[id] = !m[id]
	if err := s.save(ctx, m); err != nil {
		return false, err
	}
	s.logger.Debug("favorite toggled", zap.String("id", id), zap.Bool("favorite", m[id]))
	return m[id], nil
}

// Watch calls fn when another process rewrites the map. It reports false
// when the backend cannot watch.
func (s *Store) Watch(ctx context.Context, fn func()) (bool, error) {
	w, ok := s.kv.(store.Watcher)
	if !ok {
		return false, nil
	}
	if err := w.Watch(ctx, Key, fn); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) load(ctx context.Context) (Map, error) {
	data, found, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	m := make(Map)
	if !found || len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse favorites: %w", err)
	}
	if m == nil {
		m = make(Map)
	}
	return m, nil
}

func (s *Store) save(ctx context.Context, m Map) error {
	if m == nil {
		m = Map{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	s.logger.Debug("favorites saved", zap.Int("entries", len(m)))
	return nil
}
