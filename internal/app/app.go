// Package app wires launchdeck's components together. An App is built once
// at startup, shared by the CLI commands and the interactive table, and
// closed at exit.
package app

import (
	"context"
	"fmt"
	"time"

	"launchdeck/internal/config"
	"launchdeck/internal/favorites"
	"launchdeck/internal/launches"
	"launchdeck/internal/logging"
	"launchdeck/internal/store"

	"go.uber.org/zap"
)

// Fetcher runs a launch query. *launches.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req launches.Request) launches.Result
}

// App is a fully initialized launchdeck instance.
type App struct {
	Config    *config.Config
	Logger    *logging.Logger
	Store     store.Store
	Favorites *favorites.Store
	Client    Fetcher
	Location  *time.Location
}

// New opens the configured store and builds the query client.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	log := logger.Get(logging.CategoryBoot)

	kv, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	var cache *launches.Cache
	if cfg.Query.Cache {
		cache = launches.NewCache(cfg.GetCacheTTL(), kv, logger.Get(logging.CategoryQuery))
	}
	client := launches.NewClient(launches.Options{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.GetQueryTimeout(),
		Cache:    cache,
	}, logger)

	log.Debug("launchdeck ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("cache", cache != nil))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     kv,
		Favorites: favorites.NewStore(kv, logger.Get(logging.CategoryStore)),
		Client:    client,
		Location:  cfg.Location(),
	}, nil
}

// NewSession loads the favorites map and returns a session in the
// configured mode, ready for its first fetch.
func (a *App) NewSession(ctx context.Context) (*Session, error) {
	kind := launches.Past
	if a.Config.Table.Mode == config.ModeUpcoming {
		kind = launches.Upcoming
	}
	s := newSession(a.Favorites, a.Logger.Get(logging.CategoryReconcile), kind, a.Config.Query.Limit, a.Config.Table.PageSize)
	if err := s.ReloadFavorites(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// WatchFavorites calls fn when another process rewrites the favorites
// map. It reports false when the backend cannot watch.
func (a *App) WatchFavorites(ctx context.Context, fn func()) (bool, error) {
	return a.Favorites.Watch(ctx, fn)
}

// Close releases the store. Safe to call on a nil App and more than once.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	if err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}
