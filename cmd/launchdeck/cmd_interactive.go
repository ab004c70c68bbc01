package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"launchdeck/cmd/launchdeck/ui"
	"launchdeck/internal/app"
	"launchdeck/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runInteractive starts the launch table. The App lives for the whole
// program; favorites written by another launchdeck process are picked up
// through the store watcher when the backend supports one.
func runInteractive(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	log := logger.Get(logging.CategoryUI)

	session, err := a.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	var changed <-chan struct{}
	ch := make(chan struct{}, 1)
	watching, err := a.WatchFavorites(ctx, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	if err != nil {
		log.Warn("favorites watch unavailable", zap.Error(err))
	}
	if watching {
		changed = ch
	}

	styles := ui.DefaultStyles()
	if cfg.Table.DarkMode {
		styles = ui.NewStyles(ui.DarkTheme())
	}

	page := ui.NewLaunchesPage(ctx, session, a.Client, ui.PageOptions{
		Styles:           styles,
		Location:         a.Location,
		Logger:           log,
		FavoritesChanged: changed,
	})

	p := tea.NewProgram(page, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive table failed: %w", err)
	}
	log.Debug("interactive table closed", zap.Bool("watching", watching))
	return nil
}
