package main

import (
	"fmt"
	"os"
	"time"

	"launchdeck/internal/config"
	"launchdeck/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	endpoint     string
	storeBackend string
	timeout      time.Duration

	// Resolved per invocation in PersistentPreRunE
	cfg    *config.Config
	logger *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "launchdeck",
	Short: "launchdeck - browse SpaceX launches and keep favorites",
	Long: `launchdeck lists past and upcoming SpaceX launches from a GraphQL endpoint
in a sortable, filterable table and remembers the launches you star.

Run without arguments to start the interactive table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		// The interactive table owns the terminal, so its logs go to a file.
		interactive := !cmd.HasParent()
		logger, err = logging.New(cfg.LoggingOptions(verbose, interactive))
		if err != nil {
			return err
		}
		logger.Get(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath),
			zap.String("endpoint", cfg.Endpoint),
			zap.String("backend", cfg.Storage.Backend))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if endpoint != "" {
		c.Endpoint = endpoint
	}
	if storeBackend != "" {
		c.Storage.Backend = storeBackend
	}
	if timeout > 0 {
		c.Query.Timeout = timeout.String()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.launchdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "GraphQL endpoint (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Favorites backend: file, sqlite, redis, memory")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Query timeout (overrides config)")

	rootCmd.AddCommand(listCmd, favoriteCmd, favoritesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
