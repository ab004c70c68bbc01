package config

import "launchdeck/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`       // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"` // json encoder instead of console
	File       string          `yaml:"file"`        // interactive-mode log file
	DebugMode  bool            `yaml:"debug_mode"`  // Master toggle for interactive file logging
	Categories map[string]bool `yaml:"categories"`  // Per-category toggles
}

// LoggingOptions converts the config into logging options. toFile selects the
// interactive file sink.
func (c *Config) LoggingOptions(verbose, toFile bool) logging.Options {
	opts := logging.Options{
		Level:      c.Logging.Level,
		Verbose:    verbose,
		DebugMode:  c.Logging.DebugMode,
		JSONFormat: c.Logging.JSONFormat,
		Categories: c.Logging.Categories,
	}
	if toFile {
		opts.File = c.LogFile()
	}
	return opts
}
