// Package commands holds the CLI subcommands of jiradigest.
package commands

import (
	"fmt"
	"strings"

	"jiradigest/internal/config"
	logx "jiradigest/pkg/logx"
)

// Flags are the global flags shared by every command.
type Flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	LogFormat  string

	// Lookup reads the environment; nil means the process environment.
	Lookup config.LookupFunc
}

func (f *Flags) lookup() config.LookupFunc {
	if f.Lookup != nil {
		return f.Lookup
	}
	return config.OSLookup
}

// applyLogging lets explicit flags win over the config's logging section.
func (f *Flags) applyLogging(cfg *config.Config) {
	if s := strings.TrimSpace(f.LogLevel); s != "" {
		cfg.Logging.Level = s
	}
	if s := strings.TrimSpace(f.LogFile); s != "" {
		cfg.Logging.File = s
	}
	if s := strings.TrimSpace(f.LogFormat); s != "" {
		cfg.Logging.Format = s
	}
}

// load builds and validates the config for a one-shot command.
func (f *Flags) load(delivering bool) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath, f.lookup())
	if err != nil {
		return nil, err
	}
	f.applyLogging(cfg)
	if delivering {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateDryRun()
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logx.Logger, func(), error) {
	log, closer, err := logx.New(logx.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return logx.Logger{}, closer, fmt.Errorf("setup logger: %w", err)
	}
	return log, closer, nil
}
