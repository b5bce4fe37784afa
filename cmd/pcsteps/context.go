package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"pcsteps/internal/config"
	"pcsteps/internal/logging"
	"pcsteps/internal/pipeline"
	"pcsteps/internal/registry"
	"pcsteps/internal/services"
)

// pipelineBuilder constructs a ready pipeline and its release function.
type pipelineBuilder func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func() error, error)

// defaultPipelineBuilder is replaced in tests to avoid real network and
// yt-dlp calls.
var defaultPipelineBuilder pipelineBuilder = pipeline.Build

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	buildPipeline pipelineBuilder
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		buildPipeline: defaultPipelineBuilder,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "invalid configuration", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the configured logger for commands that run pipeline code
// and prunes expired log files.
func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logging.LogFilePath(cfg.Paths.LogDir, time.Now()))
	return logger, nil
}

// openRegistry opens the run registry. A disabled registry yields a nil store
// and no error.
func (c *commandContext) openRegistry() (*registry.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := registry.Open(cfg)
	if errors.Is(err, registry.ErrDisabled) {
		return nil, nil
	}
	return store, err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps an error category to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return 2
	case errors.Is(err, services.ErrContentMismatch):
		return 3
	default:
		return 1
	}
}
