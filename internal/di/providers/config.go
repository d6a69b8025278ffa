// Package providers contains dependency injection providers for the Chaptermatic server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/logger"
)

// ProvideConfig provides the application configuration from the process arguments.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Chaptermatic Server",
		"version", ServerVersion,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"inbox_enabled", cfg.Inbox.Enabled,
	)

	return log, nil
}
