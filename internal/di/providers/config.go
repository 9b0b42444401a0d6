// Package providers contains dependency injection providers for the mediatray bridge.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/logger"
	"github.com/listenupapp/mediatray/internal/validation"
)

// Args holds the command-line arguments the container was built with.
type Args []string

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args := do.MustInvoke[Args](i)
	return config.LoadConfig(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting mediatray bridge",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"plugins", cfg.Plugins.Enabled,
	)

	return log, nil
}

// ProvideValidator provides the shared request validator.
func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
