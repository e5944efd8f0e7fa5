package mcp

import (
	"log/slog"

	"github.com/ludo-technologies/variscan/app"
	"github.com/ludo-technologies/variscan/internal/config"
	"github.com/ludo-technologies/variscan/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	config     *config.Config
	configPath string
	logger     *slog.Logger
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config, configPath string, logger *slog.Logger) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dependencies{
		config:     cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildDiffUseCase assembles a fresh DiffUseCase. Tool calls never report
// progress since stdout carries the protocol.
func (d *Dependencies) BuildDiffUseCase() (*app.DiffUseCase, error) {
	return app.NewDiffUseCaseBuilder().
		WithService(service.NewDiffService(nil, d.logger)).
		WithFormatter(service.NewDiffFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(nil)).
		Build()
}
