package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vk/buildgridgo/internal/artifact"
	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/dispatch"
	"github.com/vk/buildgridgo/internal/extract"
	"github.com/vk/buildgridgo/internal/manifest"
	"github.com/vk/buildgridgo/internal/publish"
)

// App encapsulates the orchestrator's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *manifest.Model
	runner dispatch.Runner
	router *artifact.Router
}

// Option overrides a collaborator, primarily for tests.
type Option func(*App)

// WithRunner replaces the external build runner.
func WithRunner(runner dispatch.Runner) Option {
	return func(a *App) { a.runner = runner }
}

// WithRouter replaces the artifact router wholesale.
func WithRouter(router *artifact.Router) Option {
	return func(a *App) { a.router = router }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded,
// validated gridfile model.
//
// A failure to load or validate configuration is a fatal startup error and
// panics; the entrypoint recovers and turns it into a clean exit message.
func NewApp(outW io.Writer, config *Config, opts ...Option) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := manifest.Load(ctx, config.GridPath)
	if err != nil {
		panic(fmt.Errorf("failed to load gridfile: %w", err))
	}
	logger.Debug("Gridfile loaded and validated.")

	app := &App{
		outW:   outW,
		logger: logger,
		config: config,
		model:  model,
	}
	app.runner = &dispatch.CLIRunner{
		Order:   model.Registry.Order(),
		Command: config.BuildCommand,
	}
	app.router = newRouter(config, model)

	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Model returns the loaded gridfile model. This is primarily for testing.
func (a *App) Model() *manifest.Model {
	return a.model
}

// newRouter assembles the default artifact router: container-CLI extraction,
// and either directory-backed or HTTP-backed publication channels depending
// on configuration.
func newRouter(config *Config, model *manifest.Model) *artifact.Router {
	router := &artifact.Router{
		Staging:       filepath.Join(config.ArtifactDir, "staging"),
		Images:        &extract.CLI{},
		Files:         extract.LocalFiles{},
		QualifierDims: model.Settings.QualifierDims,
	}

	if config.StoreURL != "" {
		store := &publish.HTTP{BaseURL: config.StoreURL}
		router.Store = store
		router.Pages = store
		return router
	}

	router.Store = &publish.Dir{Root: filepath.Join(config.ArtifactDir, "store")}
	router.Pages = &publish.Dir{Root: filepath.Join(config.ArtifactDir, "site")}
	return router
}
