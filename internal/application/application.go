package application

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/graphvcs/graphvcs/internal/config"
	"github.com/graphvcs/graphvcs/internal/logging"
	"github.com/graphvcs/graphvcs/internal/repo"
)

// App encapsulates the resolved settings, the logger registry and the root
// application logger.
type App struct {
	settings *config.Settings
	registry *logging.Registry
	logger   *zap.Logger
}

type options struct {
	logFile      string
	registryOpts []logging.RegistryOption
}

// Option configures the behaviour of New.
type Option func(*options)

// WithLogFile attaches a rotating file sink to the root application logger.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithConsoleColor controls ANSI coloring of console output.
func WithConsoleColor(enabled bool) Option {
	return func(o *options) {
		o.registryOpts = append(o.registryOpts, logging.WithColor(enabled))
	}
}

// WithConsoleWriter redirects console output (primarily for tests).
func WithConsoleWriter(w zapcore.WriteSyncer) Option {
	return func(o *options) {
		o.registryOpts = append(o.registryOpts, logging.WithConsoleWriter(w))
	}
}

// New resolves configuration and initializes the logging registry and the
// root application logger. Configuration errors surface here, at startup.
func New(overrides *config.Overrides, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	settings, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	registry := logging.NewRegistry(settings, o.registryOpts...)

	var setupOpts []logging.Option
	if o.logFile != "" {
		setupOpts = append(setupOpts, logging.WithFile(o.logFile))
	}

	logger, err := registry.Setup(settings.AppName, setupOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("configuration resolved",
		zap.String("environment", settings.Environment),
		zap.String("base_dir", settings.BaseDir),
		zap.String("log_level", settings.LogLevel),
	)

	return &App{
		settings: settings,
		registry: registry,
		logger:   logger,
	}, nil
}

// Settings returns the immutable resolved configuration.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Registry returns the logger registry owned by the application.
func (a *App) Registry() *logging.Registry {
	return a.registry
}

// Logger returns the root application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// InitRepository creates the repository layout at path (the configured base
// directory when path is empty) and reports whether it was newly created.
func (a *App) InitRepository(path string) (*repo.Repository, bool, error) {
	return repo.Init(a.settings, a.registry, path)
}

// OpenRepository attaches to an existing repository at path.
func (a *App) OpenRepository(path string) (*repo.Repository, error) {
	return repo.Open(a.settings, a.registry, path)
}

// Close flushes and releases every logging sink.
func (a *App) Close() error {
	return a.registry.Close()
}
