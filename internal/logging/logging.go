// Package logging builds named, leveled loggers with a colorized console
// sink and an optional size-rotating file sink. Loggers are owned by an
// explicit Registry so reconfiguring a name atomically replaces its sinks
// instead of accumulating them.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/graphvcs/graphvcs/internal/config"
)

const (
	defaultFileLevel = "DEBUG"
	defaultMaxSizeMB = 5
	defaultBackups   = 5
)

var (
	// ErrUnknownLevel is returned when a log level name is not recognised.
	ErrUnknownLevel = errors.New("unknown log level name")
)

// ParseLevel maps a level name (DEBUG, INFO, WARNING, ERROR, CRITICAL and
// the usual aliases, case-insensitive) to its zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch normalizeLevelName(name) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO":
		return zapcore.InfoLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// Registry owns every named logger in the process. All (re)configuration
// goes through its mutex, so concurrent Setup calls for the same name cannot
// interleave a clear with an attach.
type Registry struct {
	settings *config.Settings

	mu      sync.Mutex
	handles map[string]*handle

	console zapcore.WriteSyncer
	color   bool
}

type handle struct {
	logger  *zap.Logger
	closers []io.Closer
}

// RegistryOption configures the behaviour of NewRegistry.
type RegistryOption func(*Registry)

// WithConsoleWriter redirects console output, primarily for tests.
func WithConsoleWriter(w zapcore.WriteSyncer) RegistryOption {
	return func(r *Registry) {
		r.console = w
	}
}

// WithColor controls ANSI coloring of console output.
func WithColor(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.color = enabled
	}
}

// NewRegistry creates a logger registry bound to the resolved settings.
func NewRegistry(settings *config.Settings, opts ...RegistryOption) *Registry {
	r := &Registry{
		settings: settings,
		handles:  make(map[string]*handle),
		console:  zapcore.Lock(os.Stdout),
		color:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type setupConfig struct {
	consoleLevel string
	file         string
	fileLevel    string
	maxSizeMB    int
	backups      int
}

// Option configures a single Setup call.
type Option func(*setupConfig)

// WithConsoleLevel overrides the console sink's minimum level. The default
// is the active profile's configured level.
func WithConsoleLevel(level string) Option {
	return func(cfg *setupConfig) {
		cfg.consoleLevel = level
	}
}

// WithFile attaches a rotating file sink at path. Without this option file
// logging is skipped entirely.
func WithFile(path string) Option {
	return func(cfg *setupConfig) {
		cfg.file = path
	}
}

// WithFileLevel overrides the file sink's minimum level (default DEBUG).
func WithFileLevel(level string) Option {
	return func(cfg *setupConfig) {
		cfg.fileLevel = level
	}
}

// WithRotation overrides the rotation thresholds: the file rotates once it
// exceeds maxSizeMB megabytes and up to backups rotated files are retained.
func WithRotation(maxSizeMB, backups int) Option {
	return func(cfg *setupConfig) {
		cfg.maxSizeMB = maxSizeMB
		cfg.backups = backups
	}
}

// Setup obtains or reconfigures the named logger. Re-invoking with a name
// that already exists replaces its sinks (closing the old rotating file)
// rather than stacking new ones on top. The returned logger never feeds a
// parent or global logger.
func (r *Registry) Setup(name string, opts ...Option) (*zap.Logger, error) {
	cfg := setupConfig{
		consoleLevel: r.settings.LogLevel,
		fileLevel:    defaultFileLevel,
		maxSizeMB:    defaultMaxSizeMB,
		backups:      defaultBackups,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	consoleLevel, err := ParseLevel(cfg.consoleLevel)
	if err != nil {
		return nil, err
	}
	fileLevel, err := ParseLevel(cfg.fileLevel)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		newLineCore(r.console, consoleLevel, r.settings.LogFormat, r.color),
	}
	var closers []io.Closer

	if cfg.file != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.file), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rotating := &lumberjack.Logger{
			Filename:   cfg.file,
			MaxSize:    cfg.maxSizeMB,
			MaxBackups: cfg.backups,
		}
		cores = append(cores, newLineCore(zapcore.AddSync(rotating), fileLevel, r.settings.LogFormat, false))
		closers = append(closers, rotating)
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.handles[name]; ok {
		_ = closeAll(old.closers)
	}
	r.handles[name] = &handle{logger: logger, closers: closers}

	return logger, nil
}

// ForRepository derives a logger scoped to the repository at repoPath. The
// logger is named <AppName>.<folder base name> so hierarchical filters can
// target one repository, and its file sink lives under the repository's own
// logs directory. Two repositories sharing a folder base name share the
// logger name and therefore the log stream.
func (r *Registry) ForRepository(repoPath string) (*zap.Logger, error) {
	name := r.settings.AppName + "." + filepath.Base(filepath.Clean(repoPath))
	file := filepath.Join(repoPath, r.settings.RepoDirName, "logs", r.settings.AppName+".log")
	return r.Setup(name, WithFile(file))
}

// Get returns the logger registered under name, if any.
func (r *Registry) Get(name string) (*zap.Logger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[name]
	if !ok {
		return nil, false
	}
	return h.logger, true
}

// Close flushes and closes every registered sink. Intended for process
// shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, h := range r.handles {
		_ = h.logger.Sync()
		if err := closeAll(h.closers); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.handles = make(map[string]*handle)
	return firstErr
}

func closeAll(closers []io.Closer) error {
	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
