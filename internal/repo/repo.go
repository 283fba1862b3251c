package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/graphvcs/graphvcs/internal/config"
	"github.com/graphvcs/graphvcs/internal/logging"
)

var (
	// ErrNotARepository is returned when a path does not contain (or sit
	// inside) an initialized repository layout.
	ErrNotARepository = errors.New("not inside a graphvcs repository")
)

// Repository represents an initialized on-disk repository layout rooted at
// <base>/<repo dir>/ with objects, refs and logs subdirectories.
type Repository struct {
	settings *config.Settings
	logger   *zap.Logger
	base     string
}

// Base returns the directory that contains the repository directory.
func (r *Repository) Base() string {
	return r.base
}

// Root returns the repository directory itself.
func (r *Repository) Root() string {
	return r.settings.RepoPath(r.base)
}

// ObjectsDir returns the object store directory.
func (r *Repository) ObjectsDir() string {
	return r.settings.ObjectsPath(r.base)
}

// RefsDir returns the refs directory.
func (r *Repository) RefsDir() string {
	return r.settings.RefsPath(r.base)
}

// LogsDir returns the repository-local logs directory.
func (r *Repository) LogsDir() string {
	return filepath.Join(r.Root(), "logs")
}

// Logger returns the repository-scoped logger.
func (r *Repository) Logger() *zap.Logger {
	return r.logger
}

// Exists reports whether base already holds a repository layout. An empty
// base falls back to the configured base directory.
func Exists(settings *config.Settings, base string) bool {
	info, err := os.Stat(settings.RepoPath(base))
	return err == nil && info.IsDir()
}

// Init creates the repository layout under base and returns the repository
// with its scoped logger attached. Initializing an existing repository is
// not an error; the returned bool reports whether a new layout was created.
func Init(settings *config.Settings, registry *logging.Registry, base string) (*Repository, bool, error) {
	if base == "" {
		base = settings.BaseDir
	}

	created := !Exists(settings, base)

	for _, dir := range []string{
		settings.ObjectsPath(base),
		settings.RefsPath(base),
		filepath.Join(settings.RepoPath(base), "logs"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("create repository directory: %w", err)
		}
	}

	logger, err := registry.ForRepository(base)
	if err != nil {
		return nil, false, fmt.Errorf("set up repository logger: %w", err)
	}

	repository := &Repository{settings: settings, logger: logger, base: base}
	if created {
		logger.Info("repository initialized", zap.String("path", repository.Root()))
	} else {
		logger.Info("repository already initialized", zap.String("path", repository.Root()))
	}

	return repository, created, nil
}

// Open attaches to an existing repository at base without creating anything.
func Open(settings *config.Settings, registry *logging.Registry, base string) (*Repository, error) {
	if base == "" {
		base = settings.BaseDir
	}
	if !Exists(settings, base) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, base)
	}

	logger, err := registry.ForRepository(base)
	if err != nil {
		return nil, fmt.Errorf("set up repository logger: %w", err)
	}

	return &Repository{settings: settings, logger: logger, base: base}, nil
}

// Find walks parent directories upward from start until it finds one holding
// a repository layout, and returns that base directory.
func Find(settings *config.Settings, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if Exists(settings, dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: searched upward from %s", ErrNotARepository, start)
}
