package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Environment selector values recognised by Load.
const (
	EnvDevelopment = "DEVELOPMENT"
	EnvTest        = "TEST"
	EnvProduction  = "PRODUCTION"
)

const (
	// envPrefix is prepended (with an underscore) to every per-field
	// environment variable, e.g. GRAPHVCS_NEO4J_URI.
	envPrefix = "GRAPHVCS"
	// environmentVar selects the active profile and is deliberately
	// unprefixed so deployment tooling can share it across services.
	environmentVar = "ENVIRONMENT"
)

var (
	// ErrMissingNeo4jURI is returned when the production profile is selected
	// without an explicit GRAPHVCS_NEO4J_URI value.
	ErrMissingNeo4jURI = errors.New("production environment requires GRAPHVCS_NEO4J_URI to be set")
)

// Settings aggregates runtime configuration resolved from multiple sources.
// Precedence: process environment > .env file > YAML config > profile defaults.
// A Settings value is constructed once at process start and treated as
// read-only afterwards.
type Settings struct {
	// Environment is the canonical name of the profile that produced the
	// defaults (DEVELOPMENT, TEST or PRODUCTION).
	Environment string `yaml:"environment" ignored:"true"`

	AppName    string `yaml:"app_name" envconfig:"APP_NAME"`
	AppVersion string `yaml:"app_version" envconfig:"APP_VERSION"`

	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`

	RepoDirName    string `yaml:"repo_dir_name" envconfig:"REPO_DIR_NAME"`
	ObjectsDirName string `yaml:"objects_dir_name" envconfig:"OBJECTS_DIR_NAME"`
	RefsDirName    string `yaml:"refs_dir_name" envconfig:"REFS_DIR_NAME"`

	Neo4jURI      string `yaml:"neo4j_uri" envconfig:"NEO4J_URI"`
	Neo4jUsername string `yaml:"neo4j_username" envconfig:"NEO4J_USERNAME"`
	Neo4jPassword string `yaml:"neo4j_password" envconfig:"NEO4J_PASSWORD"`

	DefaultUserName  string `yaml:"default_user_name" envconfig:"DEFAULT_USER_NAME"`
	DefaultUserEmail string `yaml:"default_user_email" envconfig:"DEFAULT_USER_EMAIL"`

	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Debug     bool   `yaml:"debug" envconfig:"DEBUG"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	CompressionEnabled bool `yaml:"compression_enabled" envconfig:"COMPRESSION_ENABLED"`
}

// Overrides holds values supplied on the command line. They take precedence
// over every other configuration source.
type Overrides struct {
	Environment string
	EnvFile     string
	ConfigFile  string
	BaseDir     string
}

// Load resolves the effective configuration. The profile is chosen by the
// override, then the ENVIRONMENT variable, then DEVELOPMENT; an unrecognised
// selector falls back to the development profile rather than failing.
func Load(overrides *Overrides) (*Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	selector := ""
	if overrides != nil {
		selector = overrides.Environment
	}
	if selector == "" {
		selector = os.Getenv(environmentVar)
	}

	cfg := profileFor(selector, cwd)

	// YAML sits below both environment layers.
	if overrides != nil && overrides.ConfigFile != "" {
		fileCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load YAML config: %w", err)
		}
		applyFileSettings(&cfg, fileCfg)
	}

	// godotenv never overwrites variables already present in the process
	// environment, which yields the documented env > .env precedence.
	if overrides != nil && overrides.EnvFile != "" {
		if err := godotenv.Load(overrides.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if _, statErr := os.Stat(".env"); statErr == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if overrides != nil && overrides.BaseDir != "" {
		cfg.BaseDir = overrides.BaseDir
	}

	if cfg.LogsDir == "" {
		cfg.LogsDir = filepath.Join(cfg.BaseDir, cfg.RepoDirName, "logs")
	}

	if err := validateSettings(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RepoPath returns the repository root under base, or under BaseDir when base
// is empty. Pure path join, no filesystem access.
func (s *Settings) RepoPath(base string) string {
	if base == "" {
		base = s.BaseDir
	}
	return filepath.Join(base, s.RepoDirName)
}

// ObjectsPath returns the object store directory for the repository at base.
func (s *Settings) ObjectsPath(base string) string {
	return filepath.Join(s.RepoPath(base), s.ObjectsDirName)
}

// RefsPath returns the refs directory for the repository at base.
func (s *Settings) RefsPath(base string) string {
	return filepath.Join(s.RepoPath(base), s.RefsDirName)
}

// IsDevelopment reports whether the development profile is active.
func (s *Settings) IsDevelopment() bool {
	return s.Environment == EnvDevelopment
}

// profileFor maps an environment selector to its profile defaults. Unmatched
// selectors resolve to the development profile.
func profileFor(selector string, cwd string) Settings {
	switch strings.ToUpper(strings.TrimSpace(selector)) {
	case EnvTest:
		return testSettings(cwd)
	case EnvProduction:
		return productionSettings(cwd)
	default:
		return developmentSettings(cwd)
	}
}

// baseSettings returns the defaults shared by every profile. LogsDir is left
// empty so it can be derived from the final BaseDir after all layers apply.
func baseSettings(cwd string) Settings {
	return Settings{
		AppName:            "graphvcs",
		AppVersion:         "0.1.0",
		BaseDir:            cwd,
		RepoDirName:        ".gvcs",
		ObjectsDirName:     "objects",
		RefsDirName:        "refs",
		LogLevel:           "INFO",
		LogFormat:          "{time} - {name} - {level} - {message}",
		CompressionEnabled: true,
	}
}

func developmentSettings(cwd string) Settings {
	cfg := baseSettings(cwd)
	cfg.Environment = EnvDevelopment
	cfg.Debug = true
	cfg.LogLevel = "DEBUG"
	cfg.Neo4jURI = "neo4j://localhost:7687"
	return cfg
}

func testSettings(cwd string) Settings {
	cfg := baseSettings(cwd)
	cfg.Environment = EnvTest
	cfg.Debug = true
	cfg.LogLevel = "DEBUG"
	cfg.Neo4jURI = "neo4j://localhost:7687"
	return cfg
}

func productionSettings(cwd string) Settings {
	cfg := baseSettings(cwd)
	cfg.Environment = EnvProduction
	return cfg
}

// fileSettings mirrors Settings for the YAML layer. Pointer fields
// distinguish absent keys from zero values.
type fileSettings struct {
	AppName            *string `yaml:"app_name"`
	AppVersion         *string `yaml:"app_version"`
	BaseDir            *string `yaml:"base_dir"`
	LogsDir            *string `yaml:"logs_dir"`
	RepoDirName        *string `yaml:"repo_dir_name"`
	ObjectsDirName     *string `yaml:"objects_dir_name"`
	RefsDirName        *string `yaml:"refs_dir_name"`
	Neo4jURI           *string `yaml:"neo4j_uri"`
	Neo4jUsername      *string `yaml:"neo4j_username"`
	Neo4jPassword      *string `yaml:"neo4j_password"`
	DefaultUserName    *string `yaml:"default_user_name"`
	DefaultUserEmail   *string `yaml:"default_user_email"`
	LogLevel           *string `yaml:"log_level"`
	Debug              *bool   `yaml:"debug"`
	LogFormat          *string `yaml:"log_format"`
	CompressionEnabled *bool   `yaml:"compression_enabled"`
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg fileSettings
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &fileCfg, nil
}

// applyFileSettings copies every key present in the YAML file onto cfg.
func applyFileSettings(cfg *Settings, fileCfg *fileSettings) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&cfg.AppName, fileCfg.AppName)
	setString(&cfg.AppVersion, fileCfg.AppVersion)
	setString(&cfg.BaseDir, fileCfg.BaseDir)
	setString(&cfg.LogsDir, fileCfg.LogsDir)
	setString(&cfg.RepoDirName, fileCfg.RepoDirName)
	setString(&cfg.ObjectsDirName, fileCfg.ObjectsDirName)
	setString(&cfg.RefsDirName, fileCfg.RefsDirName)
	setString(&cfg.Neo4jURI, fileCfg.Neo4jURI)
	setString(&cfg.Neo4jUsername, fileCfg.Neo4jUsername)
	setString(&cfg.Neo4jPassword, fileCfg.Neo4jPassword)
	setString(&cfg.DefaultUserName, fileCfg.DefaultUserName)
	setString(&cfg.DefaultUserEmail, fileCfg.DefaultUserEmail)
	setString(&cfg.LogLevel, fileCfg.LogLevel)
	setBool(&cfg.Debug, fileCfg.Debug)
	setString(&cfg.LogFormat, fileCfg.LogFormat)
	setBool(&cfg.CompressionEnabled, fileCfg.CompressionEnabled)
}

// validateSettings validates the final configuration. The production profile
// has no graph database default, so its URI must come from a real source.
func validateSettings(cfg *Settings) error {
	if cfg.Environment == EnvProduction && cfg.Neo4jURI == "" {
		return ErrMissingNeo4jURI
	}
	if cfg.AppName == "" {
		return fmt.Errorf("app name cannot be empty")
	}
	if cfg.RepoDirName == "" {
		return fmt.Errorf("repository directory name cannot be empty")
	}
	return nil
}
