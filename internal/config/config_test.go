package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileDefaults(t *testing.T) {
	testCases := []struct {
		selector  string
		wantEnv   string
		wantDebug bool
		wantLevel string
	}{
		{selector: "DEVELOPMENT", wantEnv: EnvDevelopment, wantDebug: true, wantLevel: "DEBUG"},
		{selector: "TEST", wantEnv: EnvTest, wantDebug: true, wantLevel: "DEBUG"},
		{selector: "PRODUCTION", wantEnv: EnvProduction, wantDebug: false, wantLevel: "INFO"},
	}

	for _, tc := range testCases {
		t.Run(tc.selector, func(t *testing.T) {
			if tc.selector == "PRODUCTION" {
				t.Setenv("GRAPHVCS_NEO4J_URI", "neo4j://db.internal:7687")
			}

			cfg, err := Load(&Overrides{Environment: tc.selector})
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}

			if cfg.Environment != tc.wantEnv {
				t.Fatalf("expected environment %s, got %s", tc.wantEnv, cfg.Environment)
			}
			if cfg.Debug != tc.wantDebug {
				t.Fatalf("expected debug=%v, got %v", tc.wantDebug, cfg.Debug)
			}
			if cfg.LogLevel != tc.wantLevel {
				t.Fatalf("expected log level %s, got %s", tc.wantLevel, cfg.LogLevel)
			}
			if cfg.AppName != "graphvcs" {
				t.Fatalf("unexpected app name: %s", cfg.AppName)
			}
		})
	}
}

func TestLoadUnknownEnvironmentFallsBackToDevelopment(t *testing.T) {
	cfg, err := Load(&Overrides{Environment: "STAGING"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development fallback, got %s", cfg.Environment)
	}
	if !cfg.Debug {
		t.Fatalf("expected development debug default")
	}
}

func TestLoadEnvironmentVariableSelectsProfile(t *testing.T) {
	t.Setenv("ENVIRONMENT", "TEST")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Environment != EnvTest {
		t.Fatalf("expected TEST profile, got %s", cfg.Environment)
	}
}

func TestLoadProductionRequiresNeo4jURI(t *testing.T) {
	// register restore, then make sure the variable is truly absent
	t.Setenv("GRAPHVCS_NEO4J_URI", "")
	os.Unsetenv("GRAPHVCS_NEO4J_URI")

	if _, err := Load(&Overrides{Environment: "PRODUCTION"}); !errors.Is(err, ErrMissingNeo4jURI) {
		t.Fatalf("expected ErrMissingNeo4jURI, got %v", err)
	}

	t.Setenv("GRAPHVCS_NEO4J_URI", "neo4j://db.internal:7687")
	cfg, err := Load(&Overrides{Environment: "PRODUCTION"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Neo4jURI != "neo4j://db.internal:7687" {
		t.Fatalf("unexpected URI: %s", cfg.Neo4jURI)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("GRAPHVCS_LOG_LEVEL", "ERROR")
	t.Setenv("GRAPHVCS_DEBUG", "false")
	t.Setenv("GRAPHVCS_DEFAULT_USER_NAME", "Ada Lovelace")
	t.Setenv("GRAPHVCS_DEFAULT_USER_EMAIL", "ada@example.com")
	t.Setenv("GRAPHVCS_COMPRESSION_ENABLED", "false")

	cfg, err := Load(&Overrides{Environment: "DEVELOPMENT"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.LogLevel != "ERROR" {
		t.Fatalf("expected overridden log level, got %s", cfg.LogLevel)
	}
	if cfg.Debug {
		t.Fatalf("expected debug disabled via environment")
	}
	if cfg.DefaultUserName != "Ada Lovelace" || cfg.DefaultUserEmail != "ada@example.com" {
		t.Fatalf("unexpected default user: %s <%s>", cfg.DefaultUserName, cfg.DefaultUserEmail)
	}
	if cfg.CompressionEnabled {
		t.Fatalf("expected compression disabled via environment")
	}
}

func TestLoadEnvFile(t *testing.T) {
	// godotenv exports variables into the process environment; register
	// restores so later tests see a clean slate.
	t.Setenv("GRAPHVCS_DEFAULT_USER_NAME", "")
	os.Unsetenv("GRAPHVCS_DEFAULT_USER_NAME")
	t.Setenv("GRAPHVCS_LOG_LEVEL", "")
	os.Unsetenv("GRAPHVCS_LOG_LEVEL")

	envFile := filepath.Join(t.TempDir(), "graphvcs.env")
	content := "GRAPHVCS_DEFAULT_USER_NAME=Grace Hopper\nGRAPHVCS_LOG_LEVEL=WARNING\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(&Overrides{Environment: "DEVELOPMENT", EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DefaultUserName != "Grace Hopper" {
		t.Fatalf("expected user from env file, got %q", cfg.DefaultUserName)
	}
	if cfg.LogLevel != "WARNING" {
		t.Fatalf("expected log level from env file, got %s", cfg.LogLevel)
	}
}

func TestLoadProcessEnvironmentBeatsEnvFile(t *testing.T) {
	t.Setenv("GRAPHVCS_LOG_LEVEL", "ERROR")

	envFile := filepath.Join(t.TempDir(), "graphvcs.env")
	if err := os.WriteFile(envFile, []byte("GRAPHVCS_LOG_LEVEL=WARNING\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(&Overrides{Environment: "DEVELOPMENT", EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.LogLevel != "ERROR" {
		t.Fatalf("expected process environment to win, got %s", cfg.LogLevel)
	}
}

func TestLoadMissingEnvFileFails(t *testing.T) {
	_, err := Load(&Overrides{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	if err == nil {
		t.Fatalf("expected error for missing env file")
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	t.Setenv("GRAPHVCS_DEBUG", "")
	os.Unsetenv("GRAPHVCS_DEBUG")

	configFile := filepath.Join(t.TempDir(), "graphvcs.yaml")
	content := "log_level: WARNING\ndefault_user_name: Margaret Hamilton\ndebug: false\n"
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(&Overrides{Environment: "DEVELOPMENT", ConfigFile: configFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.LogLevel != "WARNING" {
		t.Fatalf("expected log level from YAML, got %s", cfg.LogLevel)
	}
	if cfg.DefaultUserName != "Margaret Hamilton" {
		t.Fatalf("expected user from YAML, got %q", cfg.DefaultUserName)
	}
	if cfg.Debug {
		t.Fatalf("expected YAML to disable debug")
	}
}

func TestLoadEnvironmentBeatsYAML(t *testing.T) {
	t.Setenv("GRAPHVCS_LOG_LEVEL", "ERROR")

	configFile := filepath.Join(t.TempDir(), "graphvcs.yaml")
	if err := os.WriteFile(configFile, []byte("log_level: WARNING\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(&Overrides{Environment: "DEVELOPMENT", ConfigFile: configFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.LogLevel != "ERROR" {
		t.Fatalf("expected environment to win over YAML, got %s", cfg.LogLevel)
	}
}

func TestLoadBaseDirOverrideDerivesLogsDir(t *testing.T) {
	base := t.TempDir()

	cfg, err := Load(&Overrides{Environment: "TEST", BaseDir: base})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BaseDir != base {
		t.Fatalf("expected base dir %s, got %s", base, cfg.BaseDir)
	}
	want := filepath.Join(base, ".gvcs", "logs")
	if cfg.LogsDir != want {
		t.Fatalf("expected logs dir %s, got %s", want, cfg.LogsDir)
	}
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	cfg := &Settings{
		BaseDir:        filepath.Join("/srv", "work"),
		RepoDirName:    ".gvcs",
		ObjectsDirName: "objects",
		RefsDirName:    "refs",
	}

	t.Run("explicit base", func(t *testing.T) {
		base := filepath.Join("/data", "project")
		if got, want := cfg.RepoPath(base), filepath.Join(base, ".gvcs"); got != want {
			t.Fatalf("RepoPath: expected %s, got %s", want, got)
		}
		if got, want := cfg.ObjectsPath(base), filepath.Join(base, ".gvcs", "objects"); got != want {
			t.Fatalf("ObjectsPath: expected %s, got %s", want, got)
		}
		if got, want := cfg.RefsPath(base), filepath.Join(base, ".gvcs", "refs"); got != want {
			t.Fatalf("RefsPath: expected %s, got %s", want, got)
		}
	})

	t.Run("defaults to configured base dir", func(t *testing.T) {
		if got, want := cfg.RepoPath(""), filepath.Join("/srv", "work", ".gvcs"); got != want {
			t.Fatalf("RepoPath: expected %s, got %s", want, got)
		}
		if got, want := cfg.ObjectsPath(""), filepath.Join("/srv", "work", ".gvcs", "objects"); got != want {
			t.Fatalf("ObjectsPath: expected %s, got %s", want, got)
		}
	})
}
