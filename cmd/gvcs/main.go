package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/graphvcs/graphvcs/internal/application"
	"github.com/graphvcs/graphvcs/internal/config"
)

func main() {
	app := kingpin.New("gvcs", "Graph-based version control system - configuration and repository tooling")
	environment := app.Flag("environment", "Environment profile to use (DEVELOPMENT, TEST or PRODUCTION)").String()
	envFile := app.Flag("env-file", "Path to a .env file loaded below the process environment").String()
	configFile := app.Flag("config", "Path to a YAML configuration file").String()
	baseDir := app.Flag("base-dir", "Base directory overriding the configured one").String()
	logFile := app.Flag("log-file", "Also write application logs to this rotating file").String()
	noColor := app.Flag("no-color", "Disable colored console output").Bool()

	initCmd := app.Command("init", "Initialize a repository layout")
	initPath := initCmd.Arg("path", "Directory to initialize (defaults to the base directory)").String()

	configCmd := app.Command("config", "Configuration commands")
	configShowCmd := configCmd.Command("show", "Print the effective configuration as YAML")

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	overrides := &config.Overrides{
		Environment: *environment,
		EnvFile:     *envFile,
		ConfigFile:  *configFile,
		BaseDir:     *baseDir,
	}

	switch command {
	case initCmd.FullCommand():
		app.FatalIfError(runInit(overrides, *initPath, *logFile, !*noColor), "init")
	case configShowCmd.FullCommand():
		app.FatalIfError(runConfigShow(overrides, os.Stdout), "config show")
	}
}

func runInit(overrides *config.Overrides, path, logFile string, color bool) error {
	opts := []application.Option{application.WithConsoleColor(color)}
	if logFile != "" {
		opts = append(opts, application.WithLogFile(logFile))
	}

	gvcs, err := application.New(overrides, opts...)
	if err != nil {
		return err
	}
	defer func() {
		_ = gvcs.Close()
	}()

	_, _, err = gvcs.InitRepository(path)
	return err
}

func runConfigShow(overrides *config.Overrides, w io.Writer) error {
	settings, err := config.Load(overrides)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(redacted(settings))
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	_, err = w.Write(out)
	return err
}

// redacted returns a copy of the settings safe for printing.
func redacted(settings *config.Settings) *config.Settings {
	cp := *settings
	if cp.Neo4jPassword != "" {
		cp.Neo4jPassword = "********"
	}
	return &cp
}
