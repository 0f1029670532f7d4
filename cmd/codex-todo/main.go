package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/stonecharioteer/codex-todo/internal/config"
	"github.com/stonecharioteer/codex-todo/internal/logutils"
	"github.com/stonecharioteer/codex-todo/internal/storage"
	"github.com/stonecharioteer/codex-todo/internal/ui"
)

// Populated at build-time via -ldflags.
var version = "dev"

type flags struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	LogFile    string
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	f := &flags{}

	return &cli.Command{
		Name:      config.AppName,
		Usage:     "Keep a personal todo list in the terminal",
		UsageText: "codex-todo [global options] [command]",
		Description: `Keys: a add, t toggle done, d delete, c pick a due date for the next todo,
e edit the highlighted todo's due date, q quit.

Due dates can be typed as the first or last word of a title:
  /today /tomorrow /yesterday /next-week /next-month /next-year
  /this-month /this-year /in-N-days /in-N-weeks /in-N-months /in-N-years
  YYYY-MM-DD`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "extra config file, read after the standard locations",
				Sources:     cli.EnvVars("CODEX_TODO_CONFIG"),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "db",
				Usage:       "path to the SQLite database",
				Destination: &f.DBPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("CODEX_TODO_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to codex-todo.log next to the database)",
				Sources:     cli.EnvVars("CODEX_TODO_LOG_FILE"),
				Destination: &f.LogFile,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write a starter config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "where to write the config",
						Value: config.DefaultPath(),
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.String("path")
					cfg, err := config.WriteDefault(path)
					if err != nil {
						return err
					}
					fmt.Printf("Config file created: %s\n", path)
					fmt.Printf("Tasks will be stored in: %s\n", cfg.DBPath)
					return nil
				},
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(f)
		},
	}
}

func run(f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, closeLog, err := logutils.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closeLog()
	log.Logger = logger

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	log.Info().Str("db", cfg.DBPath).Str("version", version).Msg("starting")
	if err := ui.Run(store, cfg); err != nil {
		log.Error().Err(err).Msg("exiting after failure")
		return err
	}
	return nil
}

// loadConfig reads the config files and applies flag overrides on top.
func loadConfig(f *flags) (config.Config, error) {
	paths := config.SearchPaths()
	if f.ConfigPath != "" {
		paths = append(paths, f.ConfigPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if f.DBPath != "" {
		cfg.DBPath = config.ExpandHome(f.DBPath)
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.LogFile = config.ExpandHome(f.LogFile)
	}
	return cfg, cfg.Validate()
}
