package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/clock"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/keyring"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/notifier"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/backend"
)

var CLI struct {
	Version kong.VersionFlag
	Storage string `help:"Storage location: a file path, postgres://, redis://, mongodb:// or memory://." placeholder:"LOCATION"`
	Debug   bool   `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize habitline storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits."`
	Category cli.CategoryCmd `cmd:"" help:"Manage categories."`
	Timer    cli.TimerCmd    `cmd:"" help:"Run timers for timed habits."`
	Stats    cli.StatsCmd    `cmd:"" help:"Show progress and streaks."`
	Settings cli.SettingsCmd `cmd:"" help:"View or change settings."`
	Serve    cli.ServeCmd    `cmd:"" help:"Run the HTTP API."`
	Token    cli.TokenCmd    `cmd:"" help:"Issue an API access token."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage database backups."`
	Keyring  cli.KeyringCmd  `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	config.LoadEnvFiles()

	ctx := kong.Parse(&CLI,
		kong.Name("habitline"),
		kong.Description("Habit tracker with timers, streaks and progress"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *kong.Context) error {
	cfg := config.Load()
	if CLI.Debug {
		cfg.Debug = true
	}
	if CLI.Storage != "" {
		cfg.Storage = CLI.Storage
	}

	configDir, err := backend.ExpandPath(cfg.ConfigDir)
	if err != nil {
		return err
	}
	cfg.ConfigDir = configDir
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	dispatcher, closeNotifier, err := notifier.Build(cfg.Notifiers, cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return err
	}

	appCtx := &cli.Context{
		Config:   cfg,
		Store:    store,
		Clock:    clock.Real{},
		Notifier: dispatcher,
		Out:      os.Stdout,
		In:       os.Stdin,
	}

	runErr := ctx.Run(appCtx)
	closeErr := errors.Join(appCtx.Close(), store.Close(), closeNotifier())
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// openStore resolves storage from the flag or environment, then the keyring,
// then the default database under the config directory.
func openStore(cfg config.Config) (storage.Provider, error) {
	if cfg.Storage != "" {
		return backend.Open(cfg.Storage)
	}

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		logger.Debug("Using storage location from keyring")
		return backend.OpenSecret(connStr)
	case !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable):
		logger.Warn("Failed to read keyring", "error", err)
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return backend.Open(filepath.Join(cfg.ConfigDir, "habitline.db"))
}
