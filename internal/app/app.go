package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/export"
	"github.com/hance08/tally/internal/prefmigrate"
	"github.com/hance08/tally/internal/schema"
	"github.com/hance08/tally/internal/service"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/telemetry"
)

// Paths are the files tally owns.
type Paths struct {
	DataDir      string
	DBPath       string
	SettingsPath string
	UIPath       string
}

// Versions records what the start-up migration found and reached.
type Versions struct {
	SchemaFrom   int
	SchemaTo     int
	SettingsFrom int
}

type App struct {
	Config   *config.Config
	Paths    Paths
	Store    *store.Store
	Service  *service.Service
	Exporter *export.Exporter
	Flat     *settings.FileStore
	UI       *settings.Structured
	Notices  *prefmigrate.Notices
	Versions Versions
	Logger   *slog.Logger
}

// NewApp opens the ledger and both settings files, brings them to the built-in versions and
// wires the services. The returned cleanup closes the reporter and the store.
func NewApp(ctx context.Context, cfg *config.Config, migrationFS fs.FS, logger *slog.Logger) (*App, func(), error) {
	paths, err := ResolvePaths(cfg)
	if err != nil {
		return nil, nil, err
	}

	flat, err := settings.OpenFile(paths.SettingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings: %w", err)
	}
	ui, err := settings.OpenStructured(paths.UIPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ui settings: %w", err)
	}

	distinctID := flat.GetString(constants.PrefInstallationID, "")
	if distinctID == "" {
		distinctID = "anonymous"
	}
	reporter := telemetry.NewPosthogReporter(cfg.Telemetry.PosthogKey, cfg.Telemetry.PosthogEndpoint, distinctID, logger)

	dbStore, err := store.NewStore(ctx, paths.DBPath, migrationFS, logger)
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		if err := reporter.Close(); err != nil {
			logger.Warn("failed to flush error reports", slog.Any("error", err))
		}
		if err := dbStore.Close(); err != nil {
			fmt.Printf("Error closing DB: %v\n", err)
		}
	}

	a := &App{
		Config: cfg,
		Paths:  paths,
		Store:  dbStore,
		Flat:   flat,
		UI:     ui,
		Logger: logger,
	}

	a.Versions.SchemaFrom, a.Versions.SchemaTo, err = schema.NewMigrator(dbStore, reporter, logger).Run(ctx)
	if err != nil {
		if schema.IsFatal(err) {
			cleanup()
			return nil, nil, fmt.Errorf("failed to upgrade ledger: %w", err)
		}
		logger.Warn("ledger upgrade finished with errors", slog.Any("error", err))
	}

	prefs := prefmigrate.NewMigrator(&prefmigrate.Env{
		Flat:         flat,
		UI:           ui,
		Ledger:       dbStore,
		Reporter:     reporter,
		Logger:       logger,
		HomeCurrency: cfg.Defaults.Currency,
	})
	a.Versions.SettingsFrom, err = prefs.Run(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to upgrade settings: %w", err)
	}
	a.Notices = prefs.Notices()

	a.Service = service.NewService(dbStore, service.Config{DefaultCurrency: cfg.Defaults.Currency}, logger)
	a.Exporter = export.NewExporter(dbStore, logger)

	return a, cleanup, nil
}

// ResolvePaths fills in the default locations for every path the config leaves empty.
func ResolvePaths(cfg *config.Config) (Paths, error) {
	appDir, err := DataDir()
	if err != nil {
		return Paths{}, err
	}
	p := Paths{
		DataDir:      appDir,
		DBPath:       filepath.Join(appDir, "tally.db"),
		SettingsPath: filepath.Join(appDir, "settings.yaml"),
		UIPath:       filepath.Join(appDir, "ui.yaml"),
	}
	for _, o := range []struct {
		raw string
		dst *string
	}{
		{cfg.Database.Path, &p.DBPath},
		{cfg.Settings.Path, &p.SettingsPath},
		{cfg.Settings.UIPath, &p.UIPath},
	} {
		if o.raw == "" {
			continue
		}
		expanded, err := ExpandPath(o.raw)
		if err != nil {
			return Paths{}, err
		}
		*o.dst = expanded
	}
	return p, nil
}

// DataDir is the directory holding the config file, the ledger and the settings.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".tally"), nil
	}

	return filepath.Join(configDir, "tally"), nil
}

func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~\\") {
			return filepath.Join(home, path[2:]), nil
		}
	}
	return path, nil
}
