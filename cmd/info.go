package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hance08/tally/internal/app"
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/ui/views"
)

type infoRunner struct {
	cfg *config.Config
}

func NewInfoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display application information",
		Long: `Display current configuration, file locations and the stored schema and settings
versions. Nothing is migrated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &infoRunner{
				cfg: cfg,
			}

			return runner.Run(cmd.Context())
		},
	}
}

func (r *infoRunner) Run(ctx context.Context) error {
	paths, err := app.ResolvePaths(r.cfg)
	if err != nil {
		return err
	}

	configPath := r.cfg.ConfigPath
	if configPath == "" {
		configPath = "(None, using defaults)"
	}

	dbExists := false
	if _, err := os.Stat(paths.DBPath); err == nil {
		dbExists = true
	}

	schemaVersion, err := store.PeekVersion(ctx, paths.DBPath)
	if err != nil {
		return err
	}

	flat, err := settings.OpenFile(paths.SettingsPath)
	if err != nil {
		return err
	}

	items := views.SystemInfoItem{
		ConfigPath:      configPath,
		DBPath:          paths.DBPath,
		DBExists:        dbExists,
		SchemaVersion:   schemaVersion,
		BuiltinSchema:   constants.SchemaVersion,
		SettingsPath:    paths.SettingsPath,
		SettingsVersion: flat.GetInt(constants.PrefCurrentVersion, 0),
		BuiltinSettings: constants.AppVersion,
		UIPath:          paths.UIPath,
		DefaultCurrency: r.cfg.Defaults.Currency,
		AppDataDir:      paths.DataDir,
	}

	if err := views.RenderSystemInfo(items); err != nil {
		return err
	}
	return nil
}
