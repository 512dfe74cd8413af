// Package prefmigrate moves user settings forward across application versions. Steps are
// gated by version codes and read or write the flat and structured settings stores; some
// consult the ledger.
package prefmigrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/settings"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/telemetry"
)

// Ledger is the part of the ledger store the settings steps depend on.
type Ledger interface {
	PurgeOrphanTransactions(ctx context.Context) (int64, error)
	TransactionSequence(ctx context.Context) (int64, error)
	CountSyncedAccounts(ctx context.Context) (int, error)
	HasNonTransferIncome(ctx context.Context) (bool, error)
	CorruptedSplitIDs(ctx context.Context) ([]int64, error)
	BudgetIDs(ctx context.Context) ([]int64, error)
	MarkDefaultBudget(ctx context.Context, id int64, scope store.BudgetScope) (int64, error)
	CurrencyCodes(ctx context.Context) ([]string, error)
	SetCurrencySortDirection(ctx context.Context, code, direction string) (int64, error)
}

var _ Ledger = (*store.Store)(nil)

// Env is everything a step may touch.
type Env struct {
	Flat         settings.Flat
	UI           *settings.Structured
	Ledger       Ledger
	Reporter     telemetry.Reporter
	Logger       *slog.Logger
	Notices      *Notices
	HomeCurrency string

	version int
}

// anomaly logs and reports a value that could not be migrated.
func (e *Env) anomaly(key, reason string, err error) {
	a := &SettingsAnomaly{Version: e.version, Key: key, Reason: reason, Err: err}
	e.Logger.Warn("settings anomaly", slog.Int("version", e.version), slog.String("key", key), slog.String("reason", reason), slog.Any("error", err))
	e.Reporter.Report(a, map[string]string{
		"version": fmt.Sprint(e.version),
		"key":     key,
	})
}

// Step runs when the stored version is below Version and, if Since is set, at least Since.
type Step struct {
	Version int
	Since   int
	Name    string
	Apply   func(ctx context.Context, env *Env) error
}

func (s Step) applies(from int) bool {
	return from < s.Version && from >= s.Since
}

type Migrator struct {
	env   *Env
	steps []Step
}

func NewMigrator(env *Env) *Migrator {
	if env.Notices == nil {
		env.Notices = NewNotices()
	}
	if env.Reporter == nil {
		env.Reporter = telemetry.Nop{}
	}
	return &Migrator{env: env, steps: Steps()}
}

func (m *Migrator) Notices() *Notices {
	return m.env.Notices
}

// Run migrates from the version recorded in the flat store. Empty settings are treated as
// a fresh install: the install markers are written and no step runs.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	flat := m.env.Flat
	if len(flat.Keys()) == 0 {
		m.install()
		if err := flat.Save(); err != nil {
			return 0, err
		}
		return constants.AppVersion, nil
	}

	from := int(flat.GetInt(constants.PrefCurrentVersion, 0))
	if from >= constants.AppVersion {
		return from, nil
	}
	return from, m.MigrateSettings(ctx, from)
}

func (m *Migrator) install() {
	flat := m.env.Flat
	flat.Put(constants.PrefCurrentVersion, constants.AppVersion)
	flat.Put(constants.PrefFirstInstallVersion, constants.AppVersion)
	flat.Put(constants.PrefFirstInstallSchemaVersion, constants.SchemaVersion)
	flat.Put(constants.PrefInstallationID, uuid.NewString())
	if m.env.HomeCurrency != "" {
		flat.Put(constants.PrefHomeCurrency, m.env.HomeCurrency)
	}
	m.env.Logger.Info("initialized settings", slog.Int("version", constants.AppVersion))
}

// MigrateSettings applies every step gated above from. A failing step is reported and
// skipped; only persisting the flat store can fail the migration. When notices were
// queued the first one becomes current.
func (m *Migrator) MigrateSettings(ctx context.Context, from int) error {
	env := m.env
	for _, step := range m.steps {
		if !step.applies(from) {
			continue
		}
		env.version = step.Version
		env.Logger.Info("applying settings step", slog.Int("version", step.Version), slog.String("step", step.Name))
		if err := step.Apply(ctx, env); err != nil {
			env.anomaly(step.Name, "step failed", err)
		}
	}

	env.Flat.Put(constants.PrefCurrentVersion, constants.AppVersion)
	if !env.Flat.Contains(constants.PrefInstallationID) {
		env.Flat.Put(constants.PrefInstallationID, uuid.NewString())
	}
	if err := env.Flat.Save(); err != nil {
		return fmt.Errorf("failed to save migrated settings: %w", err)
	}

	if env.Notices.Len() > 0 {
		env.Notices.Next()
	}
	return nil
}
