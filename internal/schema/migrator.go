// Package schema upgrades the ledger structure step by step. Every step runs in its own
// transaction together with the version checkpoint, so an interrupted upgrade resumes
// from the last committed step.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/telemetry"
)

type Migrator struct {
	store    *store.Store
	steps    []Step
	reporter telemetry.Reporter
	logger   *slog.Logger
}

func NewMigrator(s *store.Store, reporter telemetry.Reporter, logger *slog.Logger) *Migrator {
	if reporter == nil {
		reporter = telemetry.Nop{}
	}
	return &Migrator{
		store:    s,
		steps:    Steps(),
		reporter: reporter,
		logger:   logger,
	}
}

func (m *Migrator) CurrentSchemaVersion(ctx context.Context) (int, error) {
	return m.store.SchemaVersion(ctx)
}

// Upgrade applies every step above from and returns the version reached.
func (m *Migrator) Upgrade(ctx context.Context, from int) (int, error) {
	return m.UpgradeTo(ctx, from, constants.SchemaVersion)
}

// UpgradeTo applies the steps in (from, to]. On failure the returned version is the last
// one committed and the error is a *StructuralMigrationError.
func (m *Migrator) UpgradeTo(ctx context.Context, from, to int) (int, error) {
	if from > constants.SchemaVersion {
		return from, fmt.Errorf("%w: ledger at %d, supported %d", ErrNewerSchema, from, constants.SchemaVersion)
	}
	to = min(to, constants.SchemaVersion)

	version := from
	for _, step := range m.steps {
		if step.Version <= from || step.Version > to {
			continue
		}

		m.logger.Info("applying schema step", slog.Int("version", step.Version), slog.String("step", step.Name))
		err := m.store.ExecTx(ctx, func(tx *store.Store) error {
			sc := &StepContext{
				Store:    tx,
				Version:  step.Version,
				logger:   m.logger,
				reporter: m.reporter,
			}
			if err := step.Apply(ctx, sc); err != nil {
				return err
			}
			return tx.SetSchemaVersion(ctx, step.Version)
		})
		if err != nil {
			m.logger.Error("schema step failed", slog.Int("version", step.Version), slog.String("step", step.Name), slog.Any("error", err))
			return version, &StructuralMigrationError{Version: step.Version, Step: step.Name, Err: err}
		}
		version = step.Version
	}

	if version < to {
		if err := m.store.SetSchemaVersion(ctx, to); err != nil {
			return version, &StructuralMigrationError{Version: to, Step: "checkpoint", Err: err}
		}
		version = to
	}
	return version, nil
}

// RefreshIntegrityTriggers drops and recreates the debt and transfer remap triggers that
// the current schema version defines.
func (m *Migrator) RefreshIntegrityTriggers(ctx context.Context) error {
	version, err := m.CurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	var triggers []trigger
	if version >= 119 {
		triggers = append(triggers, debtTriggers...)
	}
	if version >= 122 {
		triggers = append(triggers, remapTrigger)
	}
	if len(triggers) == 0 {
		return nil
	}

	return m.store.ExecTx(ctx, func(tx *store.Store) error {
		sc := &StepContext{Store: tx, Version: version, logger: m.logger, reporter: m.reporter}
		return sc.recreate(ctx, triggers...)
	})
}

// RecoverTransientSeals seals again any account left in the transient state by an
// interrupted repair.
func (m *Migrator) RecoverTransientSeals(ctx context.Context) error {
	restored, err := m.store.RestoreTransientSeals(ctx)
	if err != nil {
		return err
	}
	if restored > 0 {
		anomaly := &DataRepairAnomaly{Repair: "transient_seals"}
		m.logger.Warn("restored transiently unsealed accounts", slog.Int64("accounts", restored))
		m.reporter.Report(anomaly, map[string]string{"accounts": fmt.Sprint(restored)})
	}
	return nil
}

// Run brings the ledger to the built-in version: transient seals are recovered, pending
// steps applied and the integrity triggers refreshed.
func (m *Migrator) Run(ctx context.Context) (from, to int, err error) {
	if err := m.RecoverTransientSeals(ctx); err != nil {
		return 0, 0, err
	}
	from, err = m.CurrentSchemaVersion(ctx)
	if err != nil {
		return 0, 0, err
	}
	to, err = m.Upgrade(ctx, from)
	if err != nil {
		return from, to, err
	}
	if err := m.RefreshIntegrityTriggers(ctx); err != nil {
		return from, to, &StructuralMigrationError{Version: to, Step: "refresh_triggers", Err: err}
	}
	return from, to, nil
}

// IsFatal reports whether err leaves the ledger unusable.
func IsFatal(err error) bool {
	var structural *StructuralMigrationError
	return errors.As(err, &structural) || errors.Is(err, ErrNewerSchema)
}
