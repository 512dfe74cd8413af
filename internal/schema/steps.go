package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/telemetry"
)

// Step transforms the ledger from Version-1 (or the previous step's version) to Version.
type Step struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, sc *StepContext) error
}

// StepContext is handed to a step. Store is scoped to the step's transaction.
type StepContext struct {
	Store    *store.Store
	Version  int
	logger   *slog.Logger
	reporter telemetry.Reporter
}

func (sc *StepContext) exec(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		if _, err := sc.Store.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// recreate drops each trigger by name, if present, and creates it again.
func (sc *StepContext) recreate(ctx context.Context, triggers ...trigger) error {
	for _, t := range triggers {
		if err := sc.exec(ctx, "DROP TRIGGER IF EXISTS "+t.name, t.create); err != nil {
			return fmt.Errorf("failed to recreate trigger %s: %w", t.name, err)
		}
	}
	return nil
}

// repair runs fn inside a savepoint. A failure undoes fn only and is reported; the step
// carries on.
func (sc *StepContext) repair(ctx context.Context, name string, fn func() error) {
	err := sc.Store.Savepoint(ctx, "repair", fn)
	if err == nil {
		return
	}
	anomaly := &DataRepairAnomaly{Version: sc.Version, Repair: name, Err: err}
	sc.logger.Warn("data repair rolled back", slog.Int("version", sc.Version), slog.String("repair", name), slog.Any("error", err))
	sc.reporter.Report(anomaly, map[string]string{
		"version": fmt.Sprint(sc.Version),
		"repair":  name,
	})
}

// Steps returns the upgrade steps in the order they must run.
func Steps() []Step {
	return []Step{
		{117, "migrate_currency_codes", migrateCurrencyCodes},
		{118, "rekey_planinstance_transaction", rekeyPlanInstances},
		{119, "add_debts", addDebts},
		{120, "drop_legacy_debt_triggers", dropLegacyDebtTriggers},
		{122, "repair_transfer_accounts", repairTransferAccounts},
		{123, "add_default_budget_flag", addDefaultBudgetFlag},
	}
}

var currencyReplacements = []struct{ old, new string }{
	{"VEB", "VES"},
	{"MRO", "MRU"},
	{"STD", "STN"},
}

func migrateCurrencyCodes(ctx context.Context, sc *StepContext) error {
	for _, r := range currencyReplacements {
		if err := migrateCurrency(ctx, sc, r.old, r.new); err != nil {
			return err
		}
	}
	return nil
}

func migrateCurrency(ctx context.Context, sc *StepContext, oldCode, newCode string) error {
	inUse, err := sc.Store.CountAccountsWithCurrency(ctx, oldCode)
	if err != nil {
		return err
	}
	if inUse > 0 {
		sc.logger.Warn("currency is in use", slog.String("currency", oldCode), slog.Int("accounts", inUse))
	} else {
		deleted, err := sc.Store.DeleteCurrency(ctx, oldCode)
		if err != nil {
			return err
		}
		if deleted {
			sc.logger.Debug("currency deleted", slog.String("currency", oldCode))
		}
	}

	err = sc.Store.InsertCurrency(ctx, newCode)
	switch {
	case err == nil:
		sc.logger.Debug("currency inserted", slog.String("currency", newCode))
	case errors.Is(err, store.ErrDuplicate):
		sc.logger.Warn("currency already defined", slog.String("currency", newCode))
	default:
		return err
	}
	return nil
}

// rekeyPlanInstances allows at most one instance per template. Rows that were unique only
// under the old key collapse to the first one copied.
func rekeyPlanInstances(ctx context.Context, sc *StepContext) error {
	return sc.exec(ctx,
		"ALTER TABLE planinstance_transaction RENAME TO planinstance_transaction_old",
		`CREATE TABLE planinstance_transaction (
			template_id INTEGER REFERENCES templates(_id) ON DELETE CASCADE,
			instance_id INTEGER,
			transaction_id INTEGER UNIQUE REFERENCES transactions(_id) ON DELETE CASCADE,
			PRIMARY KEY (template_id, instance_id)
		)`,
		`INSERT OR IGNORE INTO planinstance_transaction (template_id, instance_id, transaction_id)
			SELECT template_id, instance_id, transaction_id FROM planinstance_transaction_old`,
		"DROP TABLE planinstance_transaction_old",
	)
}

func addDebts(ctx context.Context, sc *StepContext) error {
	err := sc.exec(ctx,
		`CREATE TABLE debts (
			_id INTEGER PRIMARY KEY AUTOINCREMENT,
			payee_id INTEGER REFERENCES payee(_id) ON DELETE CASCADE,
			date INTEGER NOT NULL,
			label TEXT NOT NULL,
			amount INTEGER,
			currency TEXT NOT NULL,
			description TEXT,
			sealed BOOLEAN DEFAULT 0
		)`,
		"ALTER TABLE transactions ADD COLUMN debt_id INTEGER REFERENCES debts(_id) ON DELETE SET NULL",
	)
	if err != nil {
		return err
	}
	return sc.recreate(ctx, debtTriggers...)
}

func dropLegacyDebtTriggers(ctx context.Context, sc *StepContext) error {
	return sc.exec(ctx,
		"DROP TRIGGER IF EXISTS transaction_debt_insert",
		"DROP TRIGGER IF EXISTS transaction_debt_update",
	)
}

// Transfer legs moved to another account before the remap trigger existed kept a stale
// transfer_account on their peer.
const repairTransferAccountSQL = `
UPDATE transactions
SET transfer_account = (SELECT account_id FROM transactions peer WHERE peer._id = transactions.transfer_peer)
WHERE transfer_peer IS NOT NULL
AND transfer_account IS NOT (SELECT account_id FROM transactions peer WHERE peer._id = transactions.transfer_peer)`

func repairTransferAccounts(ctx context.Context, sc *StepContext) error {
	sc.repair(ctx, "transfer_account", func() error {
		return withRelaxedSeals(ctx, sc, func() error {
			res, err := sc.Store.Exec(ctx, repairTransferAccountSQL)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				sc.logger.Info("repaired transfer legs", slog.Int64("rows", n))
			}
			return nil
		})
	})
	return sc.recreate(ctx, remapTrigger)
}

// withRelaxedSeals lifts account seals to the transient state for the duration of fn and
// seals them again afterwards. The caller's transaction makes the sequence atomic; an
// account found transient on a later start is restored by RecoverTransientSeals.
func withRelaxedSeals(ctx context.Context, sc *StepContext, fn func() error) error {
	if _, err := sc.Store.RelaxSeals(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	_, err := sc.Store.RestoreTransientSeals(ctx)
	return err
}

func addDefaultBudgetFlag(ctx context.Context, sc *StepContext) error {
	return sc.exec(ctx, "ALTER TABLE budgets ADD COLUMN is_default BOOLEAN NOT NULL DEFAULT 0")
}
