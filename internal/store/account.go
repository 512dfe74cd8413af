package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
)

const accountColumns = "_id, label, opening_balance, coalesce(description, ''), currency, type, coalesce(sync_account_name, ''), sealed"

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(
		&acc.ID, &acc.Label, &acc.OpeningBalance, &acc.Description,
		&acc.Currency, &acc.Type, &acc.SyncAccountName, &acc.Sealed,
	)
	return acc, err
}

func (s *Store) CreateAccount(ctx context.Context, acc *model.Account) (int64, error) {
	var syncName any
	if acc.SyncAccountName != "" {
		syncName = acc.SyncAccountName
	}

	var newID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (label, opening_balance, description, currency, type, sync_account_name, sealed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING _id;
	`, acc.Label, acc.OpeningBalance, acc.Description, acc.Currency, acc.Type, syncName, acc.Sealed).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account '%s': %w", acc.Label, mapError(err))
	}
	return newID, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	acc, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE _id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query account with ID %d: %w", id, err)
	}
	return acc, nil
}

func (s *Store) GetAccountByLabel(ctx context.Context, label string) (*model.Account, error) {
	acc, err := scanAccount(s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE label = ? ORDER BY _id LIMIT 1", label))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account '%s': %w", label, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query account '%s': %w", label, err)
	}
	return acc, nil
}

func (s *Store) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY _id")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (s *Store) SetAccountSealed(ctx context.Context, id int64, sealed int) error {
	result, err := s.db.ExecContext(ctx, "UPDATE accounts SET sealed = ? WHERE _id = ?", sealed, id)
	if err != nil {
		return fmt.Errorf("failed to update account seal: %w", mapError(err))
	}
	return expectOne(result, "account", id)
}

// CountAccountsWithCurrency reports how many accounts are denominated in code.
func (s *Store) CountAccountsWithCurrency(ctx context.Context, code string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM accounts WHERE currency = ?", code).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts using %s: %w", code, err)
	}
	return count, nil
}

// CountSyncedAccounts reports how many accounts are linked to a remote sync account.
func (s *Store) CountSyncedAccounts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM accounts WHERE sync_account_name IS NOT NULL AND sync_account_name != ''",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count synced accounts: %w", err)
	}
	return count, nil
}

// RelaxSeals moves every sealed account to the transient state so that a repair may touch
// their transactions.
func (s *Store) RelaxSeals(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE accounts SET sealed = ? WHERE sealed = ?", constants.SealedTransient, constants.Sealed)
	if err != nil {
		return 0, fmt.Errorf("failed to relax account seals: %w", err)
	}
	return result.RowsAffected()
}

// RestoreTransientSeals turns every transiently unsealed account back into a sealed one
// and returns how many were affected.
func (s *Store) RestoreTransientSeals(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE accounts SET sealed = ? WHERE sealed = ?", constants.Sealed, constants.SealedTransient)
	if err != nil {
		return 0, fmt.Errorf("failed to restore account seals: %w", err)
	}
	return result.RowsAffected()
}

func expectOne(result sql.Result, entity string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %d: %w", entity, id, ErrRecordNotFound)
	}
	return nil
}
