package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hance08/tally/internal/model"
)

func (s *Store) CreateDebt(ctx context.Context, debt *model.Debt) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO debts (payee_id, date, label, amount, currency, description, sealed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING _id;
	`, nullID(debt.PayeeID), debt.Date, debt.Label, debt.Amount, debt.Currency, nullString(debt.Description), debt.Sealed).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert debt '%s': %w", debt.Label, mapError(err))
	}
	return newID, nil
}

func (s *Store) GetDebt(ctx context.Context, id int64) (*model.Debt, error) {
	d := &model.Debt{}
	err := s.db.QueryRowContext(ctx, `
		SELECT _id, coalesce(payee_id, 0), CAST(date AS INTEGER), label, amount, currency, coalesce(description, ''), coalesce(sealed, 0)
		FROM debts WHERE _id = ?
	`, id).Scan(&d.ID, &d.PayeeID, &d.Date, &d.Label, &d.Amount, &d.Currency, &d.Description, &d.Sealed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("debt with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query debt: %w", err)
	}
	return d, nil
}

// UpdateDebt writes the mutable fields. A sealed debt is rejected by the storage trigger
// with ErrIntegrityViolation.
func (s *Store) UpdateDebt(ctx context.Context, debt *model.Debt) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE debts SET date = ?, label = ?, amount = ?, currency = ?, description = ?
		WHERE _id = ?
	`, debt.Date, debt.Label, debt.Amount, debt.Currency, nullString(debt.Description), debt.ID)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", mapError(err))
	}
	return expectOne(result, "debt", debt.ID)
}

func (s *Store) SetDebtSealed(ctx context.Context, id int64, sealed bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE debts SET sealed = ? WHERE _id = ?", sealed, id)
	if err != nil {
		return fmt.Errorf("failed to update debt seal: %w", mapError(err))
	}
	return expectOne(result, "debt", id)
}

func (s *Store) DeleteDebt(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM debts WHERE _id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", mapError(err))
	}
	return expectOne(result, "debt", id)
}
