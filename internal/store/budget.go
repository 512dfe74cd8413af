package store

import (
	"context"
	"fmt"

	"github.com/hance08/tally/internal/model"
)

func (s *Store) CreateBudget(ctx context.Context, budget *model.Budget) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (title, grouping, account_id, currency)
		VALUES (?, ?, ?, ?)
		RETURNING _id;
	`, budget.Title, budget.Grouping, nullable(budget.AccountID), nullString(budget.Currency)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert budget '%s': %w", budget.Title, mapError(err))
	}
	return newID, nil
}

func (s *Store) BudgetIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT _id FROM budgets ORDER BY _id")
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) IsDefaultBudget(ctx context.Context, id int64) (bool, error) {
	var isDefault bool
	if err := s.db.QueryRowContext(ctx, "SELECT is_default FROM budgets WHERE _id = ?", id).Scan(&isDefault); err != nil {
		return false, fmt.Errorf("failed to query budget %d: %w", id, err)
	}
	return isDefault, nil
}

// BudgetScope narrows which budget a default-budget marker may apply to.
type BudgetScope struct {
	Grouping string
	// AccountID selects budgets of a single account when positive.
	AccountID int64
	// Currency selects aggregate budgets by currency code.
	Currency string
	// CurrencyID selects aggregate budgets by currency row id.
	CurrencyID int64
}

// MarkDefaultBudget flags budget id as default if it matches scope and returns the number
// of rows updated.
func (s *Store) MarkDefaultBudget(ctx context.Context, id int64, scope BudgetScope) (int64, error) {
	query := "UPDATE budgets SET is_default = 1 WHERE _id = ? AND grouping = ? AND "
	args := []any{id, scope.Grouping}
	switch {
	case scope.AccountID > 0:
		query += "account_id = ?"
		args = append(args, scope.AccountID)
	case scope.Currency != "":
		query += "currency = ?"
		args = append(args, scope.Currency)
	default:
		query += "currency = (SELECT code FROM currency WHERE _id = ?)"
		args = append(args, scope.CurrencyID)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark default budget: %w", mapError(err))
	}
	return result.RowsAffected()
}
