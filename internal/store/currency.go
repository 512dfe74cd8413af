package store

import (
	"context"
	"fmt"
)

// DeleteCurrency removes code and reports whether a row was deleted.
func (s *Store) DeleteCurrency(ctx context.Context, code string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM currency WHERE code = ?", code)
	if err != nil {
		return false, fmt.Errorf("failed to delete currency %s: %w", code, mapError(err))
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

// InsertCurrency adds code. An existing code yields ErrDuplicate.
func (s *Store) InsertCurrency(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, "INSERT INTO currency (code) VALUES (?)", code); err != nil {
		return fmt.Errorf("failed to insert currency %s: %w", code, mapError(err))
	}
	return nil
}

func (s *Store) CurrencyCodes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code FROM currency ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (s *Store) SetCurrencySortDirection(ctx context.Context, code, direction string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE currency SET sort_direction = ? WHERE code = ?", direction, code)
	if err != nil {
		return 0, fmt.Errorf("failed to update sort direction of %s: %w", code, mapError(err))
	}
	return result.RowsAffected()
}
