package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hance08/tally/internal/model"
)

func (s *Store) CreateCategory(ctx context.Context, label string, parentID *int64) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO categories (label, parent_id) VALUES (?, ?) RETURNING _id",
		label, nullable(parentID),
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category '%s': %w", label, mapError(err))
	}
	return newID, nil
}

func (s *Store) GetAllCategories(ctx context.Context) ([]*model.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT _id, label, parent_id FROM categories ORDER BY _id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c := &model.Category{}
		var parentID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Label, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ParentID = ptr(parentID)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateTag(ctx context.Context, label string) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, "INSERT INTO tags (label) VALUES (?) RETURNING _id", label).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag '%s': %w", label, mapError(err))
	}
	return newID, nil
}

func (s *Store) LinkTags(ctx context.Context, transactionID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO transactions_tags (tag_id, transaction_id) VALUES (?, ?)",
			tagID, transactionID)
		if err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tagID, mapError(err))
		}
	}
	return nil
}

// TagLabels returns the tag labels of every transaction of the account, keyed by
// transaction id, in tag insertion order.
func (s *Store) TagLabels(ctx context.Context, accountID int64) (map[int64][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tt.transaction_id, tg.label
		FROM transactions_tags tt
		INNER JOIN tags tg ON tg._id = tt.tag_id
		INNER JOIN transactions t ON t._id = tt.transaction_id
		WHERE t.account_id = ?
		ORDER BY tt.transaction_id, tg._id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	labels := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		labels[id] = append(labels[id], label)
	}
	return labels, rows.Err()
}

func (s *Store) FindOrCreatePayee(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT _id FROM payee WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query payee: %w", err)
	}
	err = s.db.QueryRowContext(ctx, "INSERT INTO payee (name) VALUES (?) RETURNING _id", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payee '%s': %w", name, mapError(err))
	}
	return id, nil
}

func (s *Store) FindMethod(ctx context.Context, label string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT _id FROM paymentmethods WHERE label = ?", label).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("payment method '%s': %w", label, ErrRecordNotFound)
		}
		return 0, fmt.Errorf("failed to query payment method: %w", err)
	}
	return id, nil
}
