package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PurgeOrphanTransactions deletes transactions whose account no longer exists.
func (s *Store) PurgeOrphanTransactions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE account_id NOT IN (SELECT _id FROM accounts)")
	if err != nil {
		return 0, fmt.Errorf("failed to purge orphan transactions: %w", mapError(err))
	}
	return result.RowsAffected()
}

// TransactionSequence returns the last id handed out for transactions, 0 if none.
func (s *Store) TransactionSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, "SELECT seq FROM sqlite_sequence WHERE name = 'transactions'").Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read transaction sequence: %w", err)
	}
	return seq, nil
}

// HasNonTransferIncome reports whether any positive amount outside a transfer exists.
func (s *Store) HasNonTransferIncome(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM transactions WHERE amount > 0 AND transfer_peer IS NULL)",
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query income: %w", err)
	}
	return exists, nil
}

// CorruptedSplitIDs lists split parents that have a part in a different account or whose
// parts do not add up to the parent amount.
func (s *Store) CorruptedSplitIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p._id FROM transactions p
		WHERE EXISTS (SELECT 1 FROM transactions c WHERE c.parent_id = p._id)
		AND (
			EXISTS (SELECT 1 FROM transactions c WHERE c.parent_id = p._id AND c.account_id != p.account_id)
			OR p.amount != (SELECT sum(c.amount) FROM transactions c WHERE c.parent_id = p._id)
		)
		ORDER BY p._id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query split transactions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan split transaction: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
