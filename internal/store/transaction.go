package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hance08/tally/internal/model"
)

const transactionColumns = `_id, account_id, amount, CAST(date AS INTEGER), cat_id, payee_id, coalesce(comment, ''), method_id,
	cr_status, status, coalesce(number, ''), coalesce(picture_id, ''), parent_id, transfer_peer,
	transfer_account, debt_id, coalesce(uuid, '')`

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	tx := &model.Transaction{}
	var catID, payeeID, methodID, parentID, peer, peerAccount, debtID sql.NullInt64
	err := row.Scan(
		&tx.ID, &tx.AccountID, &tx.Amount, &tx.Date, &catID, &payeeID, &tx.Comment, &methodID,
		&tx.CrStatus, &tx.Status, &tx.Number, &tx.PictureURI, &parentID, &peer,
		&peerAccount, &debtID, &tx.UUID,
	)
	if err != nil {
		return nil, err
	}
	tx.CategoryID = ptr(catID)
	tx.PayeeID = ptr(payeeID)
	tx.MethodID = ptr(methodID)
	tx.ParentID = ptr(parentID)
	tx.TransferPeer = ptr(peer)
	tx.TransferAccount = ptr(peerAccount)
	tx.DebtID = ptr(debtID)
	return tx, nil
}

// InsertTransaction stores tx and returns its id. Transfer peer links are set afterwards
// with LinkTransferPeer because both legs must exist first.
func (s *Store) InsertTransaction(ctx context.Context, tx *model.Transaction) (int64, error) {
	var newID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (account_id, amount, date, cat_id, payee_id, comment, method_id,
			cr_status, status, number, picture_id, parent_id, transfer_account, debt_id, uuid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING _id;
	`,
		tx.AccountID, tx.Amount, tx.Date, nullable(tx.CategoryID), nullable(tx.PayeeID),
		nullString(tx.Comment), nullable(tx.MethodID), tx.CrStatus, tx.Status,
		nullString(tx.Number), nullString(tx.PictureURI), nullable(tx.ParentID),
		nullable(tx.TransferAccount), nullable(tx.DebtID), nullString(tx.UUID),
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", mapError(err))
	}
	return newID, nil
}

func (s *Store) LinkTransferPeer(ctx context.Context, id, peerID int64) error {
	result, err := s.db.ExecContext(ctx, "UPDATE transactions SET transfer_peer = ? WHERE _id = ?", peerID, id)
	if err != nil {
		return fmt.Errorf("failed to link transfer peer: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

func (s *Store) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE _id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return tx, nil
}

// GetSplitParts returns the children of a split parent in insertion order.
func (s *Store) GetSplitParts(ctx context.Context, parentID int64) ([]*model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE parent_id = ? ORDER BY _id", parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query split parts: %w", err)
	}
	defer rows.Close()

	var parts []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split part: %w", err)
		}
		parts = append(parts, tx)
	}
	return parts, rows.Err()
}

// UpdateTransactionAccount moves a transaction to another account. For a transfer leg the
// storage trigger keeps the peer's transfer_account in step.
func (s *Store) UpdateTransactionAccount(ctx context.Context, id, accountID int64) error {
	result, err := s.db.ExecContext(ctx, "UPDATE transactions SET account_id = ? WHERE _id = ?", accountID, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction account: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id int64, status int) error {
	result, err := s.db.ExecContext(ctx, "UPDATE transactions SET status = ? WHERE _id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

func (s *Store) UpdateTransactionComment(ctx context.Context, id int64, comment string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE transactions SET comment = ? WHERE _id = ?", nullString(comment), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

func (s *Store) SetTransactionDebt(ctx context.Context, id int64, debtID *int64) error {
	result, err := s.db.ExecContext(ctx, "UPDATE transactions SET debt_id = ? WHERE _id = ?", nullable(debtID), id)
	if err != nil {
		return fmt.Errorf("failed to link debt: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

// UnlinkTransferPeers clears the peer link of the given transactions and of every
// transaction pointing at one of them, so that they can be deleted.
func (s *Store) UnlinkTransferPeers(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	marks := "?" + strings.Repeat(", ?", len(ids)-1)
	args := make([]any, 0, 2*len(ids))
	for range 2 {
		for _, id := range ids {
			args = append(args, id)
		}
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET transfer_peer = NULL WHERE _id IN ("+marks+") OR transfer_peer IN ("+marks+")",
		args...)
	if err != nil {
		return fmt.Errorf("failed to unlink transfer peers: %w", mapError(err))
	}
	return nil
}

// DeleteTransaction removes a transaction; split parts follow through ON DELETE CASCADE.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE _id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", mapError(err))
	}
	return expectOne(result, "transaction", id)
}

// SumSplitParts returns the signed sum of the parts of a split parent.
func (s *Store) SumSplitParts(ctx context.Context, parentID int64) (int64, error) {
	var sum sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		"SELECT sum(amount) FROM transactions WHERE parent_id = ?", parentID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum split parts: %w", err)
	}
	return sum.Int64, nil
}
