package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hance08/tally/internal/constants"
)

// ExportRow is a transaction resolved for serialization: references are replaced by the
// labels the formats print.
type ExportRow struct {
	ID                   int64
	AccountID            int64
	Amount               int64
	Date                 int64
	CategoryID           *int64
	Payee                string
	Comment              string
	Method               string
	CrStatus             string
	Number               string
	PictureURI           string
	ParentID             *int64
	IsTransfer           bool
	TransferAccountLabel string
	DebtSealed           bool
}

const exportSelect = `
	SELECT t._id, t.account_id, t.amount, CAST(t.date AS INTEGER), t.cat_id, coalesce(p.name, ''), coalesce(t.comment, ''),
		coalesce(m.label, ''), t.cr_status, coalesce(t.number, ''), coalesce(t.picture_id, ''),
		t.parent_id, t.transfer_peer IS NOT NULL, coalesce(ta.label, ''), coalesce(d.sealed, 0)
	FROM transactions t
	LEFT JOIN payee p ON p._id = t.payee_id
	LEFT JOIN paymentmethods m ON m._id = t.method_id
	LEFT JOIN accounts ta ON ta._id = t.transfer_account
	LEFT JOIN debts d ON d._id = t.debt_id
`

func scanExportRow(rows *sql.Rows) (*ExportRow, error) {
	r := &ExportRow{}
	var catID, parentID sql.NullInt64
	err := rows.Scan(
		&r.ID, &r.AccountID, &r.Amount, &r.Date, &catID, &r.Payee, &r.Comment,
		&r.Method, &r.CrStatus, &r.Number, &r.PictureURI,
		&parentID, &r.IsTransfer, &r.TransferAccountLabel, &r.DebtSealed,
	)
	if err != nil {
		return nil, err
	}
	r.CategoryID = ptr(catID)
	r.ParentID = ptr(parentID)
	return r, nil
}

// EachExportRow calls fn for every top-level transaction of the account in date order,
// ties broken by id. Splits under construction are never exported.
func (s *Store) EachExportRow(ctx context.Context, accountID int64, onlyNotExported bool, fn func(*ExportRow) error) error {
	query := exportSelect + " WHERE t.account_id = ? AND t.parent_id IS NULL AND t.status != ?"
	args := []any{accountID, constants.StatusUncommitted}
	if onlyNotExported {
		query += " AND t.status != ?"
		args = append(args, constants.StatusExported)
	}
	query += " ORDER BY t.date, t._id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query transactions for export: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanExportRow(rows)
		if err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ExportSplitParts loads the split parts of every split parent in the account, keyed by
// parent id, each list in insertion order.
func (s *Store) ExportSplitParts(ctx context.Context, accountID int64) (map[int64][]*ExportRow, error) {
	rows, err := s.db.QueryContext(ctx,
		exportSelect+" WHERE t.account_id = ? AND t.parent_id IS NOT NULL ORDER BY t.parent_id, t._id",
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query split parts for export: %w", err)
	}
	defer rows.Close()

	parts := make(map[int64][]*ExportRow)
	for rows.Next() {
		r, err := scanExportRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split part: %w", err)
		}
		parts[*r.ParentID] = append(parts[*r.ParentID], r)
	}
	return parts, rows.Err()
}

const markChunk = 500

// MarkExported sets status exported on the given transactions and returns how many rows
// changed. Transactions linked to a sealed debt are left untouched.
func (s *Store) MarkExported(ctx context.Context, ids []int64) (int64, error) {
	var marked int64
	for start := 0; start < len(ids); start += markChunk {
		end := min(start+markChunk, len(ids))
		chunk := ids[start:end]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, constants.StatusExported)
		for _, id := range chunk {
			args = append(args, id)
		}
		query := `UPDATE transactions SET status = ? WHERE _id IN (?` + strings.Repeat(", ?", len(chunk)-1) + `)
			AND (debt_id IS NULL OR debt_id NOT IN (SELECT _id FROM debts WHERE sealed = 1))`

		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return marked, fmt.Errorf("failed to mark transactions exported: %w", mapError(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return marked, fmt.Errorf("failed to get rows affected: %w", err)
		}
		marked += n
	}
	return marked, nil
}
