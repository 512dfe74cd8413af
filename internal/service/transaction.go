package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
)

type TransactionService struct {
	repo   store.Repository
	logger *slog.Logger
}

func NewTransactionService(repo store.Repository, logger *slog.Logger) *TransactionService {
	return &TransactionService{repo: repo, logger: logger}
}

// TransactionInput describes a transaction to add. Amount is in minor units and signed:
// positive for income, negative for expense.
type TransactionInput struct {
	AccountID  int64
	Amount     int64
	Date       int64 // unix seconds, now when zero
	CategoryID *int64
	Payee      string
	Method     string // payment method label, e.g. CHEQUE
	Comment    string
	CrStatus   string
	Number     string
	PictureURI string
	TagIDs     []int64
	DebtID     *int64
}

// TransferInput moves Amount into AccountID out of PeerAccountID; a negative amount moves
// it the other way.
type TransferInput struct {
	AccountID     int64
	PeerAccountID int64
	Amount        int64
	Date          int64
	Comment       string
	CrStatus      string
	Number        string
}

// SplitInput is a split transaction: Parent carries the total, Parts the pieces. Parts
// are booked on the parent's account.
type SplitInput struct {
	Parent TransactionInput
	Parts  []TransactionInput
}

func (ts *TransactionService) build(ctx context.Context, repo store.Repository, in TransactionInput) (*model.Transaction, error) {
	crStatus := in.CrStatus
	if crStatus == "" {
		crStatus = constants.CrUnreconciled
	}
	if !slices.Contains(constants.CrStatuses, crStatus) {
		return nil, fmt.Errorf("%w: unknown clearing status '%s'", ErrInvalidInput, in.CrStatus)
	}
	date := in.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	tx := &model.Transaction{
		AccountID:  in.AccountID,
		Amount:     in.Amount,
		Date:       date,
		CategoryID: in.CategoryID,
		Comment:    in.Comment,
		CrStatus:   crStatus,
		Status:     constants.StatusNone,
		Number:     in.Number,
		PictureURI: in.PictureURI,
		DebtID:     in.DebtID,
		UUID:       uuid.NewString(),
	}
	if payee := strings.TrimSpace(in.Payee); payee != "" {
		id, err := repo.FindOrCreatePayee(ctx, payee)
		if err != nil {
			return nil, err
		}
		tx.PayeeID = &id
	}
	if in.Method != "" {
		id, err := repo.FindMethod(ctx, in.Method)
		if err != nil {
			return nil, err
		}
		tx.MethodID = &id
	}
	return tx, nil
}

func (ts *TransactionService) insert(ctx context.Context, repo store.Repository, in TransactionInput, parentID *int64, status int) (int64, error) {
	tx, err := ts.build(ctx, repo, in)
	if err != nil {
		return 0, err
	}
	tx.ParentID = parentID
	tx.Status = status
	id, err := repo.InsertTransaction(ctx, tx)
	if err != nil {
		return 0, err
	}
	if len(in.TagIDs) > 0 {
		if err := repo.LinkTags(ctx, id, in.TagIDs); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// AddTransaction stores a single transaction with its payee, method and tags.
func (ts *TransactionService) AddTransaction(ctx context.Context, in TransactionInput) (int64, error) {
	var id int64
	err := ts.repo.ExecTx(ctx, func(repo *store.Store) error {
		var err error
		id, err = ts.insert(ctx, repo, in, nil, constants.StatusNone)
		return err
	})
	return id, err
}

// AddTransfer stores both legs of a transfer and links them, all or nothing. It returns
// the ids of the leg on AccountID and of the peer leg.
func (ts *TransactionService) AddTransfer(ctx context.Context, in TransferInput) (int64, int64, error) {
	if in.AccountID == in.PeerAccountID {
		return 0, 0, fmt.Errorf("%w: transfer needs two different accounts", ErrInvalidInput)
	}

	var id, peerID int64
	err := ts.repo.ExecTx(ctx, func(repo *store.Store) error {
		leg, err := ts.build(ctx, repo, TransactionInput{
			AccountID: in.AccountID, Amount: in.Amount, Date: in.Date,
			Comment: in.Comment, CrStatus: in.CrStatus, Number: in.Number,
		})
		if err != nil {
			return err
		}
		peer := *leg
		peer.AccountID, peer.Amount, peer.UUID = in.PeerAccountID, -in.Amount, uuid.NewString()
		leg.TransferAccount = &in.PeerAccountID
		peer.TransferAccount = &in.AccountID

		if id, err = repo.InsertTransaction(ctx, leg); err != nil {
			return err
		}
		if peerID, err = repo.InsertTransaction(ctx, &peer); err != nil {
			return err
		}
		if err := repo.LinkTransferPeer(ctx, id, peerID); err != nil {
			return err
		}
		return repo.LinkTransferPeer(ctx, peerID, id)
	})
	if err != nil {
		return 0, 0, err
	}
	return id, peerID, nil
}

// AddSplit stores the parent as uncommitted, adds the parts and commits the split only
// when the parts add up to the parent amount. Otherwise nothing is stored and
// ErrSplitUnbalanced is returned.
func (ts *TransactionService) AddSplit(ctx context.Context, in SplitInput) (int64, error) {
	if len(in.Parts) == 0 {
		return 0, fmt.Errorf("%w: split needs at least one part", ErrInvalidInput)
	}

	var parentID int64
	err := ts.repo.ExecTx(ctx, func(repo *store.Store) error {
		var err error
		parentID, err = ts.insert(ctx, repo, in.Parent, nil, constants.StatusUncommitted)
		if err != nil {
			return err
		}
		for _, part := range in.Parts {
			part.AccountID = in.Parent.AccountID
			if part.Date == 0 {
				part.Date = in.Parent.Date
			}
			if _, err := ts.insert(ctx, repo, part, &parentID, constants.StatusNone); err != nil {
				return err
			}
		}
		return ts.commitSplit(ctx, repo, parentID, in.Parent.Amount)
	})
	if err != nil {
		return 0, err
	}
	return parentID, nil
}

func (ts *TransactionService) commitSplit(ctx context.Context, repo store.Repository, parentID, total int64) error {
	sum, err := repo.SumSplitParts(ctx, parentID)
	if err != nil {
		return err
	}
	if sum != total {
		return fmt.Errorf("%w: parts sum to %d, total is %d", ErrSplitUnbalanced, sum, total)
	}
	return repo.UpdateTransactionStatus(ctx, parentID, constants.StatusNone)
}

// Reassign moves a transaction to another account. Split parts move with their parent and
// the peer of a transfer leg is updated by the store.
func (ts *TransactionService) Reassign(ctx context.Context, id, accountID int64) error {
	return ts.repo.ExecTx(ctx, func(repo *store.Store) error {
		parts, err := repo.GetSplitParts(ctx, id)
		if err != nil {
			return err
		}
		for _, part := range parts {
			if err := repo.UpdateTransactionAccount(ctx, part.ID, accountID); err != nil {
				return err
			}
		}
		if err := repo.UpdateTransactionAccount(ctx, id, accountID); err != nil {
			return err
		}
		ts.logger.Debug("reassigned transaction", slog.Int64("id", id), slog.Int64("account", accountID), slog.Int("parts", len(parts)))
		return nil
	})
}

func (ts *TransactionService) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return ts.repo.GetTransactionByID(ctx, id)
}

func (ts *TransactionService) UpdateComment(ctx context.Context, id int64, comment string) error {
	return ts.repo.UpdateTransactionComment(ctx, id, comment)
}

// LinkDebt attaches the transaction to a debt, or detaches it when debtID is nil.
func (ts *TransactionService) LinkDebt(ctx context.Context, id int64, debtID *int64) error {
	return ts.repo.SetTransactionDebt(ctx, id, debtID)
}

// DeleteTransaction removes a transaction with its split parts. A transfer leg takes its
// peer along, and so does every transfer among the parts.
func (ts *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	return ts.repo.ExecTx(ctx, func(repo *store.Store) error {
		tx, err := repo.GetTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		parts, err := repo.GetSplitParts(ctx, id)
		if err != nil {
			return err
		}

		linked := []int64{id}
		var peers []int64
		if tx.TransferPeer != nil {
			peers = append(peers, *tx.TransferPeer)
		}
		for _, p := range parts {
			linked = append(linked, p.ID)
			if p.TransferPeer != nil {
				peers = append(peers, *p.TransferPeer)
			}
		}
		if err := repo.UnlinkTransferPeers(ctx, linked); err != nil {
			return err
		}

		for _, peerID := range peers {
			if err := repo.DeleteTransaction(ctx, peerID); err != nil {
				return err
			}
		}
		if err := repo.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		ts.logger.Info("deleted transaction",
			slog.Int64("id", id), slog.Int("parts", len(parts)), slog.Int("peers", len(peers)))
		return nil
	})
}
