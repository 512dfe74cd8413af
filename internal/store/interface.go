package store

import (
	"context"

	"github.com/hance08/tally/internal/model"
)

// Repository is the ledger surface used by the service layer.
type Repository interface {
	ExecTx(ctx context.Context, fn func(*Store) error) error

	// Account Operations
	CreateAccount(ctx context.Context, acc *model.Account) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByLabel(ctx context.Context, label string) (*model.Account, error)
	GetAllAccounts(ctx context.Context) ([]*model.Account, error)
	SetAccountSealed(ctx context.Context, id int64, sealed int) error

	// Transaction Operations
	InsertTransaction(ctx context.Context, tx *model.Transaction) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	LinkTransferPeer(ctx context.Context, id, peerID int64) error
	GetSplitParts(ctx context.Context, parentID int64) ([]*model.Transaction, error)
	SumSplitParts(ctx context.Context, parentID int64) (int64, error)
	UpdateTransactionAccount(ctx context.Context, id, accountID int64) error
	UpdateTransactionStatus(ctx context.Context, id int64, status int) error
	UpdateTransactionComment(ctx context.Context, id int64, comment string) error
	SetTransactionDebt(ctx context.Context, id int64, debtID *int64) error
	UnlinkTransferPeers(ctx context.Context, ids []int64) error
	DeleteTransaction(ctx context.Context, id int64) error

	// Category, tag, payee
	CreateCategory(ctx context.Context, label string, parentID *int64) (int64, error)
	GetAllCategories(ctx context.Context) ([]*model.Category, error)
	CreateTag(ctx context.Context, label string) (int64, error)
	LinkTags(ctx context.Context, transactionID int64, tagIDs []int64) error
	FindOrCreatePayee(ctx context.Context, name string) (int64, error)
	FindMethod(ctx context.Context, label string) (int64, error)

	// Debt and budget
	CreateDebt(ctx context.Context, debt *model.Debt) (int64, error)
	GetDebt(ctx context.Context, id int64) (*model.Debt, error)
	UpdateDebt(ctx context.Context, debt *model.Debt) error
	SetDebtSealed(ctx context.Context, id int64, sealed bool) error
	DeleteDebt(ctx context.Context, id int64) error
	CreateBudget(ctx context.Context, budget *model.Budget) (int64, error)

	Close() error
}

var _ Repository = (*Store)(nil)
