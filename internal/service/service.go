// Package service is the mutation gateway of the ledger. Every change goes through the
// store so that its integrity triggers see it.
package service

import (
	"errors"
	"log/slog"

	"github.com/hance08/tally/internal/store"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSplitUnbalanced = errors.New("split parts do not add up to the split total")
)

type Config struct {
	DefaultCurrency string
}

type Service struct {
	Account     *AccountService
	Category    *CategoryService
	Transaction *TransactionService
	Debt        *DebtService
}

func NewService(repo store.Repository, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		Account:     NewAccountService(repo, cfg),
		Category:    NewCategoryService(repo),
		Transaction: NewTransactionService(repo, logger),
		Debt:        NewDebtService(repo),
	}
}
