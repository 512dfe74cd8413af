package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/validation"
)

type AccountService struct {
	repo   store.Repository
	config Config
}

func NewAccountService(repo store.Repository, cfg Config) *AccountService {
	return &AccountService{repo: repo, config: cfg}
}

type AccountInput struct {
	Label          string
	Type           string
	Currency       string
	OpeningBalance int64
	Description    string
}

var accountTypes = []string{
	constants.AccountTypeCash,
	constants.AccountTypeBank,
	constants.AccountTypeCCard,
	constants.AccountTypeAsset,
	constants.AccountTypeLiability,
}

func (as *AccountService) CreateAccount(ctx context.Context, input AccountInput) (*model.Account, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" || len(label) > constants.MaxLabelLen {
		return nil, fmt.Errorf("%w: account label must be 1 to %d characters", ErrInvalidInput, constants.MaxLabelLen)
	}

	accType := strings.ToUpper(strings.TrimSpace(input.Type))
	if accType == "" {
		accType = constants.AccountTypeCash
	}
	valid := false
	for _, t := range accountTypes {
		valid = valid || t == accType
	}
	if !valid {
		return nil, fmt.Errorf("%w: unknown account type '%s'", ErrInvalidInput, input.Type)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = as.config.DefaultCurrency
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	account := &model.Account{
		Label:          label,
		OpeningBalance: input.OpeningBalance,
		Description:    input.Description,
		Currency:       currency,
		Type:           accType,
	}
	id, err := as.repo.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id
	return account, nil
}

func (as *AccountService) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	return as.repo.GetAllAccounts(ctx)
}

func (as *AccountService) GetAccountByLabel(ctx context.Context, label string) (*model.Account, error) {
	return as.repo.GetAccountByLabel(ctx, label)
}

// SealAccount freezes the protected fields of the account's transactions.
func (as *AccountService) SealAccount(ctx context.Context, id int64) error {
	return as.repo.SetAccountSealed(ctx, id, constants.Sealed)
}

func (as *AccountService) UnsealAccount(ctx context.Context, id int64) error {
	return as.repo.SetAccountSealed(ctx, id, constants.Unsealed)
}
