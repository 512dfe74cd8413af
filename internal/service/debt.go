package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
	"github.com/hance08/tally/internal/validation"
)

type DebtService struct {
	repo store.Repository
}

func NewDebtService(repo store.Repository) *DebtService {
	return &DebtService{repo: repo}
}

type DebtInput struct {
	Label       string
	Payee       string
	Amount      int64
	Currency    string
	Date        int64
	Description string
}

func (ds *DebtService) toModel(ctx context.Context, in DebtInput) (*model.Debt, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, fmt.Errorf("%w: debt label can't be empty", ErrInvalidInput)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	date := in.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	debt := &model.Debt{Label: label, Amount: in.Amount, Currency: currency, Date: date, Description: in.Description}
	if payee := strings.TrimSpace(in.Payee); payee != "" {
		id, err := ds.repo.FindOrCreatePayee(ctx, payee)
		if err != nil {
			return nil, err
		}
		debt.PayeeID = id
	}
	return debt, nil
}

func (ds *DebtService) CreateDebt(ctx context.Context, in DebtInput) (int64, error) {
	debt, err := ds.toModel(ctx, in)
	if err != nil {
		return 0, err
	}
	return ds.repo.CreateDebt(ctx, debt)
}

// UpdateDebt overwrites the debt's fields. A sealed debt rejects the update with
// store.ErrIntegrityViolation.
func (ds *DebtService) UpdateDebt(ctx context.Context, id int64, in DebtInput) error {
	debt, err := ds.toModel(ctx, in)
	if err != nil {
		return err
	}
	debt.ID = id
	return ds.repo.UpdateDebt(ctx, debt)
}

func (ds *DebtService) GetDebt(ctx context.Context, id int64) (*model.Debt, error) {
	return ds.repo.GetDebt(ctx, id)
}

// SealDebt closes the debt; its fields and linked transactions become immutable.
func (ds *DebtService) SealDebt(ctx context.Context, id int64) error {
	return ds.repo.SetDebtSealed(ctx, id, true)
}

func (ds *DebtService) UnsealDebt(ctx context.Context, id int64) error {
	return ds.repo.SetDebtSealed(ctx, id, false)
}

func (ds *DebtService) DeleteDebt(ctx context.Context, id int64) error {
	return ds.repo.DeleteDebt(ctx, id)
}

// CreateBudget adds a budget for an account, or for an aggregate currency when accountID
// is nil.
func (ds *DebtService) CreateBudget(ctx context.Context, title, grouping string, accountID *int64, currency string) (int64, error) {
	if strings.TrimSpace(grouping) == "" {
		return 0, fmt.Errorf("%w: budget grouping can't be empty", ErrInvalidInput)
	}
	return ds.repo.CreateBudget(ctx, &model.Budget{
		Title:     title,
		Grouping:  strings.ToUpper(grouping),
		AccountID: accountID,
		Currency:  currency,
	})
}
