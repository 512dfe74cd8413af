package prompts

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/hance08/tally/internal/model"
)

// PromptExportAccounts lets the user pick the accounts to export. Sealed accounts are
// listed too; exporting them only reads.
func PromptExportAccounts(accounts []*model.Account) ([]*model.Account, error) {
	if len(accounts) == 0 {
		return nil, errors.New("there are no accounts to export")
	}

	var options []huh.Option[int]
	for i, acc := range accounts {
		label := fmt.Sprintf("%s (%s, %s)", acc.Label, acc.Type, acc.Currency)
		if acc.IsSealed() {
			label += " [sealed]"
		}
		options = append(options, huh.NewOption(label, i))
	}

	var selected []int
	err := huh.NewMultiSelect[int]().
		Title("Accounts to export:").
		Description("Space toggles an account, Enter confirms.").
		Options(options...).
		Value(&selected).
		Height(12).
		Validate(func(v []int) error {
			if len(v) == 0 {
				return errors.New("select at least one account")
			}
			return nil
		}).
		Run()
	if err != nil {
		return nil, fmt.Errorf("input cancelled: %w", err)
	}

	picked := make([]*model.Account, 0, len(selected))
	for _, i := range selected {
		picked = append(picked, accounts[i])
	}
	return picked, nil
}

var commonCurrencies = []Choice{
	{"USD", "US Dollar"},
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"CNY", "Chinese Yuan"},
	{"TWD", "Taiwan Dollar"},
	{"HKD", "Hong Kong Dollar"},
	{"SGD", "Singapore Dollar"},
	{otherCode, "Other ISO 4217 code"},
}

// PromptCurrency offers the common currencies and falls back to a free ISO code.
func PromptCurrency(defaultCurrency string, validate func(string) error) (string, error) {
	message := fmt.Sprintf("Home currency (default: %s):", defaultCurrency)

	selected, err := PromptChoice(message, commonCurrencies, defaultCurrency)
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	if selected != otherCode {
		return selected, nil
	}

	code, err := PromptCode("Currency code:", validate)
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return code, nil
}
