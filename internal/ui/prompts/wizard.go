package prompts

import (
	"strings"

	"github.com/hance08/tally/internal/validation"
)

// PromptInitCurrency asks for the home currency on the first run.
func PromptInitCurrency(currDefault string) (string, error) {
	return PromptCurrency(currDefault, func(code string) error {
		return validation.ValidateCurrency(code)
	})
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
