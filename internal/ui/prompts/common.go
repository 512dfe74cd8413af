package prompts

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptConfirm prompts for yes/no confirmation
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	confirm := defaultValue

	err := huh.NewConfirm().
		Title(message).
		Value(&confirm).
		Affirmative("Yes").
		Negative("No").
		Run()

	return confirm, err
}

// Choice is one entry of a code picker, shown as "CODE - Name".
type Choice struct {
	Code string
	Name string
}

// otherCode marks the entry that asks for a free code.
const otherCode = ""

func (c Choice) label() string {
	if c.Code == otherCode {
		return c.Name
	}
	return c.Code + " - " + c.Name
}

// choiceOptions builds the picker entries and the code to start on. An unknown current
// code starts on the free entry when there is one.
func choiceOptions(choices []Choice, current string) ([]huh.Option[string], string) {
	current = normalizeCode(current)
	start := ""
	found := false
	opts := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		opts = append(opts, huh.NewOption(c.label(), c.Code))
		if c.Code == current {
			start, found = c.Code, true
		}
	}
	if !found && len(choices) > 0 {
		start = choices[0].Code
		for _, c := range choices {
			if c.Code == otherCode {
				start = otherCode
			}
		}
	}
	return opts, start
}

// PromptChoice lets the user pick a code, starting on current. It returns otherCode when
// the free entry is picked.
func PromptChoice(title string, choices []Choice, current string) (string, error) {
	opts, selected := choiceOptions(choices, current)
	err := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected).
		Run()
	return selected, err
}

// checkCode normalizes a typed code and runs validate on it.
func checkCode(s string, validate func(string) error) error {
	code := normalizeCode(s)
	if code == "" {
		return errors.New("a code is required")
	}
	if validate != nil {
		return validate(code)
	}
	return nil
}

// PromptCode asks for a code such as an ISO 4217 currency and returns it upper-cased.
func PromptCode(title string, validate func(string) error) (string, error) {
	var code string
	err := huh.NewInput().
		Title(title).
		CharLimit(3).
		Value(&code).
		Validate(func(s string) error { return checkCode(s, validate) }).
		Run()
	if err != nil {
		return "", err
	}
	return normalizeCode(code), nil
}
