package prompts

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/hance08/tally/internal/ui"
)

// PromptAcknowledge waits until the user confirms having read a notice.
func PromptAcknowledge() error {
	var ok bool
	prompt := &survey.Confirm{
		Message: "Got it?",
		Default: true,
	}
	return survey.AskOne(prompt, &ok, ui.IconOption())
}
