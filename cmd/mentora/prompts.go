package main

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// isInteractive returns true if stdin is a terminal, i.e. if it makes sense
// to prompt for missing input.
func isInteractive() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd()))
}

// ensureInput prompts for *value if it is empty and stdin is a terminal. It
// returns an error if *value is still empty afterwards.
func ensureInput(value *string, name string, prompt survey.Prompt) error {
	if *value == "" && isInteractive() {
		if err := survey.AskOne(prompt, value); err != nil {
			return errors.Wrapf(err, "error prompting for %s", name)
		}
	}
	if *value == "" {
		return errors.Errorf("%s is required", name)
	}
	return nil
}
