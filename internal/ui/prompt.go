package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

// SelectModel prompts the user to pick a model from options
func SelectModel(options []string, current string) (string, error) {
	var model string
	prompt := &survey.Select{
		Message: "Select the default model:",
		Options: options,
	}
	for _, option := range options {
		if option == current {
			prompt.Default = current
		}
	}

	if err := survey.AskOne(prompt, &model); err != nil {
		return "", err
	}

	return model, nil
}

// PromptSecret asks for a key without echoing it
func PromptSecret(alias string) (string, error) {
	var secret string
	prompt := &survey.Password{
		Message: fmt.Sprintf("Enter key for %s:", alias),
	}

	if err := survey.AskOne(prompt, &secret, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return secret, nil
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError reports a fatal error on stderr
func ShowError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(os.Stderr, "✗ %v\n", err)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection writes a section header to w
func ShowSection(w io.Writer, title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "%s\n\n", title)
}
