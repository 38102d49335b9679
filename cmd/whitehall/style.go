package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/grindlemire/whitehall/internal/build"
	"github.com/grindlemire/whitehall/internal/whgen"
)

var (
	successColor = lipgloss.Color("#10b981")
	errorColor   = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#94a3b8")

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// reportError prints err with source snippets when it carries unit
// failures. It returns the error that should end the command.
func reportError(err error) error {
	var berr *build.Error
	if errors.As(err, &berr) {
		for _, u := range berr.Units {
			fmt.Fprintf(os.Stderr, "%s %s\n\n", errorStyle.Render("error:"), u.Render())
		}
		return errors.Newf("%d unit(s) had errors", len(berr.Units))
	}
	var werr *whgen.Error
	if errors.As(err, &werr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("error:"), werr.Render())
		return errors.New("compilation failed")
	}
	return err
}

// printError prints the final error of a command and any hints it carries.
func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(os.Stderr, mutedStyle.Render("hint: "+hint))
	}
}
