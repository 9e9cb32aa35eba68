// Package prompt defines the interactive input contract shared by the
// device, install and orchestrator packages.
//
// Two implementations exist: the Bubble Tea prompter in internal/tui for
// humans at a terminal, and NonInteractive for CI and piped invocations,
// which substitutes defaults and never blocks.
package prompt

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned by a Prompter when the user interrupts a prompt
// (Ctrl-C or Esc). Callers unwind gracefully instead of reporting a failure.
var ErrCancelled = errors.New("cancelled by user")

// ErrInputRequired is returned by a non-interactive Prompter when a prompt
// has no default and an explicit answer is needed.
var ErrInputRequired = errors.New("an explicit choice is required but the session is not interactive")

// NoDefault marks a Select prompt that has no default option.
const NoDefault = -1

// Prompter asks the user questions.
type Prompter interface {
	// Select asks the user to pick one of options and returns its index.
	// defaultIndex is NoDefault when no option is preselected.
	Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)

	// Input asks for a single line of free text.
	Input(ctx context.Context, message, placeholder string) (string, error)

	// Interactive reports whether answers come from a human.
	Interactive() bool
}

// IsCancelled reports whether err represents a user interrupt, either an
// explicit ErrCancelled or a cancelled context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsTerminal reports whether both stdin and stdout are attached to a terminal.
func IsTerminal() bool {
	in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return in && out
}

// NonInteractive answers every prompt with its default.
type NonInteractive struct{}

// Select returns defaultIndex, or ErrInputRequired when there is none.
func (NonInteractive) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		return -1, ErrInputRequired
	}
	return defaultIndex, nil
}

// Confirm returns defaultYes.
func (NonInteractive) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return defaultYes, nil
}

// Input returns ErrInputRequired; free text has no sensible default.
func (NonInteractive) Input(ctx context.Context, message, placeholder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrInputRequired
}

// Interactive always reports false.
func (NonInteractive) Interactive() bool { return false }
