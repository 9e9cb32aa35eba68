package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/ui"
)

// InvalidVariantError is returned when a requested variant is not declared
// by the project.
type InvalidVariantError struct {
	Variant string
	Valid   []string
}

// Error implements the error interface.
func (e *InvalidVariantError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("unknown build variant %q: the project declares no variants", e.Variant)
	}
	return fmt.Sprintf("unknown build variant %q (available: %s)", e.Variant, strings.Join(e.Valid, ", "))
}

// TaskError is a failed named task run through RunRetryableTask.
type TaskError struct {
	Task string
	Err  error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Task, e.Err)
}

// Unwrap returns the task's own error.
func (e *TaskError) Unwrap() error { return e.Err }

// ErrNoTransition indicates a handler produced an event its stage does not
// accept. It is a programming error surfaced as a failed session.
var ErrNoTransition = errors.New("no transition")

// reportFailure prints err with its diagnostic and any remediation hint.
func reportFailure(err error) {
	var buildErr *build.Error
	var installErr *install.FailedError

	switch {
	case errors.As(err, &buildErr):
		ui.PrintError("%s", buildErr.Message)
		if buildErr.Diagnostic != "" {
			ui.PrintDim("%s", indent(buildErr.Diagnostic))
		}
		ui.PrintGuidance(buildErr.Guidance)
	case errors.As(err, &installErr):
		ui.PrintError("%s", installErr.Error())
		ui.PrintGuidance(installErr.Suggestion)
	default:
		ui.PrintError("%v", err)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
