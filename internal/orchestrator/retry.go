package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/droidloop/droidloop/internal/prompt"
)

// Failure menu choices.
var retryOptions = []string{"Retry", "Return to menu"}

// askRetry is the shared Retry / Return to menu decision.
func (o *Orchestrator) askRetry(ctx context.Context, title string) (bool, error) {
	idx, err := o.deps.Prompter.Select(ctx, title+". What next?", retryOptions, 0)
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// RunRetryableTask runs a named task, offering Retry or Return to menu after
// each failure until it succeeds or the user gives up.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: Task name shown to the user, e.g. "clean"
//   - run: The task
//   - interactive: Whether to offer a retry; when false the first failure is
//     returned
//
// Returns:
//   - error: nil on success, prompt.ErrCancelled when the user interrupted,
//     or *TaskError for the last failure
func (o *Orchestrator) RunRetryableTask(ctx context.Context, name string, run func(ctx context.Context) error, interactive bool) error {
	ctx, span := o.deps.Tracer.Start(ctx, "droidloop.task",
		trace.WithAttributes(attribute.String("task", name)))
	defer span.End()

	for attempt := 1; ; attempt++ {
		o.deps.Logger.Debug("Running task", "task", name, "attempt", attempt)
		err := run(ctx)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			span.SetStatus(codes.Ok, "")
			return nil
		}
		if cancelled(ctx, err) {
			return prompt.ErrCancelled
		}

		taskErr := &TaskError{Task: name, Err: err}
		reportFailure(taskErr)
		if !interactive {
			span.SetStatus(codes.Error, taskErr.Error())
			return taskErr
		}

		retry, perr := o.askRetry(ctx, "Task "+name+" failed")
		if perr != nil {
			if cancelled(ctx, perr) {
				return prompt.ErrCancelled
			}
			return perr
		}
		if !retry {
			span.SetStatus(codes.Error, taskErr.Error())
			return taskErr
		}
	}
}
