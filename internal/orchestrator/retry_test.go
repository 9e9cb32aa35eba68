package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/prompt/prompttest"
)

// flaky fails the first n runs.
type flaky struct {
	failures int
	runs     int
}

func (f *flaky) run(ctx context.Context) error {
	f.runs++
	if f.runs <= f.failures {
		return errBoom
	}
	return nil
}

func TestRunRetryableTask(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		interactive bool
		answers     []prompttest.Answer
		wantRuns    int
		wantTaskErr bool
		wantCancel  bool
	}{
		{name: "succeeds first time", interactive: true, wantRuns: 1},
		{name: "retries until success", failures: 2, interactive: true,
			answers: []prompttest.Answer{prompttest.Choose(0), prompttest.Choose(0)}, wantRuns: 3},
		{name: "return to menu", failures: 1, interactive: true,
			answers: []prompttest.Answer{prompttest.Choose(1)}, wantRuns: 1, wantTaskErr: true},
		{name: "non-interactive fails fast", failures: 1, wantRuns: 1, wantTaskErr: true},
		{name: "cancel at menu", failures: 1, interactive: true,
			answers: []prompttest.Answer{prompttest.Cancel()}, wantRuns: 1, wantCancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.answers...)
			task := &flaky{failures: tt.failures}

			err := h.orchestrator().RunRetryableTask(context.Background(), "clean", task.run, tt.interactive)

			if task.runs != tt.wantRuns {
				t.Errorf("runs = %d, want %d", task.runs, tt.wantRuns)
			}
			var taskErr *TaskError
			switch {
			case tt.wantCancel:
				if !errors.Is(err, prompt.ErrCancelled) {
					t.Errorf("err = %v, want ErrCancelled", err)
				}
			case tt.wantTaskErr:
				if !errors.As(err, &taskErr) || taskErr.Task != "clean" || !errors.Is(err, errBoom) {
					t.Errorf("err = %v, want TaskError wrapping boom", err)
				}
			default:
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
			}
			if h.scripted.Remaining() != 0 {
				t.Errorf("%d answers unused", h.scripted.Remaining())
			}
		})
	}
}

func TestRunRetryableTask_CancelledRun(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.orchestrator().RunRetryableTask(ctx, "sync", func(ctx context.Context) error {
		return ctx.Err()
	}, true)
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if len(h.prompts()) != 0 {
		t.Errorf("prompts = %v, want none", h.prompts())
	}
}
