package prompt

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNonInteractiveSelect(t *testing.T) {
	tests := []struct {
		name         string
		defaultIndex int
		want         int
		wantErr      error
	}{
		{name: "uses default", defaultIndex: 1, want: 1},
		{name: "no default", defaultIndex: NoDefault, want: -1, wantErr: ErrInputRequired},
		{name: "default out of range", defaultIndex: 5, want: -1, wantErr: ErrInputRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NonInteractive{}.Select(context.Background(), "pick", []string{"a", "b"}, tt.defaultIndex)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNonInteractiveConfirmUsesDefault(t *testing.T) {
	for _, def := range []bool{true, false} {
		got, err := NonInteractive{}.Confirm(context.Background(), "ok?", def)
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if got != def {
			t.Errorf("Confirm(default=%v) = %v", def, got)
		}
	}
}

func TestNonInteractiveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NonInteractive{}.Confirm(ctx, "ok?", true)
	if !IsCancelled(err) {
		t.Fatalf("Confirm() error = %v, want cancellation", err)
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(fmt.Errorf("select device: %w", ErrCancelled)) {
		t.Error("wrapped ErrCancelled not detected")
	}
	if IsCancelled(errors.New("boom")) {
		t.Error("plain error reported as cancellation")
	}
}
