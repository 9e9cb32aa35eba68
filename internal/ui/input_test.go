package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/droidloop/droidloop/internal/prompt"
)

func TestLinePrompterSelect(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultIndex int
		want         int
	}{
		{name: "explicit choice", input: "2\n", defaultIndex: prompt.NoDefault, want: 1},
		{name: "empty uses default", input: "\n", defaultIndex: 0, want: 0},
		{name: "invalid then valid", input: "9\nabc\n3\n", defaultIndex: prompt.NoDefault, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Select(context.Background(), "Pick:", []string{"a", "b", "c"}, tt.defaultIndex)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLinePrompterEOFCancels(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Select(context.Background(), "Pick:", []string{"a", "b"}, prompt.NoDefault)
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("Select() error = %v, want ErrCancelled", err)
	}
}

func TestLinePrompterConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{input: "\n", defaultYes: true, want: true},
		{input: "\n", defaultYes: false, want: false},
		{input: "yes\n", defaultYes: false, want: true},
		{input: "n\n", defaultYes: true, want: false},
	}

	for _, tt := range tests {
		p := NewLinePrompter(strings.NewReader(tt.input), &bytes.Buffer{})
		got, err := p.Confirm(context.Background(), "Continue?", tt.defaultYes)
		if err != nil {
			t.Fatalf("Confirm(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
		}
	}
}

func TestLinePrompterInputSkipsBlankLines(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("\n\nlintDebug\n"), &bytes.Buffer{})

	got, err := p.Input(context.Background(), "Task:", "assembleDebug")
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got != "lintDebug" {
		t.Errorf("Input() = %q, want %q", got, "lintDebug")
	}
}
