// Package prompttest provides a scripted prompt.Prompter for tests.
package prompttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/droidloop/droidloop/internal/prompt"
)

// Answer is one scripted response. Exactly one of the fields is meaningful
// for a given prompt kind; Err overrides everything.
type Answer struct {
	Index int
	Yes   bool
	Text  string
	Err   error
}

// Choose answers a Select with option i.
func Choose(i int) Answer { return Answer{Index: i} }

// Yes answers a Confirm with yes.
func Yes() Answer { return Answer{Yes: true} }

// No answers a Confirm with no.
func No() Answer { return Answer{} }

// Text answers an Input.
func Text(s string) Answer { return Answer{Text: s} }

// Cancel makes the prompt return prompt.ErrCancelled.
func Cancel() Answer { return Answer{Err: prompt.ErrCancelled} }

// Call records a prompt that was shown.
type Call struct {
	Kind    string
	Message string
	Options []string
}

// Scripted replays answers in order and records every prompt. A prompt with
// no remaining answer fails with an error naming the message.
type Scripted struct {
	mu      sync.Mutex
	answers []Answer
	calls   []Call
}

// New returns a Scripted prompter with the given answers.
func New(answers ...Answer) *Scripted {
	return &Scripted{answers: answers}
}

// Interactive reports true.
func (s *Scripted) Interactive() bool { return true }

func (s *Scripted) next(call Call) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if len(s.answers) == 0 {
		return Answer{}, fmt.Errorf("unexpected %s prompt: %q", call.Kind, call.Message)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	if a.Err != nil {
		return Answer{}, a.Err
	}
	return a, nil
}

// Select returns the next scripted index.
func (s *Scripted) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	a, err := s.next(Call{Kind: "select", Message: message, Options: options})
	if err != nil {
		return -1, err
	}
	if a.Index < 0 || a.Index >= len(options) {
		return -1, fmt.Errorf("scripted index %d out of range for %q", a.Index, message)
	}
	return a.Index, nil
}

// Confirm returns the next scripted yes/no.
func (s *Scripted) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	a, err := s.next(Call{Kind: "confirm", Message: message})
	if err != nil {
		return false, err
	}
	return a.Yes, nil
}

// Input returns the next scripted text.
func (s *Scripted) Input(ctx context.Context, message, placeholder string) (string, error) {
	a, err := s.next(Call{Kind: "input", Message: message})
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

// Calls returns every prompt shown so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining returns the number of unused answers.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}
