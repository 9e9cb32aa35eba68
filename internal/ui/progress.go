// Package ui provides the spinner component.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerMu     sync.Mutex
	spinnerStop   chan struct{}
	spinnerDone   chan struct{}
	spinnerActive bool
)

// StartSpinner starts an animated spinner with a message. When stdout is not
// a terminal the message is printed once instead.
//
// Parameters:
//   - message: The message to display next to the spinner
func StartSpinner(message string) {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if spinnerActive || quietMode {
		return
	}
	if output != os.Stdout || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(output, DimStyle.Render(message))
		return
	}

	spinnerActive = true
	spinnerStop = make(chan struct{})
	spinnerDone = make(chan struct{})
	stop, done := spinnerStop, spinnerDone

	go func() {
		defer close(done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(output, "\r%s %s", RunningStyle.Render(frame), message)
			select {
			case <-stop:
				// Clear the spinner line
				fmt.Fprintf(output, "\r%s\r", strings.Repeat(" ", len(message)+4))
				return
			case <-ticker.C:
			}
		}
	}()
}

// StopSpinner stops the current spinner and waits for its line to clear.
func StopSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if !spinnerActive {
		return
	}

	close(spinnerStop)
	<-spinnerDone
	spinnerActive = false
}
