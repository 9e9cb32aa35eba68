// Package build runs Gradle for an Android project and locates the artifacts
// it produces.
package build

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// tailLines bounds how much output a Runner keeps for failure diagnosis.
const tailLines = 400

// Runner executes build tool commands in a working directory and streams
// their output line by line.
type Runner struct {
	// workDir is the working directory for commands.
	workDir string

	// Env is appended to the current environment.
	Env []string
}

// NewRunner creates a new build runner.
//
// Parameters:
//   - workDir: The working directory for build commands
//
// Returns:
//   - *Runner: A new Runner instance
func NewRunner(workDir string) *Runner {
	return &Runner{workDir: workDir}
}

// WorkDir returns the directory commands run in.
func (r *Runner) WorkDir() string {
	return r.workDir
}

// ExitError is returned when a command exits unsuccessfully. Lines holds the
// tail of its combined output.
type ExitError struct {
	Command string
	Lines   []string
	Err     error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

// Unwrap returns the process error.
func (e *ExitError) Unwrap() error { return e.Err }

// Run executes name with args and streams output to the callback.
//
// Parameters:
//   - ctx: Context for cancellation; cancelling kills the process
//   - name: Executable to run
//   - args: Command arguments
//   - onOutput: Callback function called for each line of output, may be nil
//
// Returns:
//   - error: *ExitError on a non-zero exit, ctx.Err() when cancelled
func (r *Runner) Run(ctx context.Context, name string, args []string, onOutput func(line string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return r.run(ctx, cmd, strings.Join(append([]string{name}, args...), " "), onOutput)
}

// RunShell executes a shell command line, supporting pipes and redirects.
// On Windows the line is passed to cmd /C.
func (r *Runner) RunShell(ctx context.Context, command string, onOutput func(line string)) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
	}
	return r.run(ctx, cmd, command, onOutput)
}

func (r *Runner) run(ctx context.Context, cmd *exec.Cmd, display string, onOutput func(line string)) error {
	cmd.Dir = r.workDir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", display, err)
	}

	tail := &lineTail{max: tailLines}
	var wg sync.WaitGroup
	wg.Add(2)
	go tail.consume(&wg, stdout, onOutput)
	go tail.consume(&wg, stderr, onOutput)

	// Readers must drain before Wait closes the pipes.
	wg.Wait()
	cmdErr := cmd.Wait()

	if cmdErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExitError{Command: display, Lines: tail.snapshot(), Err: cmdErr}
	}
	return nil
}

// lineTail keeps the most recent lines written by both output streams.
type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (t *lineTail) consume(wg *sync.WaitGroup, r io.Reader, onOutput func(string)) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		t.mu.Lock()
		t.lines = append(t.lines, line)
		if len(t.lines) > t.max {
			t.lines = t.lines[len(t.lines)-t.max:]
		}
		if onOutput != nil {
			onOutput(line)
		}
		t.mu.Unlock()
	}
}

func (t *lineTail) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}
