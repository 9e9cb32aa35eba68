// Package terminal opens device logs in a new terminal window.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/droidloop/droidloop/internal/device"
)

// Placeholder is replaced by the logcat command line in a configured
// terminal command.
const Placeholder = "{cmd}"

// ErrNoTerminal is returned when no terminal emulator could be found.
var ErrNoTerminal = errors.New("no terminal emulator found (set terminal.command in .droidloop/config.yaml, e.g. \"kitty -e {cmd}\")")

// linuxTerminals are tried in order; each entry is the executable and the
// arguments that precede the command to run.
var linuxTerminals = [][]string{
	{"x-terminal-emulator", "-e"},
	{"gnome-terminal", "--"},
	{"konsole", "-e"},
	{"kitty"},
	{"alacritty", "-e"},
	{"wezterm", "start", "--"},
	{"xterm", "-e"},
}

// Opener implements the orchestrator's LogOpener by spawning a terminal
// running adb logcat.
type Opener struct {
	// ADBPath is the adb executable used inside the terminal.
	ADBPath string

	// Command overrides terminal detection. It must contain Placeholder.
	Command string

	// GOOS selects the platform strategy. Defaults to runtime.GOOS.
	GOOS string

	// LookPath resolves executables. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// Start launches the terminal without waiting for it.
	Start func(name string, args ...string) error

	logger *log.Logger
}

// NewOpener creates an Opener for the current platform.
//
// Parameters:
//   - adbPath: adb executable, e.g. from device.ADB
//   - command: configured terminal command, empty for auto-detection
//   - logger: Logger for debug output
//
// Returns:
//   - *Opener: A ready opener
func NewOpener(adbPath, command string, logger *log.Logger) *Opener {
	return &Opener{
		ADBPath:  adbPath,
		Command:  command,
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Start:    startDetached,
		logger:   logger,
	}
}

// OpenLogs opens a terminal streaming logcat for dev.
func (o *Opener) OpenLogs(ctx context.Context, dev device.Device, packageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logcat := LogcatCommand(o.ADBPath, dev.ID)
	name, args, err := o.terminalCommand(logcat, strings.TrimSpace("logcat "+dev.ID+" "+packageID))
	if err != nil {
		return err
	}

	o.logger.Debug("Opening log terminal", "terminal", name, "args", strings.Join(args, " "))
	if err := o.Start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// LogcatCommand returns the shell command line that streams dev's log.
func LogcatCommand(adbPath, deviceID string) string {
	if adbPath == "" {
		adbPath = "adb"
	}
	return strings.Join([]string{quote(adbPath), "-s", quote(deviceID), "logcat", "-v", "color"}, " ")
}

// terminalCommand returns the process that shows command in a new window.
func (o *Opener) terminalCommand(command, title string) (string, []string, error) {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if tpl := strings.TrimSpace(o.Command); tpl != "" {
		if !strings.Contains(tpl, Placeholder) {
			return "", nil, fmt.Errorf("terminal.command %q has no %s placeholder", tpl, Placeholder)
		}
		line := strings.ReplaceAll(tpl, Placeholder, command)
		if goos == "windows" {
			return "cmd", []string{"/C", line}, nil
		}
		return "/bin/sh", []string{"-c", line}, nil
	}

	switch goos {
	case "darwin":
		script := fmt.Sprintf("tell application \"Terminal\"\n\tactivate\n\tdo script %q\nend tell", command)
		return "osascript", []string{"-e", script}, nil
	case "windows":
		return "cmd", []string{"/C", "start", title, "cmd", "/K", command}, nil
	}

	lookPath := o.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range linuxTerminals {
		path, err := lookPath(candidate[0])
		if err != nil {
			continue
		}
		args := append(append([]string{}, candidate[1:]...), "sh", "-c", command)
		return path, args, nil
	}
	return "", nil, ErrNoTerminal
}

// quote wraps s in single quotes when it contains shell metacharacters.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t'\"\\$`;&|<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
