package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// CommandFunc runs a program to completion and returns its combined output.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// StartFunc starts a program and returns without waiting for it.
type StartFunc func(name string, args ...string) error

// CommandError is returned when an adb or emulator invocation fails. Output
// carries the tool's own diagnostic text.
type CommandError struct {
	// Op names the operation, e.g. "install".
	Op string

	// Output is the trimmed combined output of the tool.
	Output string

	// Err is the process error, if the tool exited non-zero.
	Err error
}

// Error returns the tool output when there is any, since that is what the
// install failure classifier matches against.
func (e *CommandError) Error() string {
	switch {
	case e.Output != "":
		return e.Output
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return e.Op + " failed"
	}
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error { return e.Err }

// ADB implements Registry and Bridge on top of the adb and emulator binaries.
type ADB struct {
	// ADBPath is the adb executable.
	ADBPath string

	// EmulatorPath is the emulator executable, empty when none was found.
	EmulatorPath string

	// Run executes short-lived commands. Defaults to exec.CommandContext.
	Run CommandFunc

	// Start launches long-lived detached processes (emulators).
	Start StartFunc

	logger *log.Logger
}

// NewADB locates adb and the emulator, preferring the SDK pointed to by
// ANDROID_HOME or ANDROID_SDK_ROOT over PATH.
//
// Parameters:
//   - logger: Logger for debug output
//
// Returns:
//   - *ADB: A bridge ready for use
func NewADB(logger *log.Logger) *ADB {
	sdk := sdkRoot()
	return &ADB{
		ADBPath:      findTool(sdk, filepath.Join("platform-tools", "adb"), "adb"),
		EmulatorPath: findTool(sdk, filepath.Join("emulator", "emulator"), "emulator"),
		Run:          runCommand,
		Start:        startDetached,
		logger:       logger,
	}
}

func sdkRoot() string {
	for _, key := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// findTool returns the SDK copy of a tool when it exists, else the PATH copy,
// else "" (or the bare name for adb so errors mention it).
func findTool(sdk, rel, name string) string {
	if sdk != "" {
		candidate := filepath.Join(sdk, rel)
		if runtime.GOOS == "windows" {
			candidate += ".exe"
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	if name == "adb" {
		return name
	}
	return ""
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	setProcGroup(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func (a *ADB) adb(ctx context.Context, args ...string) (string, error) {
	a.logger.Debug("adb", "args", strings.Join(args, " "))
	out, err := a.Run(ctx, a.ADBPath, args...)
	return strings.TrimSpace(string(out)), err
}

// ListDevices enumerates attached devices and fills in API level and a
// display name for the Ready ones.
func (a *ADB) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := a.adb(ctx, "devices", "-l")
	if err != nil {
		return nil, &CommandError{Op: "adb devices", Output: out, Err: err}
	}

	devices := parseDevices(out)
	for i := range devices {
		d := &devices[i]
		if !d.Ready() {
			continue
		}
		if sdk, err := a.adb(ctx, "-s", d.ID, "shell", "getprop", "ro.build.version.sdk"); err == nil {
			if level, convErr := strconv.Atoi(strings.TrimSpace(sdk)); convErr == nil {
				d.APILevel = level
			}
		}
		if d.Kind == KindEmulator {
			if name, err := a.adb(ctx, "-s", d.ID, "emu", "avd", "name"); err == nil {
				if first := firstLine(name); first != "" && first != "OK" {
					d.Name = displayName(first)
				}
			}
		}
	}
	return devices, nil
}

// Version returns the adb version line, e.g. "Android Debug Bridge version 1.0.41".
func (a *ADB) Version(ctx context.Context) (string, error) {
	out, err := a.adb(ctx, "version")
	if err != nil {
		return "", &CommandError{Op: "adb version", Output: out, Err: err}
	}
	return firstLine(out), nil
}

// EmulatorAvailable reports whether an emulator binary was found.
func (a *ADB) EmulatorAvailable() bool {
	return a.EmulatorPath != ""
}

// ListEmulatorImages lists installed AVDs.
func (a *ADB) ListEmulatorImages(ctx context.Context) ([]EmulatorImage, error) {
	if a.EmulatorPath == "" {
		return nil, errors.New("emulator binary not found")
	}
	out, err := a.Run(ctx, a.EmulatorPath, "-list-avds")
	if err != nil {
		return nil, &CommandError{Op: "emulator -list-avds", Output: strings.TrimSpace(string(out)), Err: err}
	}
	return parseAVDs(string(out)), nil
}

// BootEmulator starts the AVD in its own process group so it outlives this
// process and is not hit by the terminal's Ctrl-C.
func (a *ADB) BootEmulator(ctx context.Context, name string) error {
	if a.EmulatorPath == "" {
		return errors.New("emulator binary not found")
	}
	a.logger.Debug("Booting emulator", "avd", name)
	if err := a.Start(a.EmulatorPath, "-avd", name); err != nil {
		return fmt.Errorf("failed to start emulator %s: %w", name, err)
	}
	return nil
}

// Install runs `adb install -r`.
func (a *ADB) Install(ctx context.Context, deviceID, artifactPath string) error {
	out, err := a.adb(ctx, "-s", deviceID, "install", "-r", artifactPath)
	if err != nil || installFailed(out) {
		return &CommandError{Op: "install", Output: out, Err: err}
	}
	return nil
}

// Uninstall runs `adb uninstall`.
func (a *ADB) Uninstall(ctx context.Context, deviceID, packageID string) error {
	out, err := a.adb(ctx, "-s", deviceID, "uninstall", packageID)
	if err != nil || !strings.Contains(out, "Success") {
		return &CommandError{Op: "uninstall", Output: out, Err: err}
	}
	return nil
}

// ClearData runs `pm clear` on the device.
func (a *ADB) ClearData(ctx context.Context, deviceID, packageID string) error {
	out, err := a.adb(ctx, "-s", deviceID, "shell", "pm", "clear", packageID)
	if err != nil || !strings.Contains(out, "Success") {
		return &CommandError{Op: "clear data", Output: out, Err: err}
	}
	return nil
}

// StorageInfo reads `df /data`. Unparseable output yields nil, nil.
func (a *ADB) StorageInfo(ctx context.Context, deviceID string) (*StorageInfo, error) {
	out, err := a.adb(ctx, "-s", deviceID, "shell", "df", "/data")
	if err != nil {
		return nil, &CommandError{Op: "df", Output: out, Err: err}
	}
	return parseDF(out), nil
}

// Launch starts the launcher activity through monkey, which avoids having to
// know the activity name.
func (a *ADB) Launch(ctx context.Context, deviceID, packageID string) error {
	out, err := a.adb(ctx, "-s", deviceID, "shell", "monkey", "-p", packageID,
		"-c", "android.intent.category.LAUNCHER", "1")
	lower := strings.ToLower(out)
	if err != nil || strings.Contains(lower, "no activities found") || strings.Contains(lower, "monkey aborted") {
		return &CommandError{Op: "launch", Output: out, Err: err}
	}
	return nil
}

// parseDevices parses `adb devices -l` output.
func parseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		d := Device{ID: fields[0], State: parseState(fields[1])}
		if strings.HasPrefix(d.ID, "emulator-") {
			d.Kind = KindEmulator
		}
		for _, f := range fields[2:] {
			if model, ok := strings.CutPrefix(f, "model:"); ok {
				d.Model = model
			}
		}
		d.Name = displayName(d.Model)
		if d.Name == "" {
			d.Name = d.ID
		}
		devices = append(devices, d)
	}
	return devices
}

func parseState(s string) State {
	switch s {
	case "device":
		return StateReady
	case "unauthorized":
		return StateUnauthorized
	default:
		return StateOffline
	}
}

// parseAVDs parses `emulator -list-avds`, skipping emulator log noise.
func parseAVDs(out string) []EmulatorImage {
	var images []EmulatorImage
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.Contains(name, " ") || strings.Contains(name, "|") {
			continue
		}
		images = append(images, EmulatorImage{Name: name, DisplayName: displayName(name)})
	}
	return images
}

// parseDF parses the data line of toybox `df` (1K blocks).
func parseDF(out string) *StorageInfo {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return nil
	}
	total, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil
	}
	avail, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return nil
	}
	return &StorageInfo{Total: total * 1024, Available: avail * 1024}
}

// installFailed detects failures adb reports with a zero exit status.
func installFailed(out string) bool {
	return strings.Contains(out, "Failure") ||
		strings.Contains(out, "INSTALL_FAILED") ||
		strings.Contains(out, "INSTALL_PARSE_FAILED") ||
		strings.HasPrefix(out, "adb: ") ||
		strings.Contains(out, "error:")
}

func displayName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
