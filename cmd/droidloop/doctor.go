package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/config"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/project"
	"github.com/droidloop/droidloop/internal/ui"
)

// Check statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DoctorCheck represents a single diagnostic check result.
type DoctorCheck struct {
	// Name is the check name (e.g., "Project", "adb").
	Name string `json:"name"`

	// Status is the check status: "ok", "warning", "error".
	Status string `json:"status"`

	// Message is the human-readable result message.
	Message string `json:"message"`

	// Details contains additional information (optional).
	Details string `json:"details,omitempty"`
}

// DoctorResult contains all diagnostic check results.
type DoctorResult struct {
	Checks []DoctorCheck `json:"checks"`

	// Issues is the count of checks with status "error" or "warning".
	Issues int `json:"issues"`

	// Healthy is true if no errors were found.
	Healthy bool `json:"healthy"`
}

// add records a check and updates the totals.
func (r *DoctorResult) add(c DoctorCheck) {
	r.Checks = append(r.Checks, c)
	switch c.Status {
	case statusError:
		r.Healthy = false
		r.Issues++
	case statusWarning:
		r.Issues++
	}
}

// doctorCmd checks the Android toolchain and the current project.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the Android toolchain and project setup",
	Long: `Run diagnostic checks on the Android toolchain and the current project.

CHECKS PERFORMED:
  - Project detection and .droidloop/config.yaml
  - Gradle wrapper
  - Java runtime
  - Android SDK location
  - adb and connected devices
  - Emulator and installed images

EXAMPLES:
  droidloop doctor
  droidloop doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	asJSON := jsonOutput(cmd)
	ctx := cmd.Context()

	if !asJSON {
		ui.PrintInfo("Running diagnostic checks...")
		ui.Println()
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir, _ = os.Getwd()
	}

	result := DoctorResult{Checks: make([]DoctorCheck, 0), Healthy: true}
	proj, projectCheck := checkProject(dir)
	result.add(projectCheck)
	if proj != nil {
		result.add(checkConfig(proj))
		result.add(checkGradle(proj))
	}
	result.add(checkJava())
	result.add(checkSDK())

	adb := device.NewADB(log.Default())
	result.add(checkADB(ctx, adb))
	result.add(checkEmulator(ctx, adb))

	if asJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		printDoctorResults(result)
	}

	if !result.Healthy {
		if asJSON {
			return errReported
		}
		return errors.New("health check failed")
	}
	return nil
}

func checkProject(dir string) (*project.Project, DoctorCheck) {
	check := DoctorCheck{Name: "Project", Status: statusOK}
	proj, err := project.Detect(dir, "")
	if err != nil {
		check.Status = statusError
		check.Message = "No Android project found"
		check.Details = err.Error()
		return nil, check
	}
	check.Message = fmt.Sprintf("%s project, module %s", proj.Kind, proj.Module)
	details := []string{proj.GradleRoot}
	if proj.PackageID != "" {
		details = append(details, "application id "+proj.PackageID)
	}
	check.Details = strings.Join(details, ", ")
	return proj, check
}

func checkConfig(proj *project.Project) DoctorCheck {
	check := DoctorCheck{Name: "Config", Status: statusOK}
	path := config.Path(proj.Root)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		check.Message = "Using defaults"
		check.Details = "Choices are saved to " + path + " on first use"
		return check
	}

	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		check.Status = statusError
		check.Message = "Invalid configuration"
		check.Details = err.Error()
		return check
	}
	check.Message = "Found at " + path

	var details []string
	if cfg.Build.DefaultVariant != "" {
		details = append(details, "variant "+cfg.Build.DefaultVariant)
	}
	if cfg.Device.Selected != "" {
		details = append(details, "device "+cfg.Device.Selected)
	}
	if n := len(cfg.Tasks); n > 0 {
		details = append(details, fmt.Sprintf("%d task alias(es)", n))
	}
	check.Details = strings.Join(details, ", ")
	return check
}

func checkGradle(proj *project.Project) DoctorCheck {
	check := DoctorCheck{Name: "Gradle", Status: statusOK}
	exe, err := build.NewGradle(proj.GradleRoot, proj.Module, log.Default()).Executable()
	if err != nil {
		check.Status = statusError
		check.Message = "Not found"
		check.Details = err.Error()
		return check
	}
	check.Message = exe
	return check
}

func checkJava() DoctorCheck {
	check := DoctorCheck{Name: "Java", Status: statusOK}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		java := filepath.Join(home, "bin", "java")
		if _, err := os.Stat(java); err == nil {
			check.Message = java
			return check
		}
		check.Status = statusWarning
		check.Message = "JAVA_HOME has no bin/java"
		check.Details = home
		return check
	}
	if path, err := exec.LookPath("java"); err == nil {
		check.Message = path
		check.Details = "JAVA_HOME is not set, using PATH"
		return check
	}
	check.Status = statusError
	check.Message = "No Java runtime"
	check.Details = "Install a JDK or set JAVA_HOME (Android Studio bundles one)"
	return check
}

func checkSDK() DoctorCheck {
	check := DoctorCheck{Name: "Android SDK", Status: statusOK}
	for _, key := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if v := os.Getenv(key); v != "" {
			check.Message = v
			check.Details = "From " + key
			return check
		}
	}
	check.Status = statusWarning
	check.Message = "ANDROID_HOME is not set"
	check.Details = "adb and the emulator are looked up on PATH"
	return check
}

func checkADB(ctx context.Context, adb *device.ADB) DoctorCheck {
	check := DoctorCheck{Name: "adb", Status: statusOK}
	v, err := adb.Version(ctx)
	if err != nil {
		check.Status = statusError
		check.Message = "Not working"
		check.Details = err.Error()
		return check
	}

	devices, err := adb.ListDevices(ctx)
	if err != nil {
		check.Status = statusWarning
		check.Message = v
		check.Details = "Could not list devices: " + err.Error()
		return check
	}
	ready := len(device.ReadyDevices(devices))
	check.Message = v
	switch {
	case len(devices) == 0:
		check.Details = "No devices connected"
	case ready == len(devices):
		check.Details = fmt.Sprintf("%s ready", pluralDevices(ready))
	default:
		check.Status = statusWarning
		check.Details = fmt.Sprintf("%s connected, %d ready (check authorization prompts)", pluralDevices(len(devices)), ready)
	}
	return check
}

func pluralDevices(n int) string {
	if n == 1 {
		return "1 device"
	}
	return fmt.Sprintf("%d devices", n)
}

func checkEmulator(ctx context.Context, adb *device.ADB) DoctorCheck {
	check := DoctorCheck{Name: "Emulator", Status: statusOK}
	if !adb.EmulatorAvailable() {
		check.Status = statusWarning
		check.Message = "Not found"
		check.Details = "Install the Android Emulator from the SDK Manager"
		return check
	}
	images, err := adb.ListEmulatorImages(ctx)
	if err != nil {
		check.Status = statusWarning
		check.Message = adb.EmulatorPath
		check.Details = err.Error()
		return check
	}
	check.Message = adb.EmulatorPath
	if len(images) == 0 {
		check.Status = statusWarning
		check.Details = "No emulator images installed"
		return check
	}
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	check.Details = fmt.Sprintf("%d image(s): %s", len(images), strings.Join(names, ", "))
	return check
}

// printDoctorResults prints the doctor results in human-readable format.
func printDoctorResults(result DoctorResult) {
	for _, check := range result.Checks {
		var icon string
		switch check.Status {
		case statusOK:
			icon = ui.SuccessStyle.Render("✓")
		case statusWarning:
			icon = ui.WarningStyle.Render("⚠")
		case statusError:
			icon = ui.ErrorStyle.Render("✗")
		}

		fmt.Printf("  %s %-13s %s\n", icon, check.Name+":", check.Message)
		if check.Details != "" {
			fmt.Printf("    %s\n", ui.DimStyle.Render(check.Details))
		}
	}

	ui.Println()
	if result.Issues > 0 {
		ui.PrintWarning("%d issue(s) found", result.Issues)
	} else {
		ui.PrintSuccess("All checks passed")
	}
}
