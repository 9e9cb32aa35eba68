package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/project"
)

func TestDoctorResultAdd(t *testing.T) {
	r := DoctorResult{Healthy: true}
	r.add(DoctorCheck{Name: "a", Status: statusOK})
	r.add(DoctorCheck{Name: "b", Status: statusWarning})
	if !r.Healthy || r.Issues != 1 {
		t.Errorf("after warning: healthy=%v issues=%d", r.Healthy, r.Issues)
	}
	r.add(DoctorCheck{Name: "c", Status: statusError})
	if r.Healthy || r.Issues != 2 || len(r.Checks) != 3 {
		t.Errorf("after error: %+v", r)
	}
}

func TestCheckSDK(t *testing.T) {
	tests := []struct {
		name       string
		home, root string
		wantStatus string
		wantMsg    string
	}{
		{"android home", "/sdk", "", statusOK, "/sdk"},
		{"sdk root", "", "/opt/sdk", statusOK, "/opt/sdk"},
		{"home wins", "/sdk", "/opt/sdk", statusOK, "/sdk"},
		{"unset", "", "", statusWarning, "ANDROID_HOME is not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANDROID_HOME", tt.home)
			t.Setenv("ANDROID_SDK_ROOT", tt.root)
			got := checkSDK()
			if got.Status != tt.wantStatus || got.Message != tt.wantMsg {
				t.Errorf("checkSDK() = %+v", got)
			}
		})
	}
}

func TestCheckJava_BrokenHome(t *testing.T) {
	t.Setenv("JAVA_HOME", t.TempDir())
	if got := checkJava(); got.Status != statusWarning {
		t.Errorf("checkJava() = %+v, want warning", got)
	}
}

func TestCheckConfig(t *testing.T) {
	root := t.TempDir()
	proj := &project.Project{Root: root, GradleRoot: root, Module: "app"}

	if got := checkConfig(proj); got.Status != statusOK || got.Message != "Using defaults" {
		t.Errorf("missing config: %+v", got)
	}

	dir := filepath.Join(root, ".droidloop")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("build:\n  default_variant: debug\ndevice:\n  selected: emulator-5554\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := checkConfig(proj)
	if got.Status != statusOK || !strings.Contains(got.Details, "variant debug") || !strings.Contains(got.Details, "device emulator-5554") {
		t.Errorf("valid config: %+v", got)
	}

	if err := os.WriteFile(path, []byte("build: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := checkConfig(proj); got.Status != statusError {
		t.Errorf("invalid config: %+v", got)
	}
}

func TestCheckADB(t *testing.T) {
	tests := []struct {
		name        string
		devices     string
		fail        bool
		wantStatus  string
		wantDetails string
	}{
		{
			name:        "ready",
			devices:     "List of devices attached\nR58M device usb:1-1 product:a model:Galaxy\n",
			wantStatus:  statusOK,
			wantDetails: "1 device ready",
		},
		{
			name:        "unauthorized",
			devices:     "List of devices attached\nR58M unauthorized usb:1-1\n",
			wantStatus:  statusWarning,
			wantDetails: "1 device connected, 0 ready",
		},
		{
			name:        "none",
			devices:     "List of devices attached\n",
			wantStatus:  statusOK,
			wantDetails: "No devices connected",
		},
		{
			name:       "broken",
			fail:       true,
			wantStatus: statusError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adb := device.NewADB(log.New(io.Discard))
			adb.ADBPath = "adb"
			adb.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if tt.fail {
					return []byte("adb: not found"), errors.New("exit status 127")
				}
				switch args[0] {
				case "version":
					return []byte("Android Debug Bridge version 1.0.41\n"), nil
				case "devices":
					return []byte(tt.devices), nil
				}
				return nil, errors.New("unexpected command")
			}

			got := checkADB(context.Background(), adb)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (%+v)", got.Status, tt.wantStatus, got)
			}
			if !strings.HasPrefix(got.Details, tt.wantDetails) {
				t.Errorf("details = %q, want prefix %q", got.Details, tt.wantDetails)
			}
		})
	}
}

func TestCheckEmulator_Missing(t *testing.T) {
	adb := device.NewADB(log.New(io.Discard))
	adb.EmulatorPath = ""
	if got := checkEmulator(context.Background(), adb); got.Status != statusWarning || got.Message != "Not found" {
		t.Errorf("checkEmulator() = %+v", got)
	}
}
