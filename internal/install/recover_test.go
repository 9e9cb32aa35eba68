package install_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/device/devicetest"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/prompt/prompttest"
	"github.com/droidloop/droidloop/internal/ui"
)

const (
	testPackage  = "com.example.app"
	testArtifact = "/tmp/app-debug.apk"
)

func init() {
	ui.SetQuietMode(true)
}

func newCoordinator(bridge device.Bridge, p prompt.Prompter) *install.Coordinator {
	return install.NewCoordinator(bridge, p, log.New(io.Discard))
}

func storageFailure() install.Failure {
	return install.NewFailure("Failure [INSTALL_FAILED_INSUFFICIENT_STORAGE]", install.Classify)
}

func duplicateFailure() install.Failure {
	return install.NewFailure("Failure [INSTALL_FAILED_ALREADY_EXISTS]", install.Classify)
}

func TestRecover_StorageUninstallThenRetrySucceeds(t *testing.T) {
	bridge := &devicetest.Bridge{Storage: &device.StorageInfo{Total: 8 << 30, Available: 12 << 20}}
	p := prompttest.New(prompttest.Choose(0))

	err := newCoordinator(bridge, p).Recover(context.Background(), storageFailure(), devicetest.Emulator("emulator-5554"), testPackage, testArtifact)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if bridge.Uninstalls() != 1 {
		t.Errorf("Uninstalls() = %d, want 1", bridge.Uninstalls())
	}
	if bridge.Installs() != 1 {
		t.Errorf("Installs() = %d, want 1", bridge.Installs())
	}
	want := []string{
		"uninstall emulator-5554 " + testPackage,
		"install emulator-5554 " + testArtifact,
	}
	if got := bridge.Calls(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Calls() = %v, want %v", got, want)
	}
}

func TestRecover_StorageRetryFailsOnce(t *testing.T) {
	bridge := &devicetest.Bridge{
		InstallErrs: []error{
			errors.New("INSTALL_FAILED_INSUFFICIENT_STORAGE"),
			errors.New("should never be used"),
		},
	}
	p := prompttest.New(prompttest.Choose(0))

	err := newCoordinator(bridge, p).Recover(context.Background(), storageFailure(), devicetest.Emulator("emulator-5554"), testPackage, testArtifact)

	var failed *install.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Recover() error = %v, want *FailedError", err)
	}
	if got, want := err.Error(), "Installation failed again: INSTALL_FAILED_INSUFFICIENT_STORAGE"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if bridge.Installs() != 1 {
		t.Errorf("Installs() = %d, want exactly one retry", bridge.Installs())
	}
	if len(p.Calls()) != 1 {
		t.Errorf("prompted %d times, want 1", len(p.Calls()))
	}
}

func TestRecover_StorageUninstallFailureSkipsInstall(t *testing.T) {
	bridge := &devicetest.Bridge{UninstallErr: errors.New("Failure [DELETE_FAILED_INTERNAL_ERROR]")}
	p := prompttest.New(prompttest.Choose(0))

	err := newCoordinator(bridge, p).Recover(context.Background(), storageFailure(), devicetest.Phone("R58M"), testPackage, testArtifact)

	var failed *install.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Recover() error = %v, want *FailedError", err)
	}
	if failed.Message != "Failed to uninstall the existing app" {
		t.Errorf("Message = %q", failed.Message)
	}
	if bridge.Installs() != 0 {
		t.Errorf("Installs() = %d, want 0", bridge.Installs())
	}
}

func TestRecover_StorageClearDataThenRetry(t *testing.T) {
	bridge := &devicetest.Bridge{}
	p := prompttest.New(prompttest.Choose(1))

	err := newCoordinator(bridge, p).Recover(context.Background(), storageFailure(), devicetest.Phone("R58M"), testPackage, testArtifact)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if bridge.Clears() != 1 || bridge.Installs() != 1 {
		t.Errorf("Clears() = %d, Installs() = %d, want 1 and 1", bridge.Clears(), bridge.Installs())
	}
}

func TestRecover_Skip(t *testing.T) {
	tests := []struct {
		name    string
		failure install.Failure
		choice  int
	}{
		{"storage", storageFailure(), 2},
		{"duplicate", duplicateFailure(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := &devicetest.Bridge{}
			p := prompttest.New(prompttest.Choose(tt.choice))

			err := newCoordinator(bridge, p).Recover(context.Background(), tt.failure, devicetest.Phone("R58M"), testPackage, testArtifact)

			var failed *install.FailedError
			if !errors.As(err, &failed) {
				t.Fatalf("Recover() error = %v, want *FailedError", err)
			}
			if failed.Message != "Installation skipped" {
				t.Errorf("Message = %q, want %q", failed.Message, "Installation skipped")
			}
			if len(bridge.Calls()) != 0 {
				t.Errorf("bridge calls = %v, want none", bridge.Calls())
			}
		})
	}
}

func TestRecover_DuplicateForceReinstallIgnoresUninstallError(t *testing.T) {
	bridge := &devicetest.Bridge{UninstallErr: errors.New("Failure [DELETE_FAILED_INTERNAL_ERROR]")}
	p := prompttest.New(prompttest.Choose(0))

	err := newCoordinator(bridge, p).Recover(context.Background(), duplicateFailure(), devicetest.Emulator("emulator-5554"), testPackage, testArtifact)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if bridge.Uninstalls() != 1 || bridge.Installs() != 1 {
		t.Errorf("Uninstalls() = %d, Installs() = %d, want 1 and 1", bridge.Uninstalls(), bridge.Installs())
	}
}

func TestRecover_DuplicateClearDataKeepsInstall(t *testing.T) {
	bridge := &devicetest.Bridge{}
	p := prompttest.New(prompttest.Choose(1))

	err := newCoordinator(bridge, p).Recover(context.Background(), duplicateFailure(), devicetest.Emulator("emulator-5554"), testPackage, testArtifact)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if bridge.Clears() != 1 {
		t.Errorf("Clears() = %d, want 1", bridge.Clears())
	}
	if bridge.Installs() != 0 {
		t.Errorf("Installs() = %d, want 0", bridge.Installs())
	}
}

func TestRecover_UnrecoverableKinds(t *testing.T) {
	tests := []struct {
		diag string
		kind install.FailureKind
	}{
		{"Failure [INSTALL_FAILED_INVALID_APK]", install.KindInvalidAPK},
		{"Failure [INSTALL_FAILED_USER_RESTRICTED]", install.KindPermissionDenied},
		{"Failure [INSTALL_FAILED_OLDER_SDK]", install.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			bridge := &devicetest.Bridge{}
			p := prompttest.New()

			f := install.NewFailure(tt.diag, install.Classify)
			err := newCoordinator(bridge, p).Recover(context.Background(), f, devicetest.Phone("R58M"), testPackage, testArtifact)

			var failed *install.FailedError
			if !errors.As(err, &failed) {
				t.Fatalf("Recover() error = %v, want *FailedError", err)
			}
			if failed.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", failed.Kind, tt.kind)
			}
			if failed.Diagnostic != tt.diag {
				t.Errorf("Diagnostic = %q, want %q", failed.Diagnostic, tt.diag)
			}
			if failed.Suggestion == "" {
				t.Error("Suggestion is empty")
			}
			if len(p.Calls()) != 0 || len(bridge.Calls()) != 0 {
				t.Errorf("unexpected activity: prompts=%v bridge=%v", p.Calls(), bridge.Calls())
			}
		})
	}
}

func TestRecover_NonInteractiveReportsOriginalFailure(t *testing.T) {
	bridge := &devicetest.Bridge{}
	f := storageFailure()

	err := newCoordinator(bridge, prompt.NonInteractive{}).Recover(context.Background(), f, devicetest.Phone("R58M"), testPackage, testArtifact)

	var failed *install.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Recover() error = %v, want *FailedError", err)
	}
	if failed.Diagnostic != f.Diagnostic {
		t.Errorf("Diagnostic = %q, want %q", failed.Diagnostic, f.Diagnostic)
	}
	if len(bridge.Calls()) != 0 {
		t.Errorf("bridge calls = %v, want none", bridge.Calls())
	}
}

func TestRecover_CancelPropagates(t *testing.T) {
	bridge := &devicetest.Bridge{}
	p := prompttest.New(prompttest.Cancel())

	err := newCoordinator(bridge, p).Recover(context.Background(), duplicateFailure(), devicetest.Phone("R58M"), testPackage, testArtifact)
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("Recover() error = %v, want ErrCancelled", err)
	}
}

func TestRecover_MissingPackageID(t *testing.T) {
	bridge := &devicetest.Bridge{}
	p := prompttest.New(prompttest.Choose(0))

	err := newCoordinator(bridge, p).Recover(context.Background(), storageFailure(), devicetest.Phone("R58M"), "", testArtifact)

	var failed *install.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Recover() error = %v, want *FailedError", err)
	}
	if len(bridge.Calls()) != 0 {
		t.Errorf("bridge calls = %v, want none", bridge.Calls())
	}
}
