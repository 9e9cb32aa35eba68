package install

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/ui"
)

// Coordinator runs at most one automated recovery for a classified
// installation failure. It installs at most once more and never classifies
// the retry's own failure.
type Coordinator struct {
	Bridge   device.Bridge
	Prompter prompt.Prompter
	Logger   *log.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(bridge device.Bridge, prompter prompt.Prompter, logger *log.Logger) *Coordinator {
	return &Coordinator{Bridge: bridge, Prompter: prompter, Logger: logger}
}

// Storage recovery choices.
var storageOptions = []string{
	"Uninstall the existing app and retry",
	"Clear app data and retry",
	"Skip",
}

// Duplicate package recovery choices.
var duplicateOptions = []string{
	"Force reinstall (uninstall, then install)",
	"Clear app data and keep the existing install",
	"Skip",
}

// Recover attempts to get the artifact installed after failure f.
//
// Parameters:
//   - ctx: Context for cancellation
//   - f: The classified failure of the original install
//   - dev: Target device
//   - packageID: Application id used for uninstall and clear-data
//   - artifactPath: APK to install on retry
//
// Returns:
//   - error: nil when the app is installed, *FailedError on a hard failure,
//     or a prompt cancellation
func (c *Coordinator) Recover(ctx context.Context, f Failure, dev device.Device, packageID, artifactPath string) error {
	c.Logger.Debug("Recovering install", "kind", f.Kind, "device", dev.ID, "package", packageID)

	switch f.Kind {
	case KindInsufficientStorage:
		return c.recoverStorage(ctx, f, dev, packageID, artifactPath)
	case KindDuplicatePackage:
		return c.recoverDuplicate(ctx, f, dev, packageID, artifactPath)
	default:
		return &FailedError{
			Kind:       f.Kind,
			Message:    "Installation failed",
			Diagnostic: f.Diagnostic,
			Suggestion: f.Suggestion,
		}
	}
}

func (c *Coordinator) recoverStorage(ctx context.Context, f Failure, dev device.Device, packageID, artifactPath string) error {
	ui.PrintWarning("Not enough storage on %s", dev.Label())
	if info, err := c.Bridge.StorageInfo(ctx, dev.ID); err == nil && info != nil {
		ui.PrintDim("  %s available of %s", humanize.Bytes(info.Available), humanize.Bytes(info.Total))
	} else if err != nil {
		c.Logger.Debug("Storage info unavailable", "device", dev.ID, "error", err)
	}

	choice, err := c.choose(ctx, "How do you want to free space?", storageOptions)
	if err != nil {
		return c.unrecovered(f, err)
	}

	switch choice {
	case 0:
		if err := c.requirePackage(f, packageID); err != nil {
			return err
		}
		if err := c.Bridge.Uninstall(ctx, dev.ID, packageID); err != nil {
			return &FailedError{Kind: f.Kind, Message: "Failed to uninstall the existing app", Diagnostic: err.Error()}
		}
		ui.PrintSuccess("Uninstalled %s", packageID)
	case 1:
		if err := c.requirePackage(f, packageID); err != nil {
			return err
		}
		if err := c.Bridge.ClearData(ctx, dev.ID, packageID); err != nil {
			return &FailedError{Kind: f.Kind, Message: "Failed to clear app data", Diagnostic: err.Error()}
		}
		ui.PrintSuccess("Cleared data for %s", packageID)
	default:
		return c.skipped(f)
	}

	return c.retryOnce(ctx, f, dev, artifactPath)
}

func (c *Coordinator) recoverDuplicate(ctx context.Context, f Failure, dev device.Device, packageID, artifactPath string) error {
	ui.PrintWarning("The app is already installed on %s", dev.Label())

	choice, err := c.choose(ctx, "How do you want to continue?", duplicateOptions)
	if err != nil {
		return c.unrecovered(f, err)
	}

	switch choice {
	case 0:
		if err := c.requirePackage(f, packageID); err != nil {
			return err
		}
		if err := c.Bridge.Uninstall(ctx, dev.ID, packageID); err != nil {
			c.Logger.Debug("Uninstall before reinstall failed, continuing", "error", err)
		}
		return c.retryOnce(ctx, f, dev, artifactPath)
	case 1:
		if err := c.requirePackage(f, packageID); err != nil {
			return err
		}
		if err := c.Bridge.ClearData(ctx, dev.ID, packageID); err != nil {
			return &FailedError{Kind: f.Kind, Message: "Failed to clear app data", Diagnostic: err.Error()}
		}
		ui.PrintSuccess("Cleared data for %s, keeping the existing install", packageID)
		return nil
	default:
		return c.skipped(f)
	}
}

// retryOnce performs the single permitted install retry.
func (c *Coordinator) retryOnce(ctx context.Context, f Failure, dev device.Device, artifactPath string) error {
	ui.StartSpinner("Retrying installation...")
	err := c.Bridge.Install(ctx, dev.ID, artifactPath)
	ui.StopSpinner()

	if err != nil {
		if prompt.IsCancelled(err) {
			return err
		}
		return &FailedError{Kind: f.Kind, Message: "Installation failed again", Diagnostic: err.Error()}
	}
	ui.PrintSuccess("Installed on retry")
	return nil
}

func (c *Coordinator) choose(ctx context.Context, message string, options []string) (int, error) {
	return c.Prompter.Select(ctx, message, options, prompt.NoDefault)
}

// unrecovered turns a prompt error into the right result: cancellations
// propagate, a non-interactive session reports the original failure.
func (c *Coordinator) unrecovered(f Failure, err error) error {
	if errors.Is(err, prompt.ErrInputRequired) {
		return &FailedError{Kind: f.Kind, Message: "Installation failed", Diagnostic: f.Diagnostic, Suggestion: f.Suggestion}
	}
	return err
}

func (c *Coordinator) skipped(f Failure) error {
	return &FailedError{Kind: f.Kind, Message: "Installation skipped", Diagnostic: f.Diagnostic, Suggestion: f.Suggestion}
}

func (c *Coordinator) requirePackage(f Failure, packageID string) error {
	if packageID != "" {
		return nil
	}
	return &FailedError{
		Kind:       f.Kind,
		Message:    "Cannot recover: the application id is unknown",
		Diagnostic: f.Diagnostic,
		Suggestion: "Set project.package_id in .droidloop/config.yaml",
	}
}
