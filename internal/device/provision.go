package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/droidloop/droidloop/internal/clock"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/ui"
)

// Default readiness poll settings.
const (
	DefaultPollInterval = time.Second
	DefaultPollAttempts = 30
)

// NoDeviceReason explains why no device could be provided.
type NoDeviceReason int

const (
	// ReasonEmulatorToolMissing means no Ready device and no emulator binary.
	ReasonEmulatorToolMissing NoDeviceReason = iota

	// ReasonNoEmulatorImages means the emulator exists but has no images.
	ReasonNoEmulatorImages

	// ReasonUserDeclined means the user chose not to boot an emulator.
	ReasonUserDeclined

	// ReasonBootTimeout means the emulator did not report Ready in time.
	// Provisioner reports it as a warning, never as an error.
	ReasonBootTimeout
)

// NoDeviceError is returned when no device is available and none could be
// started.
type NoDeviceError struct {
	Reason NoDeviceReason
}

// Error implements the error interface.
func (e *NoDeviceError) Error() string {
	switch e.Reason {
	case ReasonEmulatorToolMissing:
		return "no devices connected and the Android emulator was not found (set ANDROID_HOME or add emulator to PATH)"
	case ReasonNoEmulatorImages:
		return "no devices connected and no emulator images are installed (create one with Android Studio's Device Manager)"
	case ReasonUserDeclined:
		return "no devices connected"
	case ReasonBootTimeout:
		return "emulator did not come online in time; it may still be booting"
	default:
		return "no device available"
	}
}

// ProvisionResult describes how EnsureDevice satisfied its contract.
type ProvisionResult struct {
	// Booted is the name of the emulator image that was started, if any.
	Booted string

	// TimedOut is set when an emulator was started but never reported Ready.
	// EnsureDevice still succeeds in that case.
	TimedOut bool

	// Warning is a user-facing note accompanying a soft success.
	Warning string
}

// Provisioner makes sure at least one Ready device exists, booting an
// emulator when necessary.
type Provisioner struct {
	Registry Registry
	Prompter prompt.Prompter
	Clock    clock.Clock

	// PollInterval is the delay between readiness checks after a boot.
	PollInterval time.Duration

	// PollAttempts bounds the number of readiness checks.
	PollAttempts int

	Logger *log.Logger
}

// NewProvisioner returns a Provisioner using the real clock and default
// poll settings.
func NewProvisioner(registry Registry, prompter prompt.Prompter, logger *log.Logger) *Provisioner {
	return &Provisioner{
		Registry:     registry,
		Prompter:     prompter,
		Clock:        clock.Real(),
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
		Logger:       logger,
	}
}

// EnsureDevice returns nil once a Ready device exists. When none is attached
// it offers to boot an emulator and waits for it.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - *ProvisionResult: Details about any emulator boot
//   - error: *NoDeviceError, prompt.ErrCancelled, or a registry error
func (p *Provisioner) EnsureDevice(ctx context.Context) (*ProvisionResult, error) {
	devices, err := p.Registry.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if len(ReadyDevices(devices)) > 0 {
		return &ProvisionResult{}, nil
	}

	if !p.Registry.EmulatorAvailable() {
		return nil, &NoDeviceError{Reason: ReasonEmulatorToolMissing}
	}

	images, err := p.Registry.ListEmulatorImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emulator images: %w", err)
	}
	if len(images) == 0 {
		return nil, &NoDeviceError{Reason: ReasonNoEmulatorImages}
	}

	ui.PrintWarning("No devices connected")
	if p.Prompter.Interactive() {
		boot, err := p.Prompter.Confirm(ctx, "Start an emulator?", true)
		if err != nil {
			return nil, err
		}
		if !boot {
			return nil, &NoDeviceError{Reason: ReasonUserDeclined}
		}
	}

	image, err := p.chooseImage(ctx, images)
	if err != nil {
		return nil, err
	}

	if err := p.Registry.BootEmulator(ctx, image.Name); err != nil {
		return nil, err
	}

	return p.WaitForEmulator(ctx, image)
}

func (p *Provisioner) chooseImage(ctx context.Context, images []EmulatorImage) (EmulatorImage, error) {
	if len(images) == 1 {
		return images[0], nil
	}

	options := make([]string, len(images))
	for i, img := range images {
		options[i] = img.DisplayName
	}
	idx, err := p.Prompter.Select(ctx, "Select an emulator to start:", options, prompt.NoDefault)
	if err != nil {
		if errors.Is(err, prompt.ErrInputRequired) {
			return EmulatorImage{}, fmt.Errorf("several emulator images are installed, choose one interactively or connect a device: %w", err)
		}
		return EmulatorImage{}, err
	}
	return images[idx], nil
}

// WaitForEmulator polls until an emulator reports Ready or attempts run out.
// Running out is a soft success.
func (p *Provisioner) WaitForEmulator(ctx context.Context, image EmulatorImage) (*ProvisionResult, error) {
	interval := p.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	attempts := p.PollAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}

	ui.StartSpinner(fmt.Sprintf("Starting %s...", image.DisplayName))
	defer ui.StopSpinner()

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := p.Clock.Sleep(ctx, interval); err != nil {
			return nil, err
		}

		devices, err := p.Registry.ListDevices(ctx)
		if err != nil {
			p.Logger.Debug("Device poll failed", "attempt", attempt, "error", err)
			continue
		}
		for _, d := range devices {
			if d.Ready() && d.Kind == KindEmulator {
				p.Logger.Debug("Emulator ready", "id", d.ID, "attempts", attempt)
				return &ProvisionResult{Booted: image.Name}, nil
			}
		}
	}

	p.Logger.Debug("Emulator readiness poll exhausted", "attempts", attempts, "avd", image.Name)
	return &ProvisionResult{
		Booted:   image.Name,
		TimedOut: true,
		Warning:  (&NoDeviceError{Reason: ReasonBootTimeout}).Error(),
	}, nil
}
