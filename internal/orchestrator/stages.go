package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/ui"
)

// Post-build menu choices, in display order.
const (
	menuOpenLogs = iota
	menuRebuild
	menuSwitchDevice
	menuReturn
)

var postOutcomeOptions = []string{
	menuOpenLogs:     "Open logs",
	menuRebuild:      "Rebuild",
	menuSwitchDevice: "Switch device",
	menuReturn:       "Return to menu",
}

// fail records err as the session failure and reports it.
func (o *Orchestrator) fail(ctx context.Context, s *Session, err error) Event {
	if cancelled(ctx, err) {
		return EventCancelled
	}
	s.err = err
	reportFailure(err)
	return EventFailed
}

func (o *Orchestrator) selectVariant(ctx context.Context, s *Session) Event {
	variants := o.deps.Variants

	if v := s.opts.Variant; v != "" {
		if !slices.Contains(variants, v) {
			return o.fail(ctx, s, &InvalidVariantError{Variant: v, Valid: variants})
		}
		s.Variant = v
		return EventOK
	}

	if len(variants) == 0 {
		return o.fail(ctx, s, errors.New("the project declares no build variants"))
	}

	if def := o.deps.Preferences.DefaultVariant(); slices.Contains(variants, def) {
		o.deps.Logger.Debug("Using remembered variant", "variant", def)
		s.Variant = def
		return EventOK
	}

	idx, err := o.deps.Prompter.Select(ctx, "Select a build variant:", variants, suggestedVariant(variants))
	if err != nil {
		return o.fail(ctx, s, err)
	}
	s.Variant = variants[idx]

	if err := o.deps.Preferences.SaveVariant(s.Variant); err != nil {
		o.deps.Logger.Debug("Failed to save variant", "error", err)
		ui.PrintWarning("Could not remember variant %s: %v", s.Variant, err)
	}
	return EventOK
}

// suggestedVariant is the default highlighted at the variant prompt: the
// plain debug variant when there is one.
func suggestedVariant(variants []string) int {
	for i, v := range variants {
		if v == "debug" {
			return i
		}
	}
	return 0
}

func (o *Orchestrator) acquireDevice(ctx context.Context, s *Session) Event {
	res, err := o.deps.Provisioner.EnsureDevice(ctx)
	if err != nil {
		return o.fail(ctx, s, err)
	}
	if res != nil && res.Warning != "" {
		ui.PrintWarning("%s", res.Warning)
		s.warn(res.Warning)
	}

	devices, err := o.deps.Registry.ListDevices(ctx)
	if err != nil {
		return o.fail(ctx, s, fmt.Errorf("failed to list devices: %w", err))
	}

	if s.switching {
		s.switching = false
		dev, err := device.ChooseDevice(ctx, o.deps.Prompter, device.ReadyDevices(devices), "Switch to device:")
		if err != nil {
			return o.fail(ctx, s, err)
		}
		o.useDevice(s, dev, true)
		return EventDeviceSwitched
	}

	if id := s.opts.DeviceID; id != "" && s.DeviceID == "" {
		dev, ok := device.Find(devices, id)
		if !ok || !dev.Ready() {
			return o.fail(ctx, s, fmt.Errorf("device %s is not connected or not ready: %w", id, device.ErrNoReadyDevice))
		}
		o.useDevice(s, dev, false)
		return EventOK
	}

	preferred := s.DeviceID
	if preferred == "" {
		preferred = o.deps.Preferences.SelectedDevice()
	}
	dev, prompted, err := device.SelectTarget(ctx, o.deps.Prompter, devices, preferred)
	if err != nil {
		if errors.Is(err, device.ErrNoReadyDevice) && res != nil && res.TimedOut {
			err = fmt.Errorf("%w: the emulator is still booting, try again in a moment", err)
		}
		return o.fail(ctx, s, err)
	}
	o.useDevice(s, dev, prompted)
	return EventOK
}

// useDevice makes dev the session target, remembering it when it came from
// a prompt.
func (o *Orchestrator) useDevice(s *Session, dev device.Device, persist bool) {
	s.device = dev
	s.DeviceID = dev.ID
	ui.PrintInfo("Using %s", dev.Label())
	if !persist {
		return
	}
	if err := o.deps.Preferences.SaveDevice(dev.ID); err != nil {
		o.deps.Logger.Debug("Failed to save device", "error", err)
		ui.PrintWarning("Could not remember device %s: %v", dev.ID, err)
	}
}

func (o *Orchestrator) build(ctx context.Context, s *Session) Event {
	s.builds++
	ui.PrintInfo("Building %s...", s.Variant)

	res, err := o.deps.Builder.Build(ctx, s.Variant)
	if err != nil {
		return o.failurePolicy(ctx, s, StageBuild, "Build failed", err)
	}
	s.artifact = res
	ui.PrintSuccess("Built %s in %s", s.Variant, build.FormatDuration(res.Duration))
	ui.PrintDim("  %s", res.ArtifactPath)
	return EventOK
}

// packageID is the application id of the current artifact.
func (o *Orchestrator) packageID(s *Session) string {
	if s.artifact != nil && s.artifact.ApplicationID != "" {
		return s.artifact.ApplicationID
	}
	return o.deps.PackageID
}

func (o *Orchestrator) install(ctx context.Context, s *Session) Event {
	ui.StartSpinner(fmt.Sprintf("Installing on %s...", s.device.Label()))
	err := o.deps.Bridge.Install(ctx, s.DeviceID, s.artifact.ArtifactPath)
	ui.StopSpinner()

	if err == nil {
		ui.PrintSuccess("Installed on %s", s.device.Label())
		return EventOK
	}
	if cancelled(ctx, err) {
		return EventCancelled
	}

	s.failure = install.NewFailure(err.Error(), o.deps.Classify)
	o.deps.Logger.Debug("Install failed", "kind", s.failure.Kind, "diagnostic", s.failure.Diagnostic)
	return EventFailed
}

func (o *Orchestrator) recoverInstall(ctx context.Context, s *Session) Event {
	err := o.deps.Recoverer.Recover(ctx, s.failure, s.device, o.packageID(s), s.artifact.ArtifactPath)
	if err != nil {
		return o.failurePolicy(ctx, s, StageInstallRecovery, "Installation failed", err)
	}
	return EventOK
}

func (o *Orchestrator) launch(ctx context.Context, s *Session) Event {
	pkg := o.packageID(s)
	if pkg == "" {
		msg := "Not launching: the application id is unknown (set project.package_id in .droidloop/config.yaml)"
		ui.PrintWarning("%s", msg)
		s.warn(msg)
		s.launched = true
		return EventOK
	}

	if err := o.deps.Bridge.Launch(ctx, s.DeviceID, pkg); err != nil {
		if cancelled(ctx, err) {
			return EventCancelled
		}
		msg := fmt.Sprintf("Launch failed: %v", err)
		ui.PrintWarning("%s", msg)
		s.warn(msg)
	} else {
		ui.PrintSuccess("Launched %s", pkg)
	}
	s.launched = true
	return EventOK
}

func (o *Orchestrator) postOutcome(ctx context.Context, s *Session) Event {
	if !s.KeepAlive {
		return EventOK
	}

	idx, err := o.deps.Prompter.Select(ctx, "What next?", postOutcomeOptions, menuRebuild)
	if err != nil {
		if cancelled(ctx, err) {
			return EventCancelled
		}
		return o.fail(ctx, s, err)
	}

	switch idx {
	case menuOpenLogs:
		o.openLogs(ctx, s)
		return EventOpenLogs
	case menuRebuild:
		return EventRebuild
	case menuSwitchDevice:
		s.switching = true
		return EventSwitchDevice
	default:
		return EventReturnToMenu
	}
}

func (o *Orchestrator) openLogs(ctx context.Context, s *Session) {
	if o.deps.LogOpener == nil {
		ui.PrintWarning("Log viewing is not available")
		return
	}
	if err := o.deps.LogOpener.OpenLogs(ctx, s.device, o.packageID(s)); err != nil {
		ui.PrintWarning("Could not open logs: %v", err)
		return
	}
	ui.PrintSuccess("Opened logs for %s", s.device.Label())
}

// failurePolicy applies the keep-alive policy to a build-cycle failure:
// outside keep-alive the session ends, inside it the user picks Retry or
// Return to menu.
func (o *Orchestrator) failurePolicy(ctx context.Context, s *Session, stage Stage, title string, err error) Event {
	if ev := o.fail(ctx, s, err); ev != EventFailed {
		return ev
	}
	if !s.KeepAlive {
		return EventFailed
	}

	retry, perr := o.askRetry(ctx, title)
	if perr != nil {
		if cancelled(ctx, perr) {
			return EventCancelled
		}
		return EventFailed
	}
	if !retry {
		return EventReturnToMenu
	}
	s.Retries[stage]++
	s.err = nil
	o.deps.Logger.Debug("Retrying", "stage", stage, "attempt", s.Retries[stage]+1)
	return EventRetry
}
