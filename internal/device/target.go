package device

import (
	"context"
	"errors"
)

// ErrNoReadyDevice is returned when a target is needed but nothing is Ready.
var ErrNoReadyDevice = errors.New("no ready device found")

// Selector is the subset of prompt.Prompter used for device choice.
type Selector interface {
	Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error)
}

// SelectTarget picks the deploy target among the Ready devices:
// the preferred device if it is still Ready, else the only Ready device,
// else an explicit choice.
//
// Parameters:
//   - ctx: Context for cancellation
//   - sel: Prompt used when a choice is needed
//   - devices: Latest enumeration
//   - preferredID: Previously selected device ID, may be empty
//
// Returns:
//   - Device: The chosen target
//   - bool: True when the choice came from a prompt and should be persisted
//   - error: ErrNoReadyDevice or a prompt error
func SelectTarget(ctx context.Context, sel Selector, devices []Device, preferredID string) (Device, bool, error) {
	ready := ReadyDevices(devices)
	if len(ready) == 0 {
		return Device{}, false, ErrNoReadyDevice
	}

	if preferredID != "" {
		if d, ok := Find(ready, preferredID); ok {
			return d, false, nil
		}
	}

	if len(ready) == 1 {
		return ready[0], false, nil
	}

	d, err := ChooseDevice(ctx, sel, ready, "Select a device:")
	if err != nil {
		return Device{}, false, err
	}
	return d, true, nil
}

// ChooseDevice always prompts, with no default, among the given devices.
func ChooseDevice(ctx context.Context, sel Selector, devices []Device, message string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoReadyDevice
	}
	options := make([]string, len(devices))
	for i, d := range devices {
		options[i] = d.Label()
	}
	idx, err := sel.Select(ctx, message, options, -1)
	if err != nil {
		return Device{}, err
	}
	return devices[idx], nil
}
