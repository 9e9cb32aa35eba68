// Package device models Android devices and emulator images, talks to them
// through adb and the emulator binary, and makes sure a usable target exists
// before a build is deployed.
package device

import (
	"context"
	"fmt"
	"strings"
)

// State is the connection state reported by the device bridge.
type State int

const (
	// StateOffline means the device is attached but not responding.
	StateOffline State = iota

	// StateUnauthorized means the device has not accepted this host's key.
	StateUnauthorized

	// StateReady means the device can receive installs.
	StateReady
)

// String returns the bridge-style name of the state.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "offline"
	}
}

// Kind distinguishes emulators from physical hardware.
type Kind int

const (
	// KindPhysical is a USB or network attached handset.
	KindPhysical Kind = iota

	// KindEmulator is a virtual device started from an emulator image.
	KindEmulator
)

// String returns a short label for the kind.
func (k Kind) String() string {
	if k == KindEmulator {
		return "emulator"
	}
	return "physical"
}

// Device is a snapshot of one device as reported by a single enumeration.
// Identity is the ID field.
type Device struct {
	// ID is the bridge serial, e.g. "emulator-5554". Opaque to callers.
	ID string

	// Name is a human friendly label.
	Name string

	// State is the connection state at enumeration time.
	State State

	// Kind is emulator or physical.
	Kind Kind

	// APILevel is the platform API level, 0 when unknown.
	APILevel int

	// Model is the product model string, empty when unknown.
	Model string
}

// Ready reports whether the device is eligible as a deploy target.
func (d Device) Ready() bool {
	return d.State == StateReady
}

// Label returns a one-line description used in prompts and listings.
func (d Device) Label() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.Name == "" {
		b.WriteString(d.ID)
	}
	var details []string
	details = append(details, d.Kind.String())
	if d.APILevel > 0 {
		details = append(details, fmt.Sprintf("API %d", d.APILevel))
	}
	if !d.Ready() {
		details = append(details, d.State.String())
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	if d.Name != "" && d.Name != d.ID {
		fmt.Fprintf(&b, " [%s]", d.ID)
	}
	return b.String()
}

// EmulatorImage is a bootable virtual device definition.
type EmulatorImage struct {
	// Name is the boot identifier passed to the emulator.
	Name string

	// DisplayName is shown to the user.
	DisplayName string
}

// StorageInfo describes the data partition of a device, in bytes.
type StorageInfo struct {
	Total     uint64
	Available uint64
}

// Registry enumerates devices and emulator images and can start emulators.
type Registry interface {
	// ListDevices returns every device the bridge currently reports.
	ListDevices(ctx context.Context) ([]Device, error)

	// EmulatorAvailable reports whether an emulator binary can be launched.
	EmulatorAvailable() bool

	// ListEmulatorImages returns the installed emulator images.
	ListEmulatorImages(ctx context.Context) ([]EmulatorImage, error)

	// BootEmulator starts the named image and returns once the process is
	// running. It does not wait for the device to come online.
	BootEmulator(ctx context.Context, name string) error
}

// Bridge runs app-level operations against a single device.
type Bridge interface {
	// Install installs the artifact, replacing an existing install. The
	// returned error's text carries the raw installer diagnostic.
	Install(ctx context.Context, deviceID, artifactPath string) error

	// Uninstall removes the package.
	Uninstall(ctx context.Context, deviceID, packageID string) error

	// ClearData wipes the package's data.
	ClearData(ctx context.Context, deviceID, packageID string) error

	// StorageInfo reports the data partition size. A nil result with a nil
	// error means the information is not available.
	StorageInfo(ctx context.Context, deviceID string) (*StorageInfo, error)

	// Launch starts the package's launcher activity.
	Launch(ctx context.Context, deviceID, packageID string) error
}

// ReadyDevices returns the Ready subset of devices, preserving order.
func ReadyDevices(devices []Device) []Device {
	var ready []Device
	for _, d := range devices {
		if d.Ready() {
			ready = append(ready, d)
		}
	}
	return ready
}

// Find returns the device with the given ID.
func Find(devices []Device, id string) (Device, bool) {
	for _, d := range devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}
