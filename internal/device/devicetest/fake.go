// Package devicetest provides in-memory device.Registry and device.Bridge
// implementations for tests.
package devicetest

import (
	"context"
	"sync"

	"github.com/droidloop/droidloop/internal/device"
)

// Registry is an in-memory device.Registry.
type Registry struct {
	mu        sync.Mutex
	devices   []device.Device
	listCalls int

	// HasEmulator is returned by EmulatorAvailable.
	HasEmulator bool

	// Images is returned by ListEmulatorImages.
	Images []device.EmulatorImage

	// ListErr, when set, is returned by ListDevices.
	ListErr error

	// BootErr, when set, is returned by BootEmulator.
	BootErr error

	// OnBoot runs after a successful BootEmulator.
	OnBoot func(r *Registry, name string)

	booted []string
}

// NewRegistry returns a Registry reporting devices.
func NewRegistry(devices ...device.Device) *Registry {
	return &Registry{devices: devices}
}

// SetDevices replaces the reported devices.
func (r *Registry) SetDevices(devices ...device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = devices
}

// ListDevices returns a copy of the current devices.
func (r *Registry) ListDevices(ctx context.Context) ([]device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	out := make([]device.Device, len(r.devices))
	copy(out, r.devices)
	return out, nil
}

// EmulatorAvailable returns HasEmulator.
func (r *Registry) EmulatorAvailable() bool { return r.HasEmulator }

// ListEmulatorImages returns Images.
func (r *Registry) ListEmulatorImages(ctx context.Context) ([]device.EmulatorImage, error) {
	return r.Images, nil
}

// BootEmulator records the boot.
func (r *Registry) BootEmulator(ctx context.Context, name string) error {
	if r.BootErr != nil {
		return r.BootErr
	}
	r.mu.Lock()
	r.booted = append(r.booted, name)
	r.mu.Unlock()
	if r.OnBoot != nil {
		r.OnBoot(r, name)
	}
	return nil
}

// Booted returns the names passed to BootEmulator.
func (r *Registry) Booted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.booted...)
}

// ListCalls returns how many times ListDevices ran.
func (r *Registry) ListCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

// Bridge is an in-memory device.Bridge that records calls.
type Bridge struct {
	mu sync.Mutex

	// InstallErrs is consumed one entry per Install call; once exhausted
	// installs succeed.
	InstallErrs []error

	UninstallErr error
	ClearErr     error
	LaunchErr    error
	Storage      *device.StorageInfo

	installs   int
	uninstalls int
	clears     int
	launches   int
	calls      []string
}

// Install pops the next scripted error.
func (b *Bridge) Install(ctx context.Context, deviceID, artifactPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.installs++
	b.calls = append(b.calls, "install "+deviceID+" "+artifactPath)
	if len(b.InstallErrs) == 0 {
		return nil
	}
	err := b.InstallErrs[0]
	b.InstallErrs = b.InstallErrs[1:]
	return err
}

// Uninstall returns UninstallErr.
func (b *Bridge) Uninstall(ctx context.Context, deviceID, packageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uninstalls++
	b.calls = append(b.calls, "uninstall "+deviceID+" "+packageID)
	return b.UninstallErr
}

// ClearData returns ClearErr.
func (b *Bridge) ClearData(ctx context.Context, deviceID, packageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears++
	b.calls = append(b.calls, "clear "+deviceID+" "+packageID)
	return b.ClearErr
}

// StorageInfo returns Storage.
func (b *Bridge) StorageInfo(ctx context.Context, deviceID string) (*device.StorageInfo, error) {
	return b.Storage, nil
}

// Launch returns LaunchErr.
func (b *Bridge) Launch(ctx context.Context, deviceID, packageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.launches++
	b.calls = append(b.calls, "launch "+deviceID+" "+packageID)
	return b.LaunchErr
}

// Installs returns the number of Install calls.
func (b *Bridge) Installs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installs
}

// Uninstalls returns the number of Uninstall calls.
func (b *Bridge) Uninstalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uninstalls
}

// Clears returns the number of ClearData calls.
func (b *Bridge) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

// Launches returns the number of Launch calls.
func (b *Bridge) Launches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launches
}

// Calls returns every recorded call in order.
func (b *Bridge) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Emulator returns a Ready emulator device.
func Emulator(id string) device.Device {
	return device.Device{ID: id, Name: id, State: device.StateReady, Kind: device.KindEmulator}
}

// Phone returns a Ready physical device.
func Phone(id string) device.Device {
	return device.Device{ID: id, Name: id, State: device.StateReady, Kind: device.KindPhysical}
}
