package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/ui"
)

// devicesCmd lists attached devices.
var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"device"},
	Short:   "List connected devices and emulators",
	Args:    cobra.NoArgs,
	RunE:    runDevices,
}

// emulatorsCmd lists installed emulator images.
var emulatorsCmd = &cobra.Command{
	Use:     "emulators",
	Aliases: []string{"emulator", "avds"},
	Short:   "List installed emulator images",
	Args:    cobra.NoArgs,
	RunE:    runEmulators,
}

// emulatorsBootCmd boots an emulator image and waits for it.
var emulatorsBootCmd = &cobra.Command{
	Use:   "boot [name]",
	Short: "Start an emulator and wait until it is ready",
	Long: `Start an emulator image and wait until it reports ready.

Without a name you are asked to choose when more than one image is installed.

EXAMPLES:
  droidloop emulators boot
  droidloop emulators boot Pixel_8_API_35`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmulatorsBoot,
}

func init() {
	emulatorsCmd.AddCommand(emulatorsBootCmd)
}

// devicesJSON renders a device listing for --json.
func devicesJSON(devices []device.Device, selected string) string {
	doc := `{"devices":[]}`
	for i, d := range devices {
		prefix := "devices." + strconv.Itoa(i) + "."
		doc, _ = sjson.Set(doc, prefix+"id", d.ID)
		doc, _ = sjson.Set(doc, prefix+"name", d.Name)
		doc, _ = sjson.Set(doc, prefix+"state", d.State.String())
		doc, _ = sjson.Set(doc, prefix+"kind", d.Kind.String())
		if d.APILevel > 0 {
			doc, _ = sjson.Set(doc, prefix+"api_level", d.APILevel)
		}
		if d.Model != "" {
			doc, _ = sjson.Set(doc, prefix+"model", d.Model)
		}
		doc, _ = sjson.Set(doc, prefix+"selected", d.ID == selected)
	}
	return doc
}

// selectedDevice returns the remembered device, empty outside a project.
func selectedDevice(cmd *cobra.Command) string {
	a, err := newApp(cmd)
	if err != nil {
		return ""
	}
	defer a.close()
	return a.store.SelectedDevice()
}

func runDevices(cmd *cobra.Command, args []string) error {
	adb := device.NewADB(log.Default())
	devices, err := adb.ListDevices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	selected := selectedDevice(cmd)

	if jsonOutput(cmd) {
		printJSON(devicesJSON(devices, selected))
		return nil
	}

	if len(devices) == 0 {
		ui.PrintInfo("No devices connected")
		ui.PrintDim("Start one with: droidloop emulators boot")
		return nil
	}

	table := ui.NewTable("", "ID", "NAME", "KIND", "API", "STATE")
	for _, d := range devices {
		marker := ""
		if d.ID == selected {
			marker = "*"
		}
		api := "-"
		if d.APILevel > 0 {
			api = strconv.Itoa(d.APILevel)
		}
		table.AddRow(marker, d.ID, d.Name, d.Kind.String(), api, d.State.String())
	}
	table.Render()
	return nil
}

func runEmulators(cmd *cobra.Command, args []string) error {
	adb := device.NewADB(log.Default())
	if !adb.EmulatorAvailable() {
		return &device.NoDeviceError{Reason: device.ReasonEmulatorToolMissing}
	}
	images, err := adb.ListEmulatorImages(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list emulator images: %w", err)
	}

	if jsonOutput(cmd) {
		doc := `{"emulators":[]}`
		for i, img := range images {
			prefix := "emulators." + strconv.Itoa(i) + "."
			doc, _ = sjson.Set(doc, prefix+"name", img.Name)
			doc, _ = sjson.Set(doc, prefix+"display_name", img.DisplayName)
		}
		printJSON(doc)
		return nil
	}

	if len(images) == 0 {
		ui.PrintInfo("No emulator images installed")
		ui.PrintDim("Create one with Android Studio's Device Manager")
		return nil
	}
	table := ui.NewTable("NAME", "DESCRIPTION")
	for _, img := range images {
		table.AddRow(img.Name, img.DisplayName)
	}
	table.Render()
	return nil
}

func runEmulatorsBoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.Default()
	adb := device.NewADB(logger)
	if !adb.EmulatorAvailable() {
		return &device.NoDeviceError{Reason: device.ReasonEmulatorToolMissing}
	}
	images, err := adb.ListEmulatorImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list emulator images: %w", err)
	}

	image, err := pickImage(cmd, images, args)
	if err != nil {
		return err
	}

	if err := adb.BootEmulator(ctx, image.Name); err != nil {
		return err
	}
	res, err := device.NewProvisioner(adb, newPrompter(cmd), logger).WaitForEmulator(ctx, image)
	if err != nil {
		return err
	}
	if res.TimedOut {
		ui.PrintWarning("%s", res.Warning)
		return nil
	}
	ui.PrintSuccess("%s is ready", image.DisplayName)
	return nil
}

// pickImage resolves the image named in args, or asks for one.
func pickImage(cmd *cobra.Command, images []device.EmulatorImage, args []string) (device.EmulatorImage, error) {
	if len(images) == 0 {
		return device.EmulatorImage{}, &device.NoDeviceError{Reason: device.ReasonNoEmulatorImages}
	}
	if len(args) == 1 {
		for _, img := range images {
			if img.Name == args[0] {
				return img, nil
			}
		}
		return device.EmulatorImage{}, fmt.Errorf("emulator image %q not found", args[0])
	}
	if len(images) == 1 {
		return images[0], nil
	}

	options := make([]string, len(images))
	for i, img := range images {
		options[i] = img.DisplayName
	}
	idx, err := newPrompter(cmd).Select(cmd.Context(), "Select an emulator to start:", options, prompt.NoDefault)
	if errors.Is(err, prompt.ErrInputRequired) {
		return device.EmulatorImage{}, errors.New("several emulator images are installed, name one: droidloop emulators boot <name>")
	}
	if err != nil {
		return device.EmulatorImage{}, err
	}
	return images[idx], nil
}
