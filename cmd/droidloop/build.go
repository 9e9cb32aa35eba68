package main

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/orchestrator"
	"github.com/droidloop/droidloop/internal/ui"
)

var (
	buildVariant      string
	buildDevice       string
	buildKeepAlive    bool
	buildCopyArtifact bool
	buildVerbose      bool
)

// buildCmd runs one build → install → launch cycle, or a keep-alive session.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build, install and launch the app",
	Long: `Build a variant of the app module, install it on a device and launch it.

Without --variant the saved default is used, or you are asked to choose.
Without --device the remembered device is used when it is still connected;
with several devices you are asked once and the choice is remembered.

When no device is connected, droidloop offers to start an emulator.

With --keep-alive the session stays open after each cycle so you can
rebuild, switch device or open the device logs without starting over.

EXAMPLES:
  droidloop build
  droidloop build --variant freeDebug
  droidloop build -k
  droidloop build --device emulator-5554 --json`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildVariant, "variant", "", "Variant to build (e.g. debug, freeRelease)")
	buildCmd.Flags().StringVar(&buildDevice, "device", "", "Device serial to deploy to (must be connected and ready)")
	buildCmd.Flags().BoolVarP(&buildKeepAlive, "keep-alive", "k", false, "Stay open after the cycle to rebuild, switch device or open logs")
	buildCmd.Flags().BoolVar(&buildCopyArtifact, "copy-artifact", false, "Copy the APK path to the clipboard")
	buildCmd.Flags().BoolVar(&buildVerbose, "verbose", false, "Stream Gradle output instead of showing a spinner")
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if buildKeepAlive && !a.prompter.Interactive() {
		return errors.New("--keep-alive needs an interactive terminal")
	}

	return a.runCycle(cmd, orchestrator.CycleOptions{
		Variant:   buildVariant,
		DeviceID:  buildDevice,
		KeepAlive: buildKeepAlive,
	}, buildVerbose, buildCopyArtifact)
}

// runCycle runs a build cycle and reports its outcome.
func (a *app) runCycle(cmd *cobra.Command, opts orchestrator.CycleOptions, verbose, copyArtifact bool) error {
	ctx := cmd.Context()

	variants, err := a.variants(ctx)
	if err != nil {
		return err
	}

	res := a.orchestrator(variants, verbose).RunBuildCycle(ctx, opts)
	a.logger.Debug("Build cycle finished", "session", res.SessionID, "success", res.Success, "builds", res.Builds)

	if res.ArtifactPath != "" && copyArtifact {
		if err := clipboard.WriteAll(res.ArtifactPath); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not copy the artifact path: %v", err))
			ui.PrintWarning("Could not copy the artifact path: %v", err)
		} else {
			ui.PrintDim("Artifact path copied to the clipboard")
		}
	}

	if jsonOutput(cmd) {
		printJSON(cycleJSON(res, build.CollectGitInfo(a.project.Root)))
	}

	switch {
	case res.Cancelled:
		return nil
	case res.Err != nil:
		return errReported
	}
	return nil
}
