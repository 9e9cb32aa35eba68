package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/orchestrator"
	"github.com/droidloop/droidloop/internal/ui"
	"github.com/droidloop/droidloop/internal/watch"
)

var (
	watchVariant string
	watchDevice  string
	watchVerbose bool
)

// watchCmd rebuilds and redeploys whenever sources change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild, install and launch on every source change",
	Long: `Run a build cycle, then run another one each time files change.

The app module is watched unless watch.paths is set in .droidloop/config.yaml.
Build outputs, .gradle and VCS directories are ignored. A failed cycle is
reported and watching continues.

EXAMPLES:
  droidloop watch
  droidloop watch --variant freeDebug`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchVariant, "variant", "", "Variant to build")
	watchCmd.Flags().StringVar(&watchDevice, "device", "", "Device serial to deploy to")
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Stream Gradle output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	variants, err := a.variants(ctx)
	if err != nil {
		return err
	}
	o := a.orchestrator(variants, watchVerbose)

	// The first cycle settles the variant and device; later cycles reuse
	// them so a change never waits on a prompt.
	opts := orchestrator.CycleOptions{Variant: watchVariant, DeviceID: watchDevice}
	res := o.RunBuildCycle(ctx, opts)
	if res.Cancelled {
		return nil
	}
	if res.Variant != "" {
		opts.Variant = res.Variant
	}
	if res.DeviceID != "" {
		opts.DeviceID = res.DeviceID
	}

	w := watch.New(a.watchPaths(), a.store.Config().Watch.Debounce, a.logger)
	w.Ready = func() {
		ui.Println()
		ui.PrintInfo("Watching for changes (Ctrl+C to stop)")
	}
	rebuilds := 0
	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		rebuilds++
		ui.Println()
		ui.PrintInfo("%d file(s) changed, rebuilding", len(changed))
		for _, f := range changed {
			a.logger.Debug("Changed", "file", f)
		}

		res := o.RunBuildCycle(ctx, opts)
		if res.Cancelled {
			return context.Canceled
		}
		if res.Success {
			ui.PrintSuccess("Rebuild %d deployed", rebuilds)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchPaths resolves the configured watch paths against the project root,
// defaulting to the app module directory.
func (a *app) watchPaths() []string {
	paths := a.store.Config().Watch.Paths
	if len(paths) == 0 {
		return []string{a.project.ModuleDir()}
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(a.project.Root, p)
		}
	}
	return out
}
