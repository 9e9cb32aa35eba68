package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/project"
	"github.com/droidloop/droidloop/internal/ui"
)

// taskCmd runs a configured alias or a Gradle task with retry.
var taskCmd = &cobra.Command{
	Use:   "task <name>",
	Short: "Run a project task, offering a retry when it fails",
	Long: `Run a task alias from .droidloop/config.yaml, or a Gradle task of the app
module when no alias has that name.

EXAMPLES:
  droidloop task lint
  droidloop task connectedAndroidTest`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.runTask(cmd.Context(), args[0])
		})
	},
}

// cleanCmd cleans the module's build outputs.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the app module's build outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.runClean(cmd.Context())
		})
	},
}

// syncCmd refreshes dependencies and native projects.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync native project files and dependencies",
	Long: `Sync the Android project.

The "sync" task alias runs when configured. Capacitor projects run
"npx cap sync android"; plain Gradle projects refresh their dependencies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.runSync(cmd.Context())
		})
	},
}

// withApp runs fn with a wired app and maps reported task failures to
// errReported.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.asReported(fn(a))
}

// retryable runs fn as a named task through the orchestrator.
func (a *app) retryable(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	o := a.orchestrator(nil, false)
	if err := o.RunRetryableTask(ctx, name, fn, a.prompter.Interactive()); err != nil {
		return err
	}
	ui.PrintSuccess("%s finished", name)
	return nil
}

// shell returns a task that runs command from the project root.
func (a *app) shell(command string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ui.PrintInfo("$ %s", command)
		return build.NewRunner(a.project.Root).RunShell(ctx, command, func(line string) {
			ui.PrintDim("  %s", line)
		})
	}
}

// streamGradle shows Gradle output while fn runs.
func (a *app) streamGradle(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		a.gradle.OnOutput = func(line string) { ui.PrintDim("  %s", line) }
		defer func() { a.gradle.OnOutput = nil }()
		return fn(ctx)
	}
}

func (a *app) runTask(ctx context.Context, name string) error {
	if command, ok := a.store.Config().Tasks[name]; ok {
		return a.retryable(ctx, name, a.shell(command))
	}
	return a.retryable(ctx, name, a.streamGradle(func(ctx context.Context) error {
		return a.gradle.RunTask(ctx, name)
	}))
}

func (a *app) runClean(ctx context.Context) error {
	if command, ok := a.store.Config().Tasks["clean"]; ok {
		return a.retryable(ctx, "clean", a.shell(command))
	}
	return a.retryable(ctx, "clean", a.streamGradle(a.gradle.Clean))
}

// capacitorSync is the default sync for Capacitor projects.
const capacitorSync = "npx cap sync android"

func (a *app) runSync(ctx context.Context) error {
	if command, ok := a.store.Config().Tasks["sync"]; ok {
		return a.retryable(ctx, "sync", a.shell(command))
	}
	if a.project.Kind == project.KindCapacitor {
		return a.retryable(ctx, "sync", a.shell(capacitorSync))
	}
	return a.retryable(ctx, "sync", a.streamGradle(a.gradle.RefreshDependencies))
}
