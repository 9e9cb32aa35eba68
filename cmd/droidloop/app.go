package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/config"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/orchestrator"
	"github.com/droidloop/droidloop/internal/project"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/telemetry"
	"github.com/droidloop/droidloop/internal/terminal"
	"github.com/droidloop/droidloop/internal/tui"
	"github.com/droidloop/droidloop/internal/ui"
)

// app holds the collaborators shared by the project commands.
type app struct {
	project  *project.Project
	store    *config.Store
	gradle   *build.Gradle
	adb      *device.ADB
	prompter prompt.Prompter
	tracer   trace.Tracer
	logger   *log.Logger

	shutdown func(context.Context) error
}

// newApp detects the project and wires its collaborators.
//
// Parameters:
//   - cmd: The command being executed, for global flags
//
// Returns:
//   - *app: The wired application
//   - error: project.ErrNotDetected or a configuration error
func newApp(cmd *cobra.Command) (*app, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	logger := log.Default()

	// The module override lives in the config, which lives in the project
	// root, so detect once to find the root and again if the module differs.
	proj, err := project.Detect(dir, "")
	if err != nil {
		return nil, err
	}
	store, err := config.OpenStore(config.Path(proj.Root))
	if err != nil {
		return nil, err
	}
	cfg := store.Config()
	if m := cfg.Project.Module; m != "" && m != proj.Module {
		if proj, err = project.Detect(dir, m); err != nil {
			return nil, err
		}
	}
	logger.Debug("Detected project", "root", proj.Root, "gradle_root", proj.GradleRoot, "module", proj.Module, "kind", proj.Kind)

	gradle := build.NewGradle(proj.GradleRoot, proj.Module, logger)
	gradle.ExtraArgs = cfg.Build.GradleArgs

	tracer, shutdown := telemetry.Setup(logger)

	return &app{
		project:  proj,
		store:    store,
		gradle:   gradle,
		adb:      device.NewADB(logger),
		prompter: newPrompter(cmd),
		tracer:   tracer,
		logger:   logger,
		shutdown: shutdown,
	}, nil
}

// close flushes tracing.
func (a *app) close() {
	if a.shutdown != nil {
		_ = a.shutdown(context.Background())
	}
}

// newPrompter picks the prompt implementation for the session: none for
// scripts and JSON output, line-based for --plain and dumb terminals,
// full-screen otherwise.
func newPrompter(cmd *cobra.Command) prompt.Prompter {
	flags := cmd.Flags()
	nonInteractive := boolFlag(flags, "non-interactive")
	plain := boolFlag(flags, "plain")
	asJSON := jsonOutput(cmd)

	if nonInteractive || asJSON || !prompt.IsTerminal() {
		return prompt.NonInteractive{}
	}
	if !tui.ShouldUseTUI(asJSON, plain) {
		return ui.NewLinePrompter(os.Stdin, os.Stdout)
	}
	return tui.NewPrompter()
}

// packageID is the configured application id, else the detected one.
func (a *app) packageID() string {
	if id := a.store.Config().Project.PackageID; id != "" {
		return id
	}
	return a.project.PackageID
}

// provisioner returns a Provisioner using the configured poll settings.
func (a *app) provisioner() *device.Provisioner {
	p := device.NewProvisioner(a.adb, a.prompter, a.logger)
	emu := a.store.Config().Emulator
	if emu.PollInterval > 0 {
		p.PollInterval = emu.PollInterval
	}
	if emu.PollAttempts > 0 {
		p.PollAttempts = emu.PollAttempts
	}
	return p
}

// variants returns the configured variants, else the ones Gradle reports.
func (a *app) variants(ctx context.Context) ([]string, error) {
	if v := a.store.Config().Build.Variants; len(v) > 0 {
		return v, nil
	}
	ui.StartSpinner("Discovering build variants...")
	v, err := a.gradle.Variants(ctx)
	ui.StopSpinner()
	return v, err
}

// orchestrator wires an Orchestrator for the project.
func (a *app) orchestrator(variants []string, verbose bool) *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Deps{
		Variants:    variants,
		PackageID:   a.packageID(),
		Registry:    a.adb,
		Bridge:      a.adb,
		Builder:     &progressBuilder{gradle: a.gradle, verbose: verbose},
		Provisioner: a.provisioner(),
		Recoverer:   install.NewCoordinator(a.adb, a.prompter, a.logger),
		Prompter:    a.prompter,
		Preferences: a.store,
		LogOpener:   terminal.NewOpener(a.adb.ADBPath, a.store.Config().Terminal.Command, a.logger),
		Tracer:      a.tracer,
		Logger:      a.logger,
	})
}

// progressBuilder shows either a spinner or the streamed Gradle output
// while a variant builds.
type progressBuilder struct {
	gradle  *build.Gradle
	verbose bool
}

// Build implements orchestrator.Builder.
func (b *progressBuilder) Build(ctx context.Context, variant string) (*build.Result, error) {
	if b.verbose {
		b.gradle.OnOutput = func(line string) { ui.PrintDim("  %s", line) }
	} else {
		b.gradle.OnOutput = nil
		ui.StartSpinner(fmt.Sprintf("Running %s...", build.AssembleTask(variant)))
		defer ui.StopSpinner()
	}
	return b.gradle.Build(ctx, variant)
}
