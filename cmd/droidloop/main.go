// Package main provides the entry point for the droidloop CLI.
//
// droidloop builds an Android project, installs the result on a device or
// emulator and launches it, keeping an interactive session open between
// cycles when asked to.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/ui"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errReported marks a failure that has already been shown to the user.
// Execute exits non-zero without printing it again.
var errReported = errors.New("failure already reported")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "droidloop",
	Short: "Build, install and launch Android apps in one loop",
	Long: `droidloop runs build → install → launch cycles for Android projects.

Run it without arguments in a project directory for the interactive menu,
or use the commands below from scripts and CI.

EXAMPLES:
  droidloop                          # Interactive menu
  droidloop build                    # Build, install and launch once
  droidloop build -k                 # Stay open: rebuild, switch device, open logs
  droidloop build --variant release --device emulator-5554 --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if boolFlag(cmd.Flags(), "debug") {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		}

		ui.SetQuietMode(boolFlag(cmd.Flags(), "quiet"))

		// Human output moves to stderr so stdout carries only JSON.
		if jsonOutput(cmd) {
			ui.SetOutput(os.Stderr)
		}
	},
	RunE: runMenu,
}

// Execute runs the root command and maps its error to an exit code:
// 0 on success and on user cancellation, 1 otherwise.
//
// This function also handles "did you mean" suggestions when users type
// commands in the wrong order (e.g., "droidloop boot emulators").
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case prompt.IsCancelled(err) || errors.Is(ctx.Err(), context.Canceled):
		ui.PrintWarning("Cancelled")
		return 0
	case errors.Is(err, errReported):
		return 1
	}

	ui.PrintError("%v", err)
	errStr := err.Error()
	if start := strings.Index(errStr, `unknown command "`); start != -1 {
		start += len(`unknown command "`)
		if end := strings.Index(errStr[start:], `"`); end != -1 {
			unknownCmd := errStr[start : start+end]
			if suggestion, found := suggestCorrectCommand(unknownCmd, os.Args[1:], rootCmd); found {
				printCommandSuggestion(suggestion)
			}
		}
	}
	return 1
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and stage timings")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON (where supported)")
	rootCmd.PersistentFlags().Bool("plain", false, "Use line-based prompts instead of the full-screen ones")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Never prompt; use defaults and fail when a choice is required")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Project directory (default: current directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(emulatorsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(watchCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput(cmd) {
			printJSON(versionJSON())
			return
		}
		ui.PrintBox("droidloop", "Version: "+version+"\nCommit:  "+commit+"\nBuilt:   "+date)
	},
}

// jsonOutput reports whether --json is set.
func jsonOutput(cmd *cobra.Command) bool {
	return boolFlag(cmd.Flags(), "json")
}

// boolFlag reads a boolean flag, false when it is not defined.
func boolFlag(flags *pflag.FlagSet, name string) bool {
	v, _ := flags.GetBool(name)
	return v
}

func main() {
	os.Exit(Execute())
}
