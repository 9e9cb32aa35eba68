// Package main provides sanity tests for the droidloop command tree.
package main

import (
	"testing"

	"github.com/spf13/pflag"
)

// TestRootCommandInitialization verifies that every subcommand is registered.
func TestRootCommandInitialization(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}

	expectedCommands := []string{
		"version", "build", "task", "clean", "sync",
		"devices", "emulators", "doctor", "watch",
	}
	for _, name := range expectedCommands {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %q not found", name)
		}
	}
}

// TestGlobalFlagsExist verifies that the global flags are registered on the
// root command.
func TestGlobalFlagsExist(t *testing.T) {
	flags := []string{"debug", "quiet", "json", "plain", "non-interactive", "dir"}
	for _, name := range flags {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected global flag %q not found", name)
		}
	}
}

func TestBuildFlags(t *testing.T) {
	for _, name := range []string{"variant", "device", "keep-alive", "copy-artifact", "verbose"} {
		if buildCmd.Flags().Lookup(name) == nil {
			t.Errorf("build flag %q not found", name)
		}
	}
	if f := buildCmd.Flags().ShorthandLookup("k"); f == nil || f.Name != "keep-alive" {
		t.Error("-k is not short for --keep-alive")
	}
}

func TestEmulatorsHasBoot(t *testing.T) {
	if !hasSubcommand(emulatorsCmd, "boot") {
		t.Error("emulators boot is not registered")
	}
}

func TestRootCommandHasUse(t *testing.T) {
	if rootCmd.Use != "droidloop" {
		t.Errorf("expected root command Use to be 'droidloop', got %q", rootCmd.Use)
	}
}

func TestBoolFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("json", false, "")
	if err := flags.Parse([]string{"--json"}); err != nil {
		t.Fatal(err)
	}
	if !boolFlag(flags, "json") {
		t.Error("boolFlag(json) = false after --json")
	}
	if boolFlag(flags, "missing") {
		t.Error("boolFlag(missing) = true")
	}
}
