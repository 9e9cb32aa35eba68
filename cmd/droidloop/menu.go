package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/orchestrator"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/tui"
	"github.com/droidloop/droidloop/internal/ui"
)

// Main menu item keys.
const (
	itemBuild    = "build"
	itemTask     = "task"
	itemClean    = "clean"
	itemSync     = "sync"
	itemDevices  = "devices"
	itemEmulator = "emulator"
	itemDoctor   = "doctor"
	itemQuit     = "quit"
)

var menuItems = []tui.MenuItem{
	{Key: itemBuild, Label: "Build, install & launch", Hint: "droidloop build -k"},
	{Key: itemTask, Label: "Run a task", Hint: "droidloop task <name>"},
	{Key: itemClean, Label: "Clean", Hint: "droidloop clean"},
	{Key: itemSync, Label: "Sync", Hint: "droidloop sync"},
	{Key: itemDevices, Label: "List devices", Hint: "droidloop devices"},
	{Key: itemEmulator, Label: "Start an emulator", Hint: "droidloop emulators boot"},
	{Key: itemDoctor, Label: "Check setup", Hint: "droidloop doctor"},
	{Key: itemQuit, Label: "Quit"},
}

// menuPrompter is implemented by prompters that can draw the full menu.
type menuPrompter interface {
	Menu(ctx context.Context, header tui.MenuHeader, items []tui.MenuItem) (string, error)
}

// runMenu is the interactive entry point: it loops over the main menu until
// the user quits.
func runMenu(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.prompter.Interactive() {
		ui.PrintWarning("No interactive terminal; run a command instead")
		return cmd.Help()
	}

	ctx := cmd.Context()
	for {
		key, err := a.chooseMenuItem(ctx)
		if err != nil {
			if prompt.IsCancelled(err) {
				return nil
			}
			return err
		}
		if key == itemQuit {
			return nil
		}

		err = a.runMenuItem(cmd, key)
		switch {
		case err == nil, errors.Is(err, errReported):
		case prompt.IsCancelled(err):
			if ctx.Err() != nil {
				return nil
			}
		default:
			ui.PrintError("%v", err)
		}
		ui.Println()
	}
}

func (a *app) chooseMenuItem(ctx context.Context) (string, error) {
	if m, ok := a.prompter.(menuPrompter); ok {
		return m.Menu(ctx, a.menuHeader(), menuItems)
	}

	labels := make([]string, len(menuItems))
	for i, item := range menuItems {
		labels[i] = item.Label
	}
	idx, err := a.prompter.Select(ctx, "What do you want to do?", labels, 0)
	if err != nil {
		return "", err
	}
	return menuItems[idx].Key, nil
}

func (a *app) menuHeader() tui.MenuHeader {
	name := a.packageID()
	if name == "" {
		name = filepath.Base(a.project.Root)
	}
	return tui.MenuHeader{
		Version: version,
		Project: name,
		Variant: a.store.DefaultVariant(),
		Device:  a.store.SelectedDevice(),
	}
}

func (a *app) runMenuItem(cmd *cobra.Command, key string) error {
	ctx := cmd.Context()
	switch key {
	case itemBuild:
		return a.runCycle(cmd, orchestrator.CycleOptions{KeepAlive: true}, false, false)
	case itemTask:
		name, err := a.prompter.Input(ctx, "Task name:", "lint")
		if err != nil {
			return err
		}
		return a.asReported(a.runTask(ctx, name))
	case itemClean:
		return a.asReported(a.runClean(ctx))
	case itemSync:
		return a.asReported(a.runSync(ctx))
	case itemDevices:
		return runDevices(cmd, nil)
	case itemEmulator:
		return runEmulatorsBoot(cmd, nil)
	case itemDoctor:
		if err := runDoctor(cmd, nil); err != nil {
			return errReported
		}
		return nil
	}
	return nil
}

// asReported maps task failures, already shown by the orchestrator, to
// errReported.
func (a *app) asReported(err error) error {
	var taskErr *orchestrator.TaskError
	if errors.As(err, &taskErr) {
		return errReported
	}
	return err
}
