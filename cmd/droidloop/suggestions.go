package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/droidloop/droidloop/internal/ui"
)

// subcommandMap maps subcommand names to their parent commands, so a
// subcommand typed before its parent can be corrected.
var subcommandMap = map[string][]string{
	"boot": {"emulators"},
}

// suggestCorrectCommand checks if the user typed a subcommand before its
// parent and returns the reordered command line.
//
// Parameters:
//   - unknownCmd: The command that was not recognized by Cobra
//   - allArgs: All command line arguments (excluding program name)
//   - root: The root command to search for valid parent commands
//
// Returns:
//   - string: The suggested command line, or empty
//   - bool: True if a suggestion was found
//
// Example:
//
//	unknownCmd: "boot"
//	allArgs: ["--debug", "boot", "emulators", "Pixel_6_API_34"]
//	Returns: "droidloop --debug emulators boot Pixel_6_API_34", true
func suggestCorrectCommand(unknownCmd string, allArgs []string, root *cobra.Command) (string, bool) {
	parents, ok := subcommandMap[unknownCmd]
	if !ok {
		return "", false
	}

	idx := -1
	for i, arg := range allArgs {
		if arg == unknownCmd {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", false
	}

	for i := idx + 1; i < len(allArgs); i++ {
		arg := allArgs[i]
		if strings.HasPrefix(arg, "-") {
			continue
		}
		for _, parent := range parents {
			if arg != parent || !hasSubcommand(root, parent) {
				continue
			}
			parts := []string{"droidloop"}
			parts = append(parts, allArgs[:idx]...)
			parts = append(parts, parent, unknownCmd)
			parts = append(parts, allArgs[idx+1:i]...)
			parts = append(parts, allArgs[i+1:]...)
			return strings.Join(parts, " "), true
		}
	}
	return "", false
}

func hasSubcommand(root *cobra.Command, name string) bool {
	for _, c := range root.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// printCommandSuggestion prints a "did you mean" suggestion.
func printCommandSuggestion(suggestion string) {
	ui.Println()
	ui.PrintInfo("Did you mean:")
	ui.PrintDim("  %s", suggestion)
	ui.Println()
}
