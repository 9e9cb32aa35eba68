package build

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// GitInfo describes the source revision a build was made from.
type GitInfo struct {
	Commit string
	Branch string
	Dirty  bool
}

// CollectGitInfo reads the current revision of the repository containing
// workDir. It returns nil outside a git checkout.
//
// Parameters:
//   - workDir: The working directory to run git commands in
//
// Returns:
//   - *GitInfo: The revision, or nil
func CollectGitInfo(workDir string) *GitInfo {
	commit := git(workDir, "rev-parse", "--short", "HEAD")
	if commit == "" {
		return nil
	}
	return &GitInfo{
		Commit: commit,
		Branch: git(workDir, "rev-parse", "--abbrev-ref", "HEAD"),
		Dirty:  git(workDir, "status", "--porcelain") != "",
	}
}

// git runs a git subcommand in workDir, returning "" when it fails.
func git(workDir string, args ...string) string {
	cmd := exec.Command("git", append([]string{"-C", workDir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// FormatDuration renders a build time the way Gradle prints it: tenths of
// a second under a minute, then minutes and seconds, then hours and minutes.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
