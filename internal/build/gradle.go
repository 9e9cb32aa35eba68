package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
)

// Result is a successful build.
type Result struct {
	// Variant is the variant that was built.
	Variant string

	// ArtifactPath is the absolute path to the APK.
	ArtifactPath string

	// ApplicationID is the package name from the build output metadata,
	// empty when the metadata did not declare one.
	ApplicationID string

	// Duration is the wall-clock build time.
	Duration time.Duration
}

// Gradle builds variants of one application module through the Gradle
// wrapper.
type Gradle struct {
	// Root is the Gradle root project directory.
	Root string

	// Module is the application module name, e.g. "app".
	Module string

	// ExtraArgs are appended to every invocation.
	ExtraArgs []string

	// OnOutput receives every line of build output. May be nil.
	OnOutput func(line string)

	runner *Runner
	logger *log.Logger
}

// NewGradle creates a Gradle builder for module inside root.
//
// Parameters:
//   - root: The Gradle root project directory
//   - module: The application module name
//   - logger: Logger for debug output
//
// Returns:
//   - *Gradle: A builder using the project's wrapper when present
func NewGradle(root, module string, logger *log.Logger) *Gradle {
	return &Gradle{
		Root:   root,
		Module: module,
		runner: NewRunner(root),
		logger: logger,
	}
}

// ModuleDir returns the application module directory.
func (g *Gradle) ModuleDir() string {
	return filepath.Join(g.Root, g.Module)
}

// Executable returns the Gradle wrapper if the project has one, else the
// gradle binary on PATH.
func (g *Gradle) Executable() (string, error) {
	wrapper := "gradlew"
	if runtime.GOOS == "windows" {
		wrapper = "gradlew.bat"
	}
	path := filepath.Join(g.Root, wrapper)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	if path, err := exec.LookPath("gradle"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("no Gradle wrapper in %s and gradle is not on PATH", g.Root)
}

func (g *Gradle) run(ctx context.Context, tasks ...string) error {
	exe, err := g.Executable()
	if err != nil {
		return err
	}
	args := append(append([]string{}, tasks...), "--console=plain")
	args = append(args, g.ExtraArgs...)
	g.logger.Debug("Running Gradle", "exe", exe, "args", strings.Join(args, " "))
	return g.runner.Run(ctx, exe, args, g.OnOutput)
}

// task returns the module-qualified name of a task.
func (g *Gradle) task(name string) string {
	if g.Module == "" {
		return name
	}
	return ":" + g.Module + ":" + name
}

// AssembleTask returns the task that builds variant.
func AssembleTask(variant string) string {
	return "assemble" + upperFirst(variant)
}

// Build assembles variant and resolves its APK.
//
// Parameters:
//   - ctx: Context for cancellation
//   - variant: The variant to build
//
// Returns:
//   - *Result: The built artifact
//   - error: *Error with the Gradle diagnostic, or ctx.Err() when cancelled
func (g *Gradle) Build(ctx context.Context, variant string) (*Result, error) {
	start := time.Now()
	if err := g.run(ctx, g.task(AssembleTask(variant))); err != nil {
		return nil, g.buildError(ctx, variant, "Build failed", err)
	}

	art, err := ResolveArtifact(g.ModuleDir(), variant)
	if err != nil {
		return nil, &Error{
			Variant:    variant,
			Message:    "Build finished but no APK was found",
			Diagnostic: err.Error(),
			Err:        err,
		}
	}

	elapsed := time.Since(start)
	g.logger.Debug("Build finished", "variant", variant, "artifact", art.Path, "duration", elapsed)
	return &Result{
		Variant:       variant,
		ArtifactPath:  art.Path,
		ApplicationID: art.ApplicationID,
		Duration:      elapsed,
	}, nil
}

// RunTask runs an arbitrary Gradle task at the root project.
func (g *Gradle) RunTask(ctx context.Context, name string) error {
	if err := g.run(ctx, name); err != nil {
		return g.buildError(ctx, "", fmt.Sprintf("Task %s failed", name), err)
	}
	return nil
}

// Clean runs the clean task.
func (g *Gradle) Clean(ctx context.Context) error {
	return g.RunTask(ctx, "clean")
}

// RefreshDependencies resolves the module's dependencies again, bypassing
// Gradle's dependency cache.
func (g *Gradle) RefreshDependencies(ctx context.Context) error {
	if err := g.run(ctx, g.task("dependencies"), "--refresh-dependencies"); err != nil {
		return g.buildError(ctx, "", "Dependency refresh failed", err)
	}
	return nil
}

func (g *Gradle) buildError(ctx context.Context, variant, message string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exit *ExitError
	if !errors.As(err, &exit) {
		return &Error{Variant: variant, Message: message, Diagnostic: err.Error(), Err: err}
	}
	diag := diagnose(exit.Lines)
	return &Error{
		Variant:    variant,
		Message:    message,
		Diagnostic: diag,
		Guidance:   guidanceFor(diag),
		Err:        err,
	}
}

// assembleTaskPattern matches assemble tasks in `gradle tasks --all` output.
var assembleTaskPattern = regexp.MustCompile(`^(?:\S+:)?assemble([A-Z]\w*)(?:\s+-.*)?$`)

// Variants lists the module's installable variants by asking Gradle for its
// assemble tasks.
func (g *Gradle) Variants(ctx context.Context) ([]string, error) {
	exe, err := g.Executable()
	if err != nil {
		return nil, err
	}

	var lines []string
	args := append([]string{g.task("tasks"), "--all", "--console=plain"}, g.ExtraArgs...)
	g.logger.Debug("Discovering variants", "exe", exe)
	if err := g.runner.Run(ctx, exe, args, func(line string) { lines = append(lines, line) }); err != nil {
		return nil, g.buildError(ctx, "", "Failed to list Gradle tasks", err)
	}

	variants := ParseVariants(lines)
	if len(variants) == 0 {
		return nil, fmt.Errorf("no assemble tasks found for module %q", g.Module)
	}
	return variants, nil
}

// ParseVariants extracts installable variant names from `gradle tasks --all`
// output. Test variants and aggregate tasks are left out: when "freeDebug"
// exists, "free" and "debug" only aggregate it.
func ParseVariants(lines []string) []string {
	seen := map[string]bool{}
	var all []string
	for _, line := range lines {
		m := assembleTaskPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name := m[1]
		if strings.HasSuffix(name, "Test") {
			continue
		}
		v := lowerFirst(name)
		if !seen[v] {
			seen[v] = true
			all = append(all, v)
		}
	}

	var variants []string
	for _, v := range all {
		if !isAggregate(v, all) {
			variants = append(variants, v)
		}
	}
	sort.Strings(variants)
	return variants
}

// isAggregate reports whether another variant extends v with a flavor
// prefix or a build type suffix.
func isAggregate(v string, all []string) bool {
	upper := upperFirst(v)
	for _, other := range all {
		if other == v {
			continue
		}
		if strings.HasSuffix(other, upper) {
			return true
		}
		if rest, ok := strings.CutPrefix(other, v); ok && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
