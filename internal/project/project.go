// Package project locates the Android project droidloop operates on.
package project

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotDetected is returned when no Android project encloses the directory.
var ErrNotDetected = errors.New("no Android project found (looked for settings.gradle, gradlew, or a Capacitor android/ directory)")

// Kind is the type of project layout.
type Kind int

const (
	// KindGradle is a plain Android Gradle project.
	KindGradle Kind = iota

	// KindCapacitor is a Capacitor or Ionic project whose native shell lives
	// in android/.
	KindCapacitor
)

// String returns the human-readable name of the layout.
func (k Kind) String() string {
	if k == KindCapacitor {
		return "Capacitor"
	}
	return "Gradle (Android)"
}

// DefaultModule is the conventional application module.
const DefaultModule = "app"

// Project is a detected Android project.
type Project struct {
	// Root is the directory droidloop keeps its state in: the Capacitor
	// root, or the Gradle root for plain projects.
	Root string

	// GradleRoot is the directory holding settings.gradle and the wrapper.
	GradleRoot string

	// Module is the application module name.
	Module string

	// PackageID is the applicationId from the module build script, empty
	// when it could not be read statically.
	PackageID string

	// Kind is the layout type.
	Kind Kind
}

// ModuleDir returns the application module directory.
func (p *Project) ModuleDir() string {
	return filepath.Join(p.GradleRoot, p.Module)
}

var gradleMarkers = []string{"settings.gradle", "settings.gradle.kts", "gradlew"}

var capacitorMarkers = []string{"capacitor.config.ts", "capacitor.config.js", "capacitor.config.json", "ionic.config.json"}

// Detect walks up from dir to the nearest enclosing Android project.
//
// Parameters:
//   - dir: Directory to start from
//   - module: Application module name, DefaultModule when empty
//
// Returns:
//   - *Project: The detected project
//   - error: ErrNotDetected when nothing matched
func Detect(dir, module string) (*Project, error) {
	if module == "" {
		module = DefaultModule
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for current := abs; ; {
		if p := detectAt(current, module); p != nil {
			p.PackageID = ReadApplicationID(p.ModuleDir())
			return p, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNotDetected
		}
		current = parent
	}
}

func detectAt(dir, module string) *Project {
	// A Capacitor root wins over its own android/ subproject so state lives
	// next to the web sources.
	if anyExists(dir, capacitorMarkers) && anyExists(filepath.Join(dir, "android"), gradleMarkers) {
		return &Project{Root: dir, GradleRoot: filepath.Join(dir, "android"), Module: module, Kind: KindCapacitor}
	}
	if anyExists(dir, gradleMarkers) {
		// Inside a Capacitor android/ directory, report the Capacitor root.
		parent := filepath.Dir(dir)
		if filepath.Base(dir) == "android" && anyExists(parent, capacitorMarkers) {
			return &Project{Root: parent, GradleRoot: dir, Module: module, Kind: KindCapacitor}
		}
		return &Project{Root: dir, GradleRoot: dir, Module: module, Kind: KindGradle}
	}
	return nil
}

func anyExists(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// applicationIDPattern matches both Groovy and Kotlin DSL forms:
// applicationId "com.example" and applicationId = "com.example".
var applicationIDPattern = regexp.MustCompile(`(?m)^\s*applicationId\s*(?:=\s*)?["']([A-Za-z][\w.]*)["']`)

// ReadApplicationID returns the first literal applicationId in the module's
// build script, or "" when there is none.
func ReadApplicationID(moduleDir string) string {
	for _, name := range []string{"build.gradle.kts", "build.gradle"} {
		data, err := os.ReadFile(filepath.Join(moduleDir, name))
		if err != nil {
			continue
		}
		if m := applicationIDPattern.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	return ""
}
