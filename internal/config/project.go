// Package config provides project configuration management.
//
// This package handles reading and writing .droidloop/config.yaml in the
// project root. The file holds optional overrides for what droidloop detects
// on its own, plus the choices it remembers between runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-project state directory.
	DirName = ".droidloop"

	// FileName is the config file inside DirName.
	FileName = "config.yaml"
)

// ProjectConfig represents the .droidloop/config.yaml file.
type ProjectConfig struct {
	// Project contains project identification overrides.
	Project Project `yaml:"project,omitempty"`

	// Build contains build configuration.
	Build BuildConfig `yaml:"build,omitempty"`

	// Device remembers the last chosen deploy target.
	Device DeviceConfig `yaml:"device,omitempty"`

	// Emulator tunes the readiness poll after an emulator boot.
	Emulator EmulatorConfig `yaml:"emulator,omitempty"`

	// Terminal configures where device logs are opened.
	Terminal TerminalConfig `yaml:"terminal,omitempty"`

	// Tasks maps task aliases to shell commands, e.g. "sync".
	Tasks map[string]string `yaml:"tasks,omitempty"`

	// Watch configures the watch command.
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// Project contains project identification overrides.
type Project struct {
	// Module is the application module, "app" when empty.
	Module string `yaml:"module,omitempty"`

	// PackageID overrides the detected application id.
	PackageID string `yaml:"package_id,omitempty"`
}

// BuildConfig contains build configuration.
type BuildConfig struct {
	// Variants declares the selectable variants. When empty they are
	// discovered from Gradle.
	Variants []string `yaml:"variants,omitempty"`

	// DefaultVariant is the variant used without prompting.
	DefaultVariant string `yaml:"default_variant,omitempty"`

	// GradleArgs are appended to every Gradle invocation.
	GradleArgs []string `yaml:"gradle_args,omitempty"`
}

// DeviceConfig remembers the selected device.
type DeviceConfig struct {
	// Selected is the ID of the last chosen device.
	Selected string `yaml:"selected,omitempty"`
}

// EmulatorConfig tunes emulator provisioning.
type EmulatorConfig struct {
	// PollInterval is the delay between readiness checks.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`

	// PollAttempts bounds the number of readiness checks.
	PollAttempts int `yaml:"poll_attempts,omitempty"`
}

// TerminalConfig configures the log terminal.
type TerminalConfig struct {
	// Command is a terminal command line with a {cmd} placeholder for the
	// command to run, e.g. "kitty -e {cmd}". Empty means auto-detect.
	Command string `yaml:"command,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Paths are watched recursively, relative to the project root.
	Paths []string `yaml:"paths,omitempty"`

	// Debounce is the quiet period before a rebuild starts.
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Path returns the config file location for a project root.
func Path(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// LoadProjectConfig loads a project configuration from a file. A missing file
// yields an empty configuration.
//
// Parameters:
//   - path: Path to the config.yaml file
//
// Returns:
//   - *ProjectConfig: The loaded configuration
//   - error: Any error that occurred during loading
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ProjectConfig{Tasks: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Tasks == nil {
		cfg.Tasks = make(map[string]string)
	}
	if cfg.Emulator.PollAttempts < 0 {
		return nil, fmt.Errorf("emulator.poll_attempts must not be negative")
	}
	if cfg.Emulator.PollInterval < 0 {
		return nil, fmt.Errorf("emulator.poll_interval must not be negative")
	}

	return &cfg, nil
}

// WriteProjectConfig writes a project configuration to a file, creating the
// state directory when needed.
//
// Parameters:
//   - path: Path to write the config.yaml file
//   - cfg: The configuration to write
//
// Returns:
//   - error: Any error that occurred during writing
func WriteProjectConfig(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# droidloop configuration\n# Choices made at prompts are saved here.\n\n"
	content := header + string(data)

	// Write through a temp file so an interrupted save never truncates
	// the config.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
