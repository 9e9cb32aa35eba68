package build

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name: "build types only",
			lines: []string{
				"Build tasks",
				"-----------",
				"assemble - Assemble main outputs for all the variants.",
				"assembleAndroidTest - Assembles all the Test applications.",
				"assembleDebug - Assembles main outputs for all Debug variants.",
				"assembleRelease - Assembles main outputs for all Release variants.",
				"assembleUnitTest - Assembles all the unit test applications.",
				"assembleDebugAndroidTest - Assembles the android (on device) tests for the Debug build.",
			},
			want: []string{"debug", "release"},
		},
		{
			name: "flavors drop aggregates",
			lines: []string{
				"app:assembleDebug - Assembles main outputs for all Debug variants.",
				"app:assembleFree - Assembles main outputs for all Free variants.",
				"app:assembleFreeDebug - Assembles main output for variant freeDebug",
				"app:assembleFreeRelease - Assembles main output for variant freeRelease",
				"app:assemblePaid - Assembles main outputs for all Paid variants.",
				"app:assemblePaidDebug - Assembles main output for variant paidDebug",
				"app:assemblePaidRelease - Assembles main output for variant paidRelease",
				"app:assembleRelease - Assembles main outputs for all Release variants.",
			},
			want: []string{"freeDebug", "freeRelease", "paidDebug", "paidRelease"},
		},
		{
			name:  "nothing",
			lines: []string{"BUILD SUCCESSFUL in 2s"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseVariants(tt.lines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseVariants() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssembleTask(t *testing.T) {
	if got := AssembleTask("freeDebug"); got != "assembleFreeDebug" {
		t.Errorf("AssembleTask() = %q", got)
	}
}

func TestVariantOutputDir(t *testing.T) {
	tests := map[string]string{
		"debug":            "debug",
		"freeDebug":        filepath.Join("free", "debug"),
		"freeStagingDebug": filepath.Join("freeStaging", "debug"),
	}
	for variant, want := range tests {
		if got := VariantOutputDir(variant); got != want {
			t.Errorf("VariantOutputDir(%q) = %q, want %q", variant, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveArtifact_OutputMetadata(t *testing.T) {
	moduleDir := t.TempDir()
	dir := filepath.Join(moduleDir, "build", "outputs", "apk", "free", "debug")
	writeFile(t, filepath.Join(dir, "app-free-debug.apk"), "apk")
	writeFile(t, filepath.Join(dir, outputMetadataFile), `{
  "version": 3,
  "artifactType": {"type": "APK", "kind": "Directory"},
  "applicationId": "com.example.app.free",
  "variantName": "freeDebug",
  "elements": [{"type": "SINGLE", "filters": [], "outputFile": "app-free-debug.apk"}],
  "elementType": "File"
}`)

	art, err := ResolveArtifact(moduleDir, "freeDebug")
	if err != nil {
		t.Fatalf("ResolveArtifact() error = %v", err)
	}
	if art.Path != filepath.Join(dir, "app-free-debug.apk") {
		t.Errorf("Path = %q", art.Path)
	}
	if art.ApplicationID != "com.example.app.free" || art.VariantName != "freeDebug" {
		t.Errorf("artifact = %+v", art)
	}
}

func TestResolveArtifact_NewestAPKFallback(t *testing.T) {
	moduleDir := t.TempDir()
	dir := filepath.Join(moduleDir, "build", "outputs", "apk", "debug")
	older := filepath.Join(dir, "old.apk")
	newer := filepath.Join(dir, "app-debug.apk")
	writeFile(t, older, "old")
	writeFile(t, newer, "new")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	art, err := ResolveArtifact(moduleDir, "debug")
	if err != nil {
		t.Fatalf("ResolveArtifact() error = %v", err)
	}
	if art.Path != newer {
		t.Errorf("Path = %q, want %q", art.Path, newer)
	}
	if art.ApplicationID != "" {
		t.Errorf("ApplicationID = %q, want empty without metadata", art.ApplicationID)
	}
}

func TestResolveArtifact_Missing(t *testing.T) {
	if _, err := ResolveArtifact(t.TempDir(), "debug"); err == nil {
		t.Fatal("ResolveArtifact() error = nil, want error")
	}
}

func TestDiagnose(t *testing.T) {
	lines := strings.Split(`> Task :app:compileDebugKotlin FAILED

FAILURE: Build failed with an exception.

* What went wrong:
Execution failed for task ':app:compileDebugKotlin'.
> Compilation error. See log for more details

* Try:
> Run with --stacktrace option to get the stack trace.

BUILD FAILED in 3s`, "\n")

	got := diagnose(lines)
	want := "Execution failed for task ':app:compileDebugKotlin'.\n> Compilation error. See log for more details"
	if got != want {
		t.Errorf("diagnose() = %q, want %q", got, want)
	}
}

func TestDiagnose_FallsBackToTail(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	lines = append(lines, "last")

	got := diagnose(lines)
	if n := len(strings.Split(got, "\n")); n != diagnosticLines {
		t.Errorf("diagnose() kept %d lines, want %d", n, diagnosticLines)
	}
	if !strings.HasSuffix(got, "last") {
		t.Errorf("diagnose() = %q, want the final line", got)
	}
}

func TestGuidanceFor(t *testing.T) {
	tests := []struct {
		diag string
		want string
	}{
		{"SDK location not found. Define a valid SDK location with an ANDROID_HOME environment variable", "ANDROID_HOME"},
		{"Unsupported class file major version 65", "JDK"},
		{"Could not resolve com.android.tools.build:gradle:8.5.0.", "network"},
		{"Failed to install the following Android SDK packages as some licences have not been accepted.", "sdkmanager --licenses"},
		{"Task 'assembleStaging' not found in project ':app'.", "gradlew tasks --all"},
		{"Execution failed for task ':app:compileDebugKotlin'.", ""},
	}
	for _, tt := range tests {
		got := guidanceFor(tt.diag)
		if tt.want == "" {
			if got != "" {
				t.Errorf("guidanceFor(%q) = %q, want none", tt.diag, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("guidanceFor(%q) = %q, want it to mention %q", tt.diag, got, tt.want)
		}
	}
}

func TestBuildError_Message(t *testing.T) {
	err := &Error{Message: "Build failed", Diagnostic: "Execution failed for task ':app:x'.\n> boom"}
	if got, want := err.Error(), "Build failed: Execution failed for task ':app:x'."; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// fakeWrapper writes an executable gradlew that runs script.
func fakeWrapper(t *testing.T, root, script string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "gradlew"), "#!/bin/sh\n"+script+"\n")
	if err := os.Chmod(filepath.Join(root, "gradlew"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestGradleBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell wrapper")
	}
	root := t.TempDir()
	apkDir := filepath.Join(root, "app", "build", "outputs", "apk", "debug")
	fakeWrapper(t, root, `echo "$@" > args.txt
mkdir -p `+apkDir+`
echo apk > `+filepath.Join(apkDir, "app-debug.apk"))

	g := NewGradle(root, "app", log.New(io.Discard))
	g.ExtraArgs = []string{"--offline"}
	res, err := g.Build(context.Background(), "debug")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if res.ArtifactPath != filepath.Join(apkDir, "app-debug.apk") || res.Variant != "debug" {
		t.Errorf("result = %+v", res)
	}

	args, err := os.ReadFile(filepath.Join(root, "args.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(string(args)), ":app:assembleDebug --console=plain --offline"; got != want {
		t.Errorf("gradlew args = %q, want %q", got, want)
	}
}

func TestGradleBuild_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell wrapper")
	}
	root := t.TempDir()
	fakeWrapper(t, root, `echo "FAILURE: Build failed with an exception." >&2
echo "* What went wrong:" >&2
echo "SDK location not found." >&2
echo "* Try:" >&2
exit 1`)

	_, err := NewGradle(root, "app", log.New(io.Discard)).Build(context.Background(), "debug")
	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("Build() error = %v, want *Error", err)
	}
	if buildErr.Diagnostic != "SDK location not found." {
		t.Errorf("Diagnostic = %q", buildErr.Diagnostic)
	}
	if buildErr.Guidance == "" {
		t.Error("Guidance is empty for a known failure")
	}
}

func TestGradleVariants(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell wrapper")
	}
	root := t.TempDir()
	fakeWrapper(t, root, `echo "assembleDebug - Assembles main outputs for all Debug variants."
echo "assembleRelease - Assembles main outputs for all Release variants."`)

	got, err := NewGradle(root, "app", log.New(io.Discard)).Variants(context.Background())
	if err != nil {
		t.Fatalf("Variants() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"debug", "release"}) {
		t.Errorf("Variants() = %v", got)
	}
}

func TestGradleRefreshDependencies(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell wrapper")
	}
	root := t.TempDir()
	fakeWrapper(t, root, `echo "$@" > args.txt`)

	if err := NewGradle(root, "app", log.New(io.Discard)).RefreshDependencies(context.Background()); err != nil {
		t.Fatalf("RefreshDependencies() error = %v", err)
	}
	args, err := os.ReadFile(filepath.Join(root, "args.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(string(args)), ":app:dependencies --refresh-dependencies --console=plain"; got != want {
		t.Errorf("gradlew args = %q, want %q", got, want)
	}
}
