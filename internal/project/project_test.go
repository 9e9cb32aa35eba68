package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect_GradleFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "settings.gradle.kts"), `include(":app")`)
	touch(t, filepath.Join(root, "app", "build.gradle.kts"), `android {
    defaultConfig {
        applicationId = "com.example.notes"
    }
}`)
	src := filepath.Join(root, "app", "src", "main")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := Detect(src, "")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if p.Root != root || p.GradleRoot != root || p.Kind != KindGradle {
		t.Errorf("project = %+v", p)
	}
	if p.Module != DefaultModule || p.PackageID != "com.example.notes" {
		t.Errorf("Module = %q, PackageID = %q", p.Module, p.PackageID)
	}
}

func TestDetect_Capacitor(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "capacitor.config.ts"), "export default {}")
	touch(t, filepath.Join(root, "android", "gradlew"), "#!/bin/sh")
	touch(t, filepath.Join(root, "android", "app", "build.gradle"), `defaultConfig {
        applicationId "io.ionic.starter"
}`)

	for _, start := range []string{root, filepath.Join(root, "android")} {
		p, err := Detect(start, "")
		if err != nil {
			t.Fatalf("Detect(%s) error = %v", start, err)
		}
		if p.Kind != KindCapacitor || p.Root != root || p.GradleRoot != filepath.Join(root, "android") {
			t.Errorf("Detect(%s) = %+v", start, p)
		}
		if p.PackageID != "io.ionic.starter" {
			t.Errorf("PackageID = %q", p.PackageID)
		}
	}
}

func TestDetect_NotFound(t *testing.T) {
	if _, err := Detect(t.TempDir(), ""); !errors.Is(err, ErrNotDetected) {
		t.Fatalf("Detect() error = %v, want ErrNotDetected", err)
	}
}

func TestReadApplicationID(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		script string
		want   string
	}{
		{"groovy double quotes", "build.gradle", `applicationId "com.example.a"`, "com.example.a"},
		{"groovy single quotes", "build.gradle", `    applicationId 'com.example.b'`, "com.example.b"},
		{"kotlin", "build.gradle.kts", `applicationId = "com.example.c"`, "com.example.c"},
		{"suffix only", "build.gradle", `applicationIdSuffix ".debug"`, ""},
		{"computed", "build.gradle.kts", `applicationId = appId`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, filepath.Join(dir, tt.file), tt.script)
			if got := ReadApplicationID(dir); got != tt.want {
				t.Errorf("ReadApplicationID() = %q, want %q", got, tt.want)
			}
		})
	}
}
