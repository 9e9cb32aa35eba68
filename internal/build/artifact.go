package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// outputMetadataFile is written by the Android Gradle Plugin next to the
// APKs of each variant.
const outputMetadataFile = "output-metadata.json"

// Artifact is a built APK.
type Artifact struct {
	// Path is the absolute path to the APK.
	Path string

	// ApplicationID is the package name declared in the output metadata,
	// empty when unknown.
	ApplicationID string

	// VariantName is the variant the metadata describes.
	VariantName string
}

// ResolveArtifact finds the APK produced for variant in moduleDir.
//
// Parameters:
//   - moduleDir: The application module directory, e.g. <root>/app
//   - variant: The variant that was built, e.g. "freeDebug"
//
// Returns:
//   - *Artifact: The resolved artifact
//   - error: Any error that occurred during resolution
//
// The output metadata is preferred. Without it the most recently modified
// APK in the variant's output directory is returned.
func ResolveArtifact(moduleDir, variant string) (*Artifact, error) {
	dir := filepath.Join(moduleDir, "build", "outputs", "apk", VariantOutputDir(variant))

	if art, err := readOutputMetadata(dir); err == nil {
		return art, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.apk"))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no APK found in %s", dir)
	}
	path, err := getMostRecentFile(matches)
	if err != nil {
		return nil, err
	}
	return &Artifact{Path: path, VariantName: variant}, nil
}

// readOutputMetadata parses output-metadata.json in dir.
func readOutputMetadata(dir string) (*Artifact, error) {
	data, err := os.ReadFile(filepath.Join(dir, outputMetadataFile))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s in %s is not valid JSON", outputMetadataFile, dir)
	}

	meta := gjson.ParseBytes(data)
	outputFile := meta.Get("elements.0.outputFile").String()
	if outputFile == "" {
		return nil, fmt.Errorf("%s in %s lists no output file", outputMetadataFile, dir)
	}

	path := filepath.Join(dir, outputFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("artifact listed in %s not found: %w", outputMetadataFile, err)
	}

	return &Artifact{
		Path:          path,
		ApplicationID: meta.Get("applicationId").String(),
		VariantName:   meta.Get("variantName").String(),
	}, nil
}

// VariantOutputDir returns the directory, relative to build/outputs/apk, that
// the Android Gradle Plugin writes a variant's APKs to: the flavor
// combination followed by the build type, e.g. "freeDebug" -> "free/debug".
func VariantOutputDir(variant string) string {
	flavor, buildType := splitVariant(variant)
	if flavor == "" {
		return buildType
	}
	return filepath.Join(flavor, buildType)
}

// splitVariant splits a variant at its last camel-case boundary.
func splitVariant(variant string) (flavor, buildType string) {
	runes := []rune(variant)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) {
			return string(runes[:i]), strings.ToLower(string(runes[i:i+1])) + string(runes[i+1:])
		}
	}
	return "", variant
}

// getMostRecentFile returns the most recently modified file from a list of paths.
//
// Parameters:
//   - paths: List of file paths to check
//
// Returns:
//   - string: Path to the most recently modified file
//   - error: Any error that occurred
func getMostRecentFile(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no files provided")
	}

	var mostRecent string
	var mostRecentTime int64

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().UnixNano() > mostRecentTime {
			mostRecentTime = info.ModTime().UnixNano()
			mostRecent = path
		}
	}

	if mostRecent == "" {
		return paths[0], nil
	}
	return mostRecent, nil
}
