package build

import (
	"strings"
)

// diagnosticLines bounds the fallback diagnostic when Gradle printed no
// "What went wrong" section.
const diagnosticLines = 20

// Error is a failed build. Diagnostic is the relevant part of the build
// tool's output.
type Error struct {
	// Variant is the variant that was being built.
	Variant string

	// Message is the error message.
	Message string

	// Diagnostic is the extracted failure output.
	Diagnostic string

	// Guidance provides instructions on how to fix the error, when known.
	Guidance string

	// Err is the underlying process error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Diagnostic == "" {
		return e.Message
	}
	return e.Message + ": " + firstLine(e.Diagnostic)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// diagnose extracts Gradle's "What went wrong" section from output, or
// falls back to the last lines.
func diagnose(lines []string) string {
	var section []string
	in := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "* What went wrong:"):
			in = true
			section = section[:0]
			continue
		case in && (strings.HasPrefix(trimmed, "* Try:") ||
			strings.HasPrefix(trimmed, "* Exception is:") ||
			strings.HasPrefix(trimmed, "* Get more help")):
			in = false
			continue
		}
		if in {
			section = append(section, line)
		}
	}
	if text := strings.TrimSpace(strings.Join(section, "\n")); text != "" {
		return text
	}

	start := len(lines) - diagnosticLines
	if start < 0 {
		start = 0
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

// guidanceRule maps any lowercase substring of the diagnostic to a fix.
type guidanceRule struct {
	substrings []string
	guidance   string
}

var guidanceRules = []guidanceRule{
	{
		substrings: []string{"sdk location not found", "android_home", "android_sdk_root"},
		guidance: `Point Gradle at your Android SDK:
  export ANDROID_HOME=$HOME/Android/Sdk

or add to local.properties:
  sdk.dir=/path/to/Android/Sdk`,
	},
	{
		substrings: []string{"unsupported class file major version", "requires java", "incompatible because this component declares a component compatible with java"},
		guidance: `The Android Gradle Plugin needs a newer JDK.
Install JDK 17 or later and point JAVA_HOME at it:
  java -version`,
	},
	{
		substrings: []string{"gradlew: permission denied"},
		guidance: `Make the Gradle wrapper executable:
  chmod +x gradlew`,
	},
	{
		substrings: []string{"could not resolve", "could not get resource", "unknown host"},
		guidance: `Dependencies could not be downloaded.
Check your network connection or proxy settings, then retry.
If you are offline, build with --offline after a successful online build.`,
	},
	{
		substrings: []string{"license for package", "licences have not been accepted", "licenses have not been accepted"},
		guidance: `Accept the Android SDK licenses:
  sdkmanager --licenses`,
	},
	{
		substrings: []string{"not found in project"},
		guidance: `The requested task does not exist in this project.
List the tasks Gradle knows about:
  ./gradlew tasks --all`,
	},
}

// guidanceFor returns a fix for a known failure pattern, or "".
func guidanceFor(diagnostic string) string {
	lower := strings.ToLower(diagnostic)
	for _, rule := range guidanceRules {
		for _, s := range rule.substrings {
			if strings.Contains(lower, s) {
				return rule.guidance
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
