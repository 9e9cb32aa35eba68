// Package install classifies installer diagnostics and runs a single,
// bounded recovery attempt for the failure kinds that have one.
package install

import (
	"fmt"
	"strings"
)

// FailureKind is the closed set of installation failure categories.
type FailureKind int

const (
	// KindUnknown matched no rule.
	KindUnknown FailureKind = iota

	// KindInsufficientStorage means the device ran out of space.
	KindInsufficientStorage

	// KindDuplicatePackage means a conflicting install already exists.
	KindDuplicatePackage

	// KindInvalidAPK means the artifact could not be parsed.
	KindInvalidAPK

	// KindPermissionDenied means device policy blocked the install.
	KindPermissionDenied
)

// String returns the name of the kind.
func (k FailureKind) String() string {
	switch k {
	case KindInsufficientStorage:
		return "InsufficientStorage"
	case KindDuplicatePackage:
		return "DuplicatePackage"
	case KindInvalidAPK:
		return "InvalidApk"
	case KindPermissionDenied:
		return "PermissionDenied"
	default:
		return "Unknown"
	}
}

// Rule maps any of its lowercase substrings to a kind and a suggestion.
type Rule struct {
	Kind       FailureKind
	Substrings []string
	Suggestion string
}

// Rules is evaluated in order; the first rule with a matching substring wins.
var Rules = []Rule{
	{
		Kind:       KindInsufficientStorage,
		Substrings: []string{"insufficient_storage"},
		Suggestion: "Free up space on the device: uninstall unused apps or clear app data",
	},
	{
		Kind:       KindDuplicatePackage,
		Substrings: []string{"already_exists", "duplicate_package"},
		Suggestion: "The app is already installed: uninstall it or force a reinstall",
	},
	{
		Kind:       KindInvalidAPK,
		Substrings: []string{"invalid_apk", "failed to parse"},
		Suggestion: "The APK is corrupted or invalid: rebuild the project",
	},
	{
		Kind:       KindPermissionDenied,
		Substrings: []string{"permission denied", "user_restricted"},
		Suggestion: "Enable installs from unknown sources and check the device's install policy",
	},
}

// UnknownSuggestion accompanies KindUnknown.
const UnknownSuggestion = "Check the device connection and Android toolchain, then retry"

// Classification is the result of Classify.
type Classification struct {
	Kind       FailureKind
	Suggestion string
}

// Classify maps raw installer output to a failure kind using Rules.
// Matching is case-insensitive. Classify is pure.
func Classify(diagnostic string) Classification {
	lower := strings.ToLower(diagnostic)
	for _, rule := range Rules {
		for _, s := range rule.Substrings {
			if strings.Contains(lower, s) {
				return Classification{Kind: rule.Kind, Suggestion: rule.Suggestion}
			}
		}
	}
	return Classification{Kind: KindUnknown, Suggestion: UnknownSuggestion}
}

// Failure is a classified installation failure.
type Failure struct {
	Kind       FailureKind
	Diagnostic string
	Suggestion string
}

// NewFailure classifies diagnostic with classify and returns the Failure.
func NewFailure(diagnostic string, classify func(string) Classification) Failure {
	c := classify(diagnostic)
	return Failure{Kind: c.Kind, Diagnostic: diagnostic, Suggestion: c.Suggestion}
}

// FailedError is a terminal installation failure.
type FailedError struct {
	Kind FailureKind

	// Message summarises what went wrong.
	Message string

	// Diagnostic is the installer output the message refers to.
	Diagnostic string

	// Suggestion is the remediation hint, empty when none applies.
	Suggestion string
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	if e.Diagnostic == "" || strings.Contains(e.Message, e.Diagnostic) {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Diagnostic)
}
