package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/orchestrator"
)

// printJSON writes a JSON document to stdout, pretty-printed.
func printJSON(doc string) {
	fmt.Fprintln(os.Stdout, strings.TrimRight(string(pretty([]byte(doc))), "\n"))
}

// pretty indents a JSON document, leaving invalid input unchanged.
func pretty(doc []byte) []byte {
	if !gjson.ValidBytes(doc) {
		return doc
	}
	return []byte(gjson.GetBytes(doc, "@pretty").Raw)
}

func versionJSON() string {
	doc, _ := sjson.Set("", "version", version)
	doc, _ = sjson.Set(doc, "commit", commit)
	doc, _ = sjson.Set(doc, "date", date)
	return doc
}

// cycleJSON renders the outcome of a build cycle for --json.
//
// Parameters:
//   - res: The cycle result
//   - git: The source revision, nil outside a checkout
//
// Returns:
//   - string: The JSON document
func cycleJSON(res *orchestrator.Result, git *build.GitInfo) string {
	doc := `{}`
	set := func(path string, v interface{}) {
		doc, _ = sjson.Set(doc, path, v)
	}

	set("session_id", res.SessionID)
	set("success", res.Success)
	set("cancelled", res.Cancelled)
	set("variant", res.Variant)
	set("device", res.DeviceID)
	set("builds", res.Builds)
	if res.ArtifactPath != "" {
		set("artifact.path", res.ArtifactPath)
	}
	if res.ApplicationID != "" {
		set("artifact.application_id", res.ApplicationID)
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	set("warnings", warnings)
	if res.Err != nil {
		set("error", res.Err.Error())
	}
	if git != nil {
		set("git.commit", git.Commit)
		set("git.branch", git.Branch)
		set("git.dirty", git.Dirty)
	}
	return doc
}
