package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/manifest"
	"github.com/varp-dev/varp/internal/mcp"
)

// --- suggest_touches ---

type suggestTouchesParams struct {
	ManifestPath string   `json:"manifest_path"`
	FilePaths    []string `json:"file_paths"`
}

type suggestTouchesResult struct {
	Reads    []string `json:"reads"`
	Writes   []string `json:"writes"`
	Warnings []string `json:"warnings,omitempty"`
}

// SuggestTouches implements suggest_touches: resolves each file path to
// its owning component (the write set), then adds every component
// reachable from a write via deps (the components a task writing there
// would legitimately need to read, per validate.checkIllegalReads' own
// reachability rule). Ambiguous ownership (spec.md §9 Open Question 1) is
// resolved by manifest order, same as enforce/imports, and surfaced as a
// warning rather than silently picking a winner.
type SuggestTouches struct{}

func NewSuggestTouches() *SuggestTouches { return &SuggestTouches{} }

func (t *SuggestTouches) Name() string { return "suggest_touches" }
func (t *SuggestTouches) Description() string {
	return "Infer a reads/writes touches set from a list of file paths, for drafting a new task."
}
func (t *SuggestTouches) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "file_paths": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["manifest_path", "file_paths"]
}`)
}

func (t *SuggestTouches) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p suggestTouchesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}

	idx := graph.BuildOwnershipIndex(m)
	writes := make(map[string]bool)
	var warnings []string
	for _, fp := range p.FilePaths {
		lookup := idx.Lookup(fp)
		if lookup.Component == "" {
			continue
		}
		writes[lookup.Component] = true
		if lookup.Ambiguous {
			warnings = append(warnings, fmt.Sprintf(
				"%s: ambiguous ownership, resolved to %q (manifest order) over %v", fp, lookup.Component, lookup.OtherOwners))
		}
	}

	g := graph.Build(m)
	reads := make(map[string]bool, len(writes))
	for w := range writes {
		reads[w] = true
		for _, name := range m.Order {
			if name != w && g.DependsOn(w, name) {
				reads[name] = true
			}
		}
	}

	return mcp.JSONResult(suggestTouchesResult{
		Reads:    sortedSetKeys(reads),
		Writes:   sortedSetKeys(writes),
		Warnings: warnings,
	})
}

func sortedSetKeys(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// --- scoped_tests ---

// testFileMarkers are the pack's own dominant per-language test naming
// conventions, matched the same way internal/freshness excludes test
// files from its source-mtime scan.
var testFileMarkers = []string{"_test.go", ".test.ts", ".test.tsx", ".spec.ts", ".spec.tsx"}

type scopedTestsParams struct {
	ManifestPath     string   `json:"manifest_path"`
	Reads            []string `json:"reads,omitempty"`
	Writes           []string `json:"writes,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	IncludeReadTests bool     `json:"include_read_tests,omitempty"`
}

type scopedTestsResult struct {
	TestFiles         []string `json:"test_files"`
	ComponentsCovered []string `json:"components_covered"`
	RunCommand        string   `json:"run_command"`
	RequiredEnv       []string `json:"required_env"`
}

// ScopedTests implements scoped_tests: the set of test files, combined
// run command, and required env vars for the components a task touches.
type ScopedTests struct{}

func NewScopedTests() *ScopedTests { return &ScopedTests{} }

func (t *ScopedTests) Name() string { return "scoped_tests" }
func (t *ScopedTests) Description() string {
	return "Given a touches set (and optional tag filter), return the test files, combined run command, and required env vars that cover it."
}
func (t *ScopedTests) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "reads": {"type": "array", "items": {"type": "string"}},
    "writes": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "include_read_tests": {"type": "boolean"}
  },
  "required": ["manifest_path"]
}`)
}

func (t *ScopedTests) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p scopedTestsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}

	covered := make(map[string]bool, len(p.Writes)+len(p.Reads))
	for _, w := range p.Writes {
		covered[w] = true
	}
	if p.IncludeReadTests {
		for _, r := range p.Reads {
			covered[r] = true
		}
	}

	tagSet := make(map[string]bool, len(p.Tags))
	for _, tag := range p.Tags {
		tagSet[tag] = true
	}

	names := sortedSetKeys(covered)

	var testFiles []string
	var runParts []string
	var finalNames []string
	envSet := make(map[string]bool)
	for _, name := range names {
		comp := m.Component(name)
		if comp == nil {
			continue
		}
		if len(tagSet) > 0 && !hasAnyTag(comp.Tags, tagSet) {
			continue
		}
		finalNames = append(finalNames, name)
		testFiles = append(testFiles, findTestFiles(comp)...)

		if comp.Test != "" {
			runParts = append(runParts, comp.Test)
		}
		for _, e := range comp.Env {
			envSet[e] = true
		}
	}
	sort.Strings(testFiles)

	return mcp.JSONResult(scopedTestsResult{
		TestFiles:         testFiles,
		ComponentsCovered: finalNames,
		RunCommand:        strings.Join(runParts, " && "),
		RequiredEnv:       sortedSetKeys(envSet),
	})
}

func hasAnyTag(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[t] {
			return true
		}
	}
	return false
}

// findTestFiles walks a component's source paths for files matching a
// recognized test-file convention. A path that can't be walked (missing,
// unreadable) is skipped rather than failing the whole call — the same
// best-effort posture internal/freshness takes toward individual docs.
func findTestFiles(comp *manifest.Component) []string {
	var found []string
	for _, root := range comp.Path {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && isTestFileName(d.Name()) {
				found = append(found, path)
			}
			return nil
		})
	}
	return found
}

func isTestFileName(name string) bool {
	for _, marker := range testFileMarkers {
		if strings.HasSuffix(name, marker) {
			return true
		}
	}
	return strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py")
}
