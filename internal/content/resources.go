// Package content provides MCP prompts and resources for the varp server.
package content

import "github.com/varp-dev/varp/internal/mcp"

// --- varp://manifest-format resource ---

// ManifestFormatResource exposes the component manifest schema as a
// reference resource, so a connecting client can read the exact shape
// without a round trip through parse_manifest on a sample file.
type ManifestFormatResource struct{}

func (r *ManifestFormatResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "varp://manifest-format",
		Name:        "Component Manifest Format",
		Description: "YAML schema for the component manifest: version key, component records, path/deps/docs/tags/stability/test/env fields",
		MimeType:    "text/markdown",
	}
}

func (r *ManifestFormatResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "varp://manifest-format",
				MimeType: "text/markdown",
				Text:     manifestFormatContent,
			},
		},
	}, nil
}

// --- varp://hazard-rules resource ---

// HazardRulesResource exposes the pairwise hazard-detection table as a
// reference resource.
type HazardRulesResource struct{}

func (r *HazardRulesResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "varp://hazard-rules",
		Name:        "Hazard Detection Rules",
		Description: "The RAW/WAW/WAR pairwise hazard table, WAR suppression rule, and emission order used by schedule and validate_plan",
		MimeType:    "text/markdown",
	}
}

func (r *HazardRulesResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "varp://hazard-rules",
				MimeType: "text/markdown",
				Text:     hazardRulesContent,
			},
		},
	}, nil
}

// --- varp://tool-reference resource ---

// ToolReferenceResource exposes a quick-reference card for every operation.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "varp://tool-reference",
		Name:        "Operation Reference",
		Description: "Quick-reference card for every varp operation: input shape, output shape, and which are read-only vs. the one write path",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "varp://tool-reference",
				MimeType: "text/markdown",
				Text:     toolReferenceContent,
			},
		},
	}, nil
}

// --- Static content ---

const manifestFormatContent = `# Component Manifest Format

The manifest is a single YAML file. Top-level keys are a ` + "`version`" + ` string
and one entry per component, keyed by component name.

` + "```yaml" + `
version: "1"

auth:
  path: src/auth               # string, or a non-empty sequence of strings
  deps: []                     # component names this one depends on
  docs: [src/auth/README.md]   # attached docs; README.md under each path is auto-added
  tags: [backend]
  stability: stable            # stable | active | experimental (default: active)
  test: "go test ./src/auth/..."
  env: [AUTH_SECRET]

api:
  path: [src/api, src/api/internal]
  deps: [auth]
` + "```" + `

## Field notes

- **path** is either a single string or a sequence; every entry is
  resolved relative to the manifest file's directory.
- **deps** lists other component names this component depends on. A
  dangling name (one that isn't itself a component key) is not a parse
  error: parse_manifest returns the manifest as declared. Neither
  parse_manifest nor validate_plan reports dangling names.
- **docs** is optional. A README.md directly under each path entry is
  auto-discovered and appended to the listed docs unless it is already
  listed, whether or not docs is given; no README is attached twice.
- **stability** defaults to ` + "`active`" + ` when omitted; any value outside
  ` + "`stable`" + `/` + "`active`" + `/` + "`experimental`" + ` is a malformed-manifest error.
- Ownership for any file path is resolved by longest matching path
  prefix across all components; a tie (two components declaring the
  exact same path) is broken by manifest key order — the first-declared
  component wins.
`

const hazardRulesContent = `# Hazard Detection Rules

For every unordered pair of tasks (i, j) and every component c in the
union of their touches (reads ∪ writes), in insertion order of that
union:

| Condition | Hazard | source → target |
|---|---|---|
| c ∈ i.writes ∧ c ∈ j.reads | RAW | i → j |
| c ∈ j.writes ∧ c ∈ i.reads | RAW | j → i |
| c ∈ i.writes ∧ c ∈ j.writes | WAW | i → j |
| c ∈ i.reads ∧ c ∈ j.writes ∧ c ∉ i.writes | WAR | i → j |
| c ∈ j.reads ∧ c ∈ i.writes ∧ c ∉ j.writes | WAR | j → i |

Within a component, emission order is RAW, then WAW, then WAR.

## WAR suppression

WAR is suppressed whenever the reader also writes the same component:
that relationship is already fully captured by WAW (and RAW, if the
other task also reads it). A task with ` + "`c ∈ reads ∩ writes`" + ` never
produces a WAR edge against another writer of c — only WAW.

## Using hazards downstream

- **Waves** (longest-path-from-roots) use RAW + WAW edges only; WAR is
  informational and never constrains scheduling order.
- **Critical path** (longest chain of true dependencies) uses RAW edges
  only.
- A cycle in the RAW+WAW graph is a caller error (duplicate task ids or
  a genuinely circular touches declaration) and schedule/wave assignment
  fails fast rather than returning a partial result.
`

const toolReferenceContent = `# Operation Reference

All operations are pure functions of their inputs plus read-only
filesystem access, except ack_freshness, the one write path.

| Operation | Input | Output |
|---|---|---|
| parse_manifest | manifest_path | Manifest + {valid, cycles?} |
| resolve_docs | manifest_path, reads?, writes? | [{component, doc, path}] |
| invalidation_cascade | manifest_path, changed[] | {affected[]} |
| check_freshness | manifest_path | per-component doc staleness |
| ack_freshness | manifest_path, components[], doc? | {acked[]} — writes .varp/freshness.json |
| parse_plan | path | Plan |
| validate_plan | plan_path, manifest_path | {valid, errors[], warnings[]} |
| diff_plan | plan_a, plan_b | structured diff |
| schedule | tasks[], mode | {hazards?, waves?, critical_path?} |
| verify_capabilities | manifest_path, reads?, writes?, diff_paths[] | {valid, violations[]} |
| derive_restart_strategy | failed_task, all_tasks[], completed_task_ids[], dispatched_task_ids[] | RestartStrategy |
| infer_imports | manifest_path | {import_deps[], missing_deps[], extra_deps[], totals} |
| scan_links | manifest_path, mode | link scan result |
| suggest_touches | manifest_path, file_paths[] | {reads[], writes[]} |
| scoped_tests | manifest_path, reads?, writes?, tags?, include_read_tests? | {test_files[], components_covered[], run_command, required_env[]} |
| verify_env | manifest_path, components[] | {required[], set[], missing[]} |
| health | manifest_path, mode | manifest + freshness + lint bundle |
| coupling | manifest_path, mode | git co-change intersected with import edges |

## mode selectors

- schedule: waves | hazards | critical_path | all
- health: manifest | freshness | lint | all
- coupling: co_change | import_confirmed | all

## Write path

ack_freshness is the only operation with a side effect: it records a
timestamp in ` + "`<manifest-dir>/.varp/freshness.json`" + `. If two hosts call
it concurrently, the last write wins — no stronger atomicity than the
filesystem's own rename semantics is provided or required.
`
