package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/manifest"
	"github.com/varp-dev/varp/internal/mcp"
)

// --- parse_manifest ---

type parseManifestParams struct {
	ManifestPath string `json:"manifest_path"`
}

type parseManifestResult struct {
	*manifest.Manifest
	Valid  bool          `json:"valid"`
	Cycles []graph.Cycle `json:"cycles,omitempty"`
}

// ParseManifest implements parse_manifest.
type ParseManifest struct{}

func NewParseManifest() *ParseManifest { return &ParseManifest{} }

func (t *ParseManifest) Name() string { return "parse_manifest" }
func (t *ParseManifest) Description() string {
	return "Load the component manifest and report any dependency cycles."
}
func (t *ParseManifest) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string", "description": "Path to the component manifest YAML file"}
  },
  "required": ["manifest_path"]
}`)
}

func (t *ParseManifest) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p parseManifestParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	cycles := graph.Build(m).DetectCycles()
	return mcp.JSONResult(parseManifestResult{Manifest: m, Valid: len(cycles) == 0, Cycles: cycles})
}

// --- resolve_docs ---

type resolveDocsParams struct {
	ManifestPath string   `json:"manifest_path"`
	Reads        []string `json:"reads,omitempty"`
	Writes       []string `json:"writes,omitempty"`
}

type resolvedDoc struct {
	Component string `json:"component"`
	Doc       string `json:"doc"`
	Path      string `json:"path"`
}

// ResolveDocs implements resolve_docs: README-only for components named in
// reads, every attached doc for components named in writes.
type ResolveDocs struct{}

func NewResolveDocs() *ResolveDocs { return &ResolveDocs{} }

func (t *ResolveDocs) Name() string { return "resolve_docs" }
func (t *ResolveDocs) Description() string {
	return "Resolve the docs relevant to a set of reads/writes: README only for reads, every attached doc for writes."
}
func (t *ResolveDocs) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "reads": {"type": "array", "items": {"type": "string"}},
    "writes": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["manifest_path"]
}`)
}

func (t *ResolveDocs) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p resolveDocsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}

	var out []resolvedDoc
	for _, name := range p.Reads {
		comp := m.Component(name)
		if comp == nil {
			continue
		}
		for _, d := range comp.Docs {
			if isReadme(d) {
				out = append(out, resolvedDoc{Component: name, Doc: filepath.Base(d), Path: d})
			}
		}
	}
	for _, name := range p.Writes {
		comp := m.Component(name)
		if comp == nil {
			continue
		}
		for _, d := range comp.Docs {
			out = append(out, resolvedDoc{Component: name, Doc: filepath.Base(d), Path: d})
		}
	}
	return mcp.JSONResult(out)
}

func isReadme(path string) bool {
	return strings.EqualFold(filepath.Base(path), "README.md")
}
