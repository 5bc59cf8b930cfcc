package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/imports"
	"github.com/varp-dev/varp/internal/mcp"
)

type inferImportsParams struct {
	ManifestPath string `json:"manifest_path"`
}

type inferImportsResult struct {
	ImportDeps  []imports.Edge `json:"import_deps"`
	MissingDeps []imports.Edge `json:"missing_deps"`
	ExtraDeps   []imports.Edge `json:"extra_deps"`
	Totals      struct {
		Scanned int `json:"scanned"`
		Errors  int `json:"errors"`
	} `json:"totals"`
}

// InferImports implements infer_imports.
type InferImports struct{}

func NewInferImports() *InferImports { return &InferImports{} }

func (t *InferImports) Name() string { return "infer_imports" }
func (t *InferImports) Description() string {
	return "Scan each component's source for import specifiers and diff the inferred cross-component edges against declared deps."
}
func (t *InferImports) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"}
  },
  "required": ["manifest_path"]
}`)
}

func (t *InferImports) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p inferImportsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	scan, err := imports.Scan(m)
	if err != nil {
		return toolError(err)
	}

	out := inferImportsResult{
		ImportDeps:  scan.Edges,
		MissingDeps: scan.MissingDeps,
		ExtraDeps:   scan.ExtraDeps,
	}
	out.Totals.Scanned = scan.FilesScanned
	out.Totals.Errors = len(scan.ScanErrors)
	return mcp.JSONResult(out)
}
