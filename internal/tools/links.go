package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/links"
	"github.com/varp-dev/varp/internal/mcp"
)

type scanLinksParams struct {
	ManifestPath string `json:"manifest_path"`
	Mode         string `json:"mode,omitempty"`
}

// scanLinksMode selects which facet of a link scan to return. links.Scan
// always computes the full result in one pass; mode only narrows what's
// returned, since (unlike schedule/health/coupling) nothing here is
// expensive enough to warrant skipping.
type scanLinksMode string

const (
	scanLinksDeps   scanLinksMode = "deps"
	scanLinksBroken scanLinksMode = "broken"
	scanLinksAll    scanLinksMode = "all"
)

// ScanLinks implements scan_links.
type ScanLinks struct{}

func NewScanLinks() *ScanLinks { return &ScanLinks{} }

func (t *ScanLinks) Name() string { return "scan_links" }
func (t *ScanLinks) Description() string {
	return "Scan each component's docs for Markdown link targets, classify them, and diff inferred edges against declared deps."
}
func (t *ScanLinks) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "mode": {"type": "string", "enum": ["deps", "broken", "all"], "description": "default: all"}
  },
  "required": ["manifest_path"]
}`)
}

func (t *ScanLinks) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p scanLinksParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	result, err := links.Scan(m)
	if err != nil {
		return toolError(err)
	}

	mode := scanLinksMode(p.Mode)
	if mode == "" {
		mode = scanLinksAll
	}
	switch mode {
	case scanLinksDeps:
		return mcp.JSONResult(struct {
			InferredDeps []links.Edge `json:"inferred_deps"`
			MissingDeps  []links.Edge `json:"missing_deps"`
			ExtraDeps    []links.Edge `json:"extra_deps"`
		}{result.InferredDeps, result.MissingDeps, result.ExtraDeps})
	case scanLinksBroken:
		return mcp.JSONResult(struct {
			Broken []links.BrokenLink `json:"broken"`
			Totals links.Totals       `json:"totals"`
		}{result.Broken, result.Totals})
	default:
		return mcp.JSONResult(result)
	}
}
