package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/composite"
	"github.com/varp-dev/varp/internal/mcp"
)

type healthParams struct {
	ManifestPath string `json:"manifest_path"`
	Mode         string `json:"mode"`
}

// Health implements health: a bundled manifest/cycle check, doc-freshness
// scan, and lint pass, for a single "is this repo in good shape" call.
type Health struct{}

func NewHealth() *Health { return &Health{} }

func (t *Health) Name() string { return "health" }
func (t *Health) Description() string {
	return "Bundle cycle detection, doc-freshness, and lint checks for the whole manifest."
}
func (t *Health) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "mode": {"type": "string", "enum": ["manifest", "freshness", "lint", "all"]}
  },
  "required": ["manifest_path", "mode"]
}`)
}

func (t *Health) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p healthParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	result, err := composite.Health(m, composite.HealthMode(p.Mode))
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(result)
}
