package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/mcp"
)

type invalidationCascadeParams struct {
	ManifestPath string   `json:"manifest_path"`
	Changed      []string `json:"changed"`
}

type invalidationCascadeResult struct {
	Affected []string `json:"affected"`
}

// InvalidationCascade implements invalidation_cascade.
type InvalidationCascade struct{}

func NewInvalidationCascade() *InvalidationCascade { return &InvalidationCascade{} }

func (t *InvalidationCascade) Name() string { return "invalidation_cascade" }
func (t *InvalidationCascade) Description() string {
	return "Given a set of changed components, return every component that transitively depends on one of them."
}
func (t *InvalidationCascade) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "changed": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["manifest_path", "changed"]
}`)
}

func (t *InvalidationCascade) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p invalidationCascadeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	affected := graph.Build(m).InvalidationCascade(p.Changed)
	return mcp.JSONResult(invalidationCascadeResult{Affected: affected})
}
