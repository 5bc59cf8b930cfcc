package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/composite"
	"github.com/varp-dev/varp/internal/mcp"
)

type couplingParams struct {
	ManifestPath string `json:"manifest_path"`
	Mode         string `json:"mode"`
}

// Coupling implements coupling: components that change together in git
// history, optionally gated by whether that co-change is confirmed by an
// actual import edge between them.
type Coupling struct{}

func NewCoupling() *Coupling { return &Coupling{} }

func (t *Coupling) Name() string { return "coupling" }
func (t *Coupling) Description() string {
	return "Find components that co-change in git history, optionally confirmed by import edges."
}
func (t *Coupling) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "mode": {"type": "string", "enum": ["co_change", "import_confirmed", "all"]}
  },
  "required": ["manifest_path", "mode"]
}`)
}

func (t *Coupling) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p couplingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	result, err := composite.Coupling(ctx, m, composite.CouplingMode(p.Mode))
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(result)
}
