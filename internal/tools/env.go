package tools

import (
	"context"
	"encoding/json"
	"os"

	"github.com/varp-dev/varp/internal/mcp"
)

type verifyEnvParams struct {
	ManifestPath string   `json:"manifest_path"`
	Components   []string `json:"components"`
}

type verifyEnvResult struct {
	Required []string `json:"required"`
	Set      []string `json:"set"`
	Missing  []string `json:"missing"`
}

// VerifyEnv implements verify_env: the union of env vars a set of
// components declare, split into what's currently set in the process
// environment and what's missing.
type VerifyEnv struct{}

func NewVerifyEnv() *VerifyEnv { return &VerifyEnv{} }

func (t *VerifyEnv) Name() string { return "verify_env" }
func (t *VerifyEnv) Description() string {
	return "Check which env vars the given components require are set in the current environment."
}
func (t *VerifyEnv) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "components": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["manifest_path", "components"]
}`)
}

func (t *VerifyEnv) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p verifyEnvParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}

	requiredSet := make(map[string]bool)
	for _, name := range p.Components {
		comp := m.Component(name)
		if comp == nil {
			continue
		}
		for _, e := range comp.Env {
			requiredSet[e] = true
		}
	}

	var set, missing []string
	for _, e := range sortedSetKeys(requiredSet) {
		if _, ok := os.LookupEnv(e); ok {
			set = append(set, e)
		} else {
			missing = append(missing, e)
		}
	}

	return mcp.JSONResult(verifyEnvResult{
		Required: sortedSetKeys(requiredSet),
		Set:      set,
		Missing:  missing,
	})
}
