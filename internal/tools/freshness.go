package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/varp-dev/varp/internal/ack"
	"github.com/varp-dev/varp/internal/freshness"
	"github.com/varp-dev/varp/internal/mcp"
)

// --- check_freshness ---

type checkFreshnessParams struct {
	ManifestPath string `json:"manifest_path"`
}

// CheckFreshness implements check_freshness.
type CheckFreshness struct{}

func NewCheckFreshness() *CheckFreshness { return &CheckFreshness{} }

func (t *CheckFreshness) Name() string { return "check_freshness" }
func (t *CheckFreshness) Description() string {
	return "Compare each component's attached docs against its source tree's most recent modification time."
}
func (t *CheckFreshness) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"}
  },
  "required": ["manifest_path"]
}`)
}

func (t *CheckFreshness) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p checkFreshnessParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	result, err := freshness.Check(m, freshness.DefaultTolerance)
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(result)
}

// --- ack_freshness ---

type ackFreshnessParams struct {
	ManifestPath string   `json:"manifest_path"`
	Components   []string `json:"components"`
	Doc          string   `json:"doc,omitempty"`
}

type ackFreshnessResult struct {
	Acked []string `json:"acked"`
}

// AckFreshness implements ack_freshness, the one operation with a side
// effect: it writes <manifest-dir>/.varp/freshness.json.
type AckFreshness struct{}

func NewAckFreshness() *AckFreshness { return &AckFreshness{} }

func (t *AckFreshness) Name() string { return "ack_freshness" }
func (t *AckFreshness) Description() string {
	return "Record a human acknowledgement that a component's docs are current as of now. Writes .varp/freshness.json."
}
func (t *AckFreshness) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "components": {"type": "array", "items": {"type": "string"}},
    "doc": {"type": "string", "description": "Doc basename to acknowledge; omit to acknowledge every doc attached to each component"}
  },
  "required": ["manifest_path", "components"]
}`)
}

func (t *AckFreshness) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p ackFreshnessParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	acked, err := ack.Acknowledge(m, p.ManifestPath, p.Components, p.Doc, time.Now())
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(ackFreshnessResult{Acked: acked})
}
