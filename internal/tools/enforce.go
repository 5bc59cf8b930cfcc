package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/enforce"
	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/mcp"
	"github.com/varp-dev/varp/internal/plan"
)

// --- verify_capabilities ---

type verifyCapabilitiesParams struct {
	ManifestPath string   `json:"manifest_path"`
	Reads        []string `json:"reads,omitempty"`
	Writes       []string `json:"writes,omitempty"`
	DiffPaths    []string `json:"diff_paths"`
}

// VerifyCapabilities implements verify_capabilities.
type VerifyCapabilities struct{}

func NewVerifyCapabilities() *VerifyCapabilities { return &VerifyCapabilities{} }

func (t *VerifyCapabilities) Name() string { return "verify_capabilities" }
func (t *VerifyCapabilities) Description() string {
	return "Check that every changed path in diff_paths falls within a task's declared writes."
}
func (t *VerifyCapabilities) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "manifest_path": {"type": "string"},
    "reads": {"type": "array", "items": {"type": "string"}},
    "writes": {"type": "array", "items": {"type": "string"}},
    "diff_paths": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["manifest_path", "diff_paths"]
}`)
}

func (t *VerifyCapabilities) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p verifyCapabilitiesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	idx := graph.BuildOwnershipIndex(m)
	touches := plan.Touches{Reads: p.Reads, Writes: p.Writes}
	result := enforce.VerifyCapabilities(idx, touches, p.DiffPaths)
	return mcp.JSONResult(result)
}

// --- derive_restart_strategy ---

type deriveRestartStrategyParams struct {
	FailedTask        plan.Task   `json:"failed_task"`
	AllTasks          []plan.Task `json:"all_tasks"`
	CompletedTaskIDs  []string    `json:"completed_task_ids"`
	DispatchedTaskIDs []string    `json:"dispatched_task_ids"`
}

// DeriveRestartStrategy implements derive_restart_strategy.
type DeriveRestartStrategy struct{}

func NewDeriveRestartStrategy() *DeriveRestartStrategy { return &DeriveRestartStrategy{} }

func (t *DeriveRestartStrategy) Name() string { return "derive_restart_strategy" }
func (t *DeriveRestartStrategy) Description() string {
	return "Decide whether a failed task needs an isolated retry, a cascading restart of downstream consumers, or escalation to a human."
}
func (t *DeriveRestartStrategy) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "failed_task": {"type": "object"},
    "all_tasks": {"type": "array", "items": {"type": "object"}},
    "completed_task_ids": {"type": "array", "items": {"type": "string"}},
    "dispatched_task_ids": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["failed_task", "all_tasks"]
}`)
}

func (t *DeriveRestartStrategy) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deriveRestartStrategyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	completed := toSet(p.CompletedTaskIDs)
	dispatched := toSet(p.DispatchedTaskIDs)
	result := enforce.DeriveRestartStrategy(p.FailedTask, p.AllTasks, completed, dispatched)
	return mcp.JSONResult(result)
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
