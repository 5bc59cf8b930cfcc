package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/imports"
	"github.com/varp-dev/varp/internal/mcp"
	"github.com/varp-dev/varp/internal/plan"
	"github.com/varp-dev/varp/internal/scheduler"
	"github.com/varp-dev/varp/internal/validate"
)

// --- parse_plan ---

type parsePlanParams struct {
	Path string `json:"path"`
}

// ParsePlan implements parse_plan.
type ParsePlan struct{}

func NewParsePlan() *ParsePlan { return &ParsePlan{} }

func (t *ParsePlan) Name() string        { return "parse_plan" }
func (t *ParsePlan) Description() string { return "Load a plan document." }
func (t *ParsePlan) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "path": {"type": "string"}
  },
  "required": ["path"]
}`)
}

func (t *ParsePlan) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p parsePlanParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	pl, err := plan.Load(p.Path)
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(pl)
}

// --- validate_plan ---

type validatePlanParams struct {
	PlanPath     string `json:"plan_path"`
	ManifestPath string `json:"manifest_path"`
}

// ValidatePlan implements validate_plan: parses both documents, computes
// hazards and import edges once, and accumulates every structural finding.
type ValidatePlan struct{}

func NewValidatePlan() *ValidatePlan { return &ValidatePlan{} }

func (t *ValidatePlan) Name() string { return "validate_plan" }
func (t *ValidatePlan) Description() string {
	return "Validate a plan against a manifest: undeclared components, duplicate task ids, non-positive budgets, illegal reads, isolated writes, undeclared import edges."
}
func (t *ValidatePlan) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "plan_path": {"type": "string"},
    "manifest_path": {"type": "string"}
  },
  "required": ["plan_path", "manifest_path"]
}`)
}

func (t *ValidatePlan) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p validatePlanParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	m, err := loadManifest(p.ManifestPath)
	if err != nil {
		return toolError(err)
	}
	pl, err := plan.Load(p.PlanPath)
	if err != nil {
		return toolError(err)
	}

	hazards := scheduler.DetectHazards(pl.Tasks)
	impResult, err := imports.Scan(m)
	if err != nil {
		return toolError(err)
	}

	result := validate.Validate(pl, m, hazards, impResult)
	return mcp.JSONResult(result)
}

// --- diff_plan ---

type diffPlanParams struct {
	PlanA string `json:"plan_a"`
	PlanB string `json:"plan_b"`
}

// TaskDiff names one task present in both plans whose fields differ.
type TaskDiff struct {
	ID      string   `json:"id"`
	Changes []string `json:"changes"`
}

// PlanDiffResult is the structured diff between two plan revisions.
type PlanDiffResult struct {
	MetadataChanged bool       `json:"metadata_changed"`
	TasksAdded      []string   `json:"tasks_added,omitempty"`
	TasksRemoved    []string   `json:"tasks_removed,omitempty"`
	TasksChanged    []TaskDiff `json:"tasks_changed,omitempty"`
}

// DiffPlan implements diff_plan: a structural diff of two plan revisions,
// independent of manifest.Manifest since a plan stands alone.
type DiffPlan struct{}

func NewDiffPlan() *DiffPlan { return &DiffPlan{} }

func (t *DiffPlan) Name() string { return "diff_plan" }
func (t *DiffPlan) Description() string {
	return "Structurally diff two plan revisions: metadata, added/removed tasks, and per-task field changes."
}
func (t *DiffPlan) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "plan_a": {"type": "string"},
    "plan_b": {"type": "string"}
  },
  "required": ["plan_a", "plan_b"]
}`)
}

func (t *DiffPlan) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p diffPlanParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	a, err := plan.Load(p.PlanA)
	if err != nil {
		return toolError(err)
	}
	b, err := plan.Load(p.PlanB)
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(diffPlans(a, b))
}

func diffPlans(a, b *plan.Plan) PlanDiffResult {
	result := PlanDiffResult{MetadataChanged: a.Metadata != b.Metadata}

	bTasks := make(map[string]*plan.Task, len(b.Tasks))
	for i := range b.Tasks {
		bTasks[b.Tasks[i].ID] = &b.Tasks[i]
	}
	seenInB := make(map[string]bool, len(a.Tasks))

	for i := range a.Tasks {
		ta := &a.Tasks[i]
		tb, ok := bTasks[ta.ID]
		if !ok {
			result.TasksRemoved = append(result.TasksRemoved, ta.ID)
			continue
		}
		seenInB[ta.ID] = true
		if changes := diffTask(ta, tb); len(changes) > 0 {
			result.TasksChanged = append(result.TasksChanged, TaskDiff{ID: ta.ID, Changes: changes})
		}
	}
	for _, tb := range b.Tasks {
		if !seenInB[tb.ID] {
			result.TasksAdded = append(result.TasksAdded, tb.ID)
		}
	}
	return result
}

func diffTask(a, b *plan.Task) []string {
	var changes []string
	if a.Description != b.Description {
		changes = append(changes, "description")
	}
	if a.Action != b.Action {
		changes = append(changes, "action")
	}
	if !stringSliceEqual(a.Touches.Reads, b.Touches.Reads) {
		changes = append(changes, "touches.reads")
	}
	if !stringSliceEqual(a.Touches.Writes, b.Touches.Writes) {
		changes = append(changes, "touches.writes")
	}
	if a.Budget != b.Budget {
		changes = append(changes, "budget")
	}
	if !stringMapEqual(a.Values, b.Values) {
		changes = append(changes, "values")
	}
	return changes
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringMapEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
