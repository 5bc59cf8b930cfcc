package tools

import (
	"context"
	"encoding/json"

	"github.com/varp-dev/varp/internal/composite"
	"github.com/varp-dev/varp/internal/mcp"
	"github.com/varp-dev/varp/internal/plan"
)

type scheduleParams struct {
	Tasks []plan.Task `json:"tasks"`
	Mode  string      `json:"mode"`
}

// Schedule implements schedule: computes hazards once and derives
// whichever of waves/critical_path/hazards the mode asks for.
type Schedule struct{}

func NewSchedule() *Schedule { return &Schedule{} }

func (t *Schedule) Name() string { return "schedule" }
func (t *Schedule) Description() string {
	return "Compute data hazards over a task list and, per mode, waves and/or the critical path."
}
func (t *Schedule) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "tasks": {"type": "array", "items": {"type": "object"}},
    "mode": {"type": "string", "enum": ["waves", "hazards", "critical_path", "all"]}
  },
  "required": ["tasks", "mode"]
}`)
}

func (t *Schedule) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p scheduleParams
	if err := json.Unmarshal(params, &p); err != nil {
		return invalidParams(err)
	}
	result, err := composite.Schedule(p.Tasks, composite.ScheduleMode(p.Mode))
	if err != nil {
		return toolError(err)
	}
	return mcp.JSONResult(result)
}
