package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

const fixturePlan = `<plan>
  <metadata feature="login" created="2026-01-05"/>
  <tasks>
    <task id="t1" description="add login handler" action="edit">
      <touches>
        <reads>auth</reads>
        <writes><component>auth</component></writes>
      </touches>
      <budget tokens="2000" minutes="10"/>
    </task>
  </tasks>
</plan>`

func writePlanFixture(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.xml")
	mustWrite(t, path, body)
	return path
}

func TestParsePlan_LoadsTasks(t *testing.T) {
	dir := t.TempDir()
	path := writePlanFixture(t, dir, fixturePlan)

	tool := NewParsePlan()
	params, _ := json.Marshal(map[string]string{"path": path})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out struct {
		Metadata struct{ Feature string }
		Tasks    []struct{ ID string }
	}
	decodeResult(t, res, &out)
	if out.Metadata.Feature != "login" || len(out.Tasks) != 1 || out.Tasks[0].ID != "t1" {
		t.Errorf("result = %+v", out)
	}
}

func TestValidatePlan_FlagsUndeclaredComponent(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "src/auth"))
	manifestPath := writeManifest(t, dir, "version: \"1\"\nauth:\n  path: src/auth\n")
	planPath := writePlanFixture(t, dir, `<plan>
  <metadata feature="x" created="2026-01-05"/>
  <tasks>
    <task id="t1" action="edit">
      <touches><writes>ghost</writes></touches>
      <budget tokens="1" minutes="1"/>
    </task>
  </tasks>
</plan>`)

	tool := NewValidatePlan()
	params, _ := json.Marshal(map[string]string{"plan_path": planPath, "manifest_path": manifestPath})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out struct {
		Valid  bool
		Errors []struct{ Field, Message string }
	}
	decodeResult(t, res, &out)
	if out.Valid {
		t.Errorf("Valid = true, want false for a plan writing an undeclared component")
	}
	if len(out.Errors) == 0 {
		t.Errorf("Errors = %+v, want at least one finding", out.Errors)
	}
}

func TestDiffPlan_ReportsTaskDescriptionChange(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "a"))
	pathA := writePlanFixture(t, filepath.Join(dir, "a"), fixturePlan)
	mustMkdir(t, filepath.Join(dir, "b"))
	pathB := writePlanFixture(t, filepath.Join(dir, "b"), `<plan>
  <metadata feature="login" created="2026-01-05"/>
  <tasks>
    <task id="t1" description="add login handler v2" action="edit">
      <touches>
        <reads>auth</reads>
        <writes><component>auth</component></writes>
      </touches>
      <budget tokens="2000" minutes="10"/>
    </task>
  </tasks>
</plan>`)

	tool := NewDiffPlan()
	params, _ := json.Marshal(map[string]string{"plan_a": pathA, "plan_b": pathB})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out PlanDiffResult
	decodeResult(t, res, &out)
	if len(out.TasksChanged) != 1 || out.TasksChanged[0].ID != "t1" {
		t.Fatalf("TasksChanged = %+v, want t1 flagged", out.TasksChanged)
	}
	if !contains(out.TasksChanged[0].Changes, "description") {
		t.Errorf("Changes = %v, want description listed", out.TasksChanged[0].Changes)
	}
}

func contains(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}
