package scheduler

import (
	"errors"
	"testing"

	"github.com/varp-dev/varp/internal/plan"
	"github.com/varp-dev/varp/internal/varperr"
)

func task(id string, reads, writes []string, tokens, minutes int) plan.Task {
	return plan.Task{
		ID:      id,
		Touches: plan.Touches{Reads: reads, Writes: writes},
		Budget:  plan.Budget{Tokens: tokens, Minutes: minutes},
	}
}

func TestDetectHazards_Empty(t *testing.T) {
	if got := DetectHazards(nil); got != nil {
		t.Errorf("DetectHazards(nil) = %v, want nil", got)
	}
}

func TestDetectHazards_OverlappingReadsDisjointWrites(t *testing.T) {
	tasks := []plan.Task{
		task("t1", []string{"auth"}, []string{"a"}, 1, 1),
		task("t2", []string{"auth"}, []string{"b"}, 1, 1),
	}
	if got := DetectHazards(tasks); got != nil {
		t.Errorf("DetectHazards = %v, want nil (pure reads never hazard)", got)
	}
}

func TestDetectHazards_SelfTouchSuppressesWAR(t *testing.T) {
	// t1 reads+writes auth; t2 also writes auth -> WAW only, no WAR.
	tasks := []plan.Task{
		task("t1", []string{"auth"}, []string{"auth"}, 1, 1),
		task("t2", nil, []string{"auth"}, 1, 1),
	}
	hazards := DetectHazards(tasks)
	var waw, war int
	for _, h := range hazards {
		switch h.Type {
		case WAW:
			waw++
		case WAR:
			war++
		}
	}
	if waw != 1 || war != 0 {
		t.Errorf("hazards = %+v, want exactly one WAW and zero WAR", hazards)
	}
}

func TestScenario_LinearChain(t *testing.T) {
	tasks := []plan.Task{
		task("T1", nil, []string{"auth"}, 100, 1),
		task("T2", []string{"auth"}, []string{"api"}, 100, 1),
		task("T3", []string{"api"}, []string{"web"}, 100, 1),
	}
	hazards := DetectHazards(tasks)
	if len(hazards) != 2 {
		t.Fatalf("hazards = %+v, want 2", hazards)
	}
	if hazards[0].Type != RAW || hazards[0].Source != "T1" || hazards[0].Target != "T2" || hazards[0].Component != "auth" {
		t.Errorf("hazards[0] = %+v", hazards[0])
	}
	if hazards[1].Type != RAW || hazards[1].Source != "T2" || hazards[1].Target != "T3" || hazards[1].Component != "api" {
		t.Errorf("hazards[1] = %+v", hazards[1])
	}

	waves, err := AssignWaves(tasks, hazards)
	if err != nil {
		t.Fatalf("AssignWaves: %v", err)
	}
	if len(waves) != 3 {
		t.Fatalf("waves = %+v, want 3", waves)
	}
	for i, want := range []string{"T1", "T2", "T3"} {
		if len(waves[i].Tasks) != 1 || waves[i].Tasks[0] != want {
			t.Errorf("wave %d = %v, want [%s]", i+1, waves[i].Tasks, want)
		}
	}

	cp := CriticalPath(tasks, hazards)
	if len(cp.TaskIDs) != 3 || cp.TaskIDs[0] != "T1" || cp.TaskIDs[1] != "T2" || cp.TaskIDs[2] != "T3" {
		t.Errorf("critical path = %v, want [T1 T2 T3]", cp.TaskIDs)
	}
	if cp.TotalBudget.Tokens != 300 || cp.TotalBudget.Minutes != 3 {
		t.Errorf("total budget = %+v, want {300 3}", cp.TotalBudget)
	}
}

func TestScenario_ParallelizablePair(t *testing.T) {
	tasks := []plan.Task{
		task("T1", nil, []string{"a"}, 10, 1),
		task("T2", nil, []string{"b"}, 10, 1),
		task("T3", []string{"a", "b"}, []string{"c"}, 10, 1),
	}
	hazards := DetectHazards(tasks)
	if len(hazards) != 2 {
		t.Fatalf("hazards = %+v, want 2", hazards)
	}

	waves, err := AssignWaves(tasks, hazards)
	if err != nil {
		t.Fatalf("AssignWaves: %v", err)
	}
	if len(waves) != 2 {
		t.Fatalf("waves = %+v, want 2", waves)
	}
	if len(waves[0].Tasks) != 2 || waves[0].Tasks[0] != "T1" || waves[0].Tasks[1] != "T2" {
		t.Errorf("wave 1 = %v, want [T1 T2]", waves[0].Tasks)
	}
	if len(waves[1].Tasks) != 1 || waves[1].Tasks[0] != "T3" {
		t.Errorf("wave 2 = %v, want [T3]", waves[1].Tasks)
	}

	cp := CriticalPath(tasks, hazards)
	if len(cp.TaskIDs) != 2 || cp.TaskIDs[0] != "T1" || cp.TaskIDs[1] != "T3" {
		t.Errorf("critical path = %v, want [T1 T3] (tie broken to earliest plan order)", cp.TaskIDs)
	}
}

func TestAssignWaves_EmptyTasks(t *testing.T) {
	waves, err := AssignWaves(nil, nil)
	if err != nil {
		t.Fatalf("AssignWaves: %v", err)
	}
	if len(waves) != 0 {
		t.Errorf("waves = %v, want empty", waves)
	}
}

func TestAssignWaves_SingleTaskNoTouches(t *testing.T) {
	tasks := []plan.Task{task("T1", nil, nil, 10, 1)}
	waves, err := AssignWaves(tasks, DetectHazards(tasks))
	if err != nil {
		t.Fatalf("AssignWaves: %v", err)
	}
	if len(waves) != 1 || len(waves[0].Tasks) != 1 || waves[0].Tasks[0] != "T1" {
		t.Errorf("waves = %+v, want one wave containing T1", waves)
	}
	cp := CriticalPath(tasks, nil)
	if len(cp.TaskIDs) != 1 || cp.TaskIDs[0] != "T1" {
		t.Errorf("critical path = %v, want [T1]", cp.TaskIDs)
	}
}

func TestAssignWaves_CycleDetected(t *testing.T) {
	// T1 writes a, reads b; T2 writes b, reads a -> RAW both directions -> cycle
	tasks := []plan.Task{
		task("T1", []string{"b"}, []string{"a"}, 1, 1),
		task("T2", []string{"a"}, []string{"b"}, 1, 1),
	}
	_, err := AssignWaves(tasks, DetectHazards(tasks))
	if !errors.Is(err, varperr.ErrPlanCycle) {
		t.Fatalf("AssignWaves err = %v, want ErrPlanCycle", err)
	}
}
