package enforce

import (
	"testing"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/manifest"
	"github.com/varp-dev/varp/internal/plan"
)

func TestVerifyCapabilities_ScenarioCapabilityViolation(t *testing.T) {
	m := &manifest.Manifest{
		Version:    "1",
		Components: map[string]*manifest.Component{},
	}
	m.Components["auth"] = &manifest.Component{Name: "auth", Path: []string{"/src/auth"}}
	m.Components["api"] = &manifest.Component{Name: "api", Path: []string{"/src/api"}}
	m.Order = []string{"auth", "api"}
	idx := graph.BuildOwnershipIndex(m)

	touches := plan.Touches{Writes: []string{"auth"}}
	result := VerifyCapabilities(idx, touches, []string{"/src/auth/x.ts", "/src/api/y.ts"})

	if result.Valid {
		t.Fatal("expected invalid")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("Violations = %+v, want 1", result.Violations)
	}
	v := result.Violations[0]
	if v.Path != "/src/api/y.ts" || v.ActualComponent != "api" || v.DeclaredComponent != nil {
		t.Errorf("violation = %+v", v)
	}
}

func TestVerifyCapabilities_OutsideAllComponentsWithEmptyWrites(t *testing.T) {
	m := &manifest.Manifest{Version: "1", Components: map[string]*manifest.Component{
		"auth": {Name: "auth", Path: []string{"/src/auth"}},
	}, Order: []string{"auth"}}
	idx := graph.BuildOwnershipIndex(m)

	result := VerifyCapabilities(idx, plan.Touches{}, []string{"/src/unrelated/z.ts"})
	if !result.Valid || len(result.Violations) != 0 {
		t.Errorf("result = %+v, want no violations when writes is empty", result)
	}
}

func TestVerifyCapabilities_OutsideAllComponentsWithNonEmptyWrites(t *testing.T) {
	m := &manifest.Manifest{Version: "1", Components: map[string]*manifest.Component{
		"auth": {Name: "auth", Path: []string{"/src/auth"}},
	}, Order: []string{"auth"}}
	idx := graph.BuildOwnershipIndex(m)

	result := VerifyCapabilities(idx, plan.Touches{Writes: []string{"auth"}}, []string{"/src/unrelated/z.ts"})
	if result.Valid || len(result.Violations) != 1 {
		t.Fatalf("result = %+v, want one violation", result)
	}
	if result.Violations[0].ActualComponent != graph.OutsideAllComponents {
		t.Errorf("ActualComponent = %q, want sentinel", result.Violations[0].ActualComponent)
	}
}

func TestDeriveRestartStrategy_ScenarioEscalation(t *testing.T) {
	t1 := plan.Task{ID: "T1", Touches: plan.Touches{Writes: []string{"auth"}}}
	t2 := plan.Task{ID: "T2", Touches: plan.Touches{Reads: []string{"auth"}}}
	all := []plan.Task{t1, t2}
	completed := map[string]struct{}{"T2": {}}
	dispatched := map[string]struct{}{}

	strategy := DeriveRestartStrategy(t1, all, completed, dispatched)
	if strategy.Kind != Escalate {
		t.Fatalf("Kind = %q, want escalate", strategy.Kind)
	}
	if !containsID(strategy.AffectedTasks, "T2") {
		t.Errorf("AffectedTasks = %v, want to include T2", strategy.AffectedTasks)
	}
}

func TestDeriveRestartStrategy_ScenarioCascade(t *testing.T) {
	t1 := plan.Task{ID: "T1", Touches: plan.Touches{Writes: []string{"auth"}}}
	t2 := plan.Task{ID: "T2", Touches: plan.Touches{Reads: []string{"auth"}}}
	all := []plan.Task{t1, t2}
	completed := map[string]struct{}{}
	dispatched := map[string]struct{}{"T2": {}}

	strategy := DeriveRestartStrategy(t1, all, completed, dispatched)
	if strategy.Kind != CascadeRestart {
		t.Fatalf("Kind = %q, want cascade_restart", strategy.Kind)
	}
	if len(strategy.AffectedTasks) != 1 || strategy.AffectedTasks[0] != "T2" {
		t.Errorf("AffectedTasks = %v, want [T2]", strategy.AffectedTasks)
	}
}

func TestDeriveRestartStrategy_EmptyWriteSetIsIsolatedRetry(t *testing.T) {
	t1 := plan.Task{ID: "T1"}
	strategy := DeriveRestartStrategy(t1, []plan.Task{t1}, nil, nil)
	if strategy.Kind != IsolatedRetry {
		t.Fatalf("Kind = %q, want isolated_retry", strategy.Kind)
	}
}

func TestDeriveRestartStrategy_NoDownstreamObserverIsIsolatedRetry(t *testing.T) {
	t1 := plan.Task{ID: "T1", Touches: plan.Touches{Writes: []string{"auth"}}}
	t2 := plan.Task{ID: "T2", Touches: plan.Touches{Reads: []string{"other"}}}
	strategy := DeriveRestartStrategy(t1, []plan.Task{t1, t2}, nil, nil)
	if strategy.Kind != IsolatedRetry {
		t.Fatalf("Kind = %q, want isolated_retry", strategy.Kind)
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
