// Package enforce implements the two runtime guardrails that sit outside
// the plan/scheduler core: verifying a diff's touched files match a task's
// declared write capability, and deriving how to react when a task fails
// mid-execution.
package enforce

import (
	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/plan"
)

// Violation is one file whose actual owning component contradicts the
// task's declared write capability. DeclaredComponent is always nil: the
// declaration is the write set as a whole, not a per-file assignment.
type Violation struct {
	Path              string
	ActualComponent   string
	DeclaredComponent *string
}

// CapabilityResult is the outcome of VerifyCapabilities.
type CapabilityResult struct {
	Valid      bool
	Violations []Violation
}

// VerifyCapabilities implements spec.md §4.6.1: for each diff path, find
// its owning component via longest-prefix match; a path is a violation if
// no component owns it and the task declared at least one write, or if a
// component owns it and that component isn't in touches.writes.
func VerifyCapabilities(idx *graph.OwnershipIndex, touches plan.Touches, diffPaths []string) CapabilityResult {
	writes := make(map[string]bool, len(touches.Writes))
	for _, w := range touches.Writes {
		writes[w] = true
	}
	hasWrites := len(touches.Writes) > 0

	var violations []Violation
	for _, path := range diffPaths {
		result := idx.Lookup(path)
		if result.Component == "" {
			if hasWrites {
				violations = append(violations, Violation{Path: path, ActualComponent: graph.OutsideAllComponents})
			}
			continue
		}
		if !writes[result.Component] {
			violations = append(violations, Violation{Path: path, ActualComponent: result.Component})
		}
	}

	return CapabilityResult{Valid: len(violations) == 0, Violations: violations}
}

// RestartKind is the closed set of restart strategies spec.md §4.6.2 can
// derive.
type RestartKind string

const (
	IsolatedRetry  RestartKind = "isolated_retry"
	CascadeRestart RestartKind = "cascade_restart"
	Escalate       RestartKind = "escalate"
)

// RestartStrategy is the tagged-union result of DeriveRestartStrategy.
type RestartStrategy struct {
	Kind          RestartKind
	Reason        string
	AffectedTasks []string
}

// DeriveRestartStrategy implements the 5-step procedure in spec.md
// §4.6.2 exactly.
func DeriveRestartStrategy(failed plan.Task, all []plan.Task, completed, dispatched map[string]struct{}) RestartStrategy {
	if len(failed.Touches.Writes) == 0 {
		return RestartStrategy{Kind: IsolatedRetry, Reason: "failed task has no write set; retry is output-free and always safe"}
	}

	writes := make(map[string]bool, len(failed.Touches.Writes))
	for _, w := range failed.Touches.Writes {
		writes[w] = true
	}

	var downstream []string
	for _, t := range all {
		if t.ID == failed.ID {
			continue
		}
		for _, r := range t.Touches.Reads {
			if writes[r] {
				downstream = append(downstream, t.ID)
				break
			}
		}
	}

	for _, id := range downstream {
		if _, ok := completed[id]; ok {
			return RestartStrategy{
				Kind:          Escalate,
				Reason:        "a downstream consumer already completed and observed the failed task's output",
				AffectedTasks: downstream,
			}
		}
	}

	var affected []string
	for _, id := range downstream {
		if _, ok := dispatched[id]; ok {
			affected = append(affected, id)
		}
	}
	if len(affected) > 0 {
		return RestartStrategy{
			Kind:          CascadeRestart,
			Reason:        "in-flight downstream consumers must be cancelled and re-run after the failed task succeeds",
			AffectedTasks: affected,
		}
	}

	return RestartStrategy{Kind: IsolatedRetry, Reason: "no completed or dispatched consumer observed the failed output"}
}
