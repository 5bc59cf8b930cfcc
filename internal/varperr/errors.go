// Package varperr defines the typed error taxonomy shared across the core.
//
// Parsers and scheduler primitives fail fast on structural or caller-induced
// problems (malformed input, duplicate ids, cycles in a task graph) by
// wrapping one of these sentinels with fmt.Errorf("...: %w", ...). Callers
// use errors.Is to classify a failure without string matching.
package varperr

import "errors"

var (
	// ErrMalformedManifest is returned by manifest.Load when the manifest
	// file violates its schema (missing version key, non-mapping component
	// entry, invalid stability value).
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrMalformedPlan is returned by plan.Load when the plan document
	// violates its schema.
	ErrMalformedPlan = errors.New("malformed plan")

	// ErrReference classifies a name used in a plan, touches declaration,
	// or deps list that does not resolve in the manifest. No function in
	// this module returns it: validate reports such names as findings.
	ErrReference = errors.New("unresolved reference")

	// ErrBudget classifies a task budget with a non-positive field. No
	// function in this module returns it: validate reports such budgets
	// as findings.
	ErrBudget = errors.New("invalid budget")

	// ErrPlanCycle is returned by scheduler.AssignWaves when the RAW/WAW
	// graph over tasks contains a cycle.
	ErrPlanCycle = errors.New("plan cycle")

	// ErrIO wraps a filesystem read failure encountered while serving an
	// operation that is otherwise pure.
	ErrIO = errors.New("io error")
)
