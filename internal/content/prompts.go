// Package content provides MCP prompts and resources for the varp server.
package content

import "github.com/varp-dev/varp/internal/mcp"

// --- varp-guide prompt ---

// GuidePrompt walks a connecting agent through the manifest → plan →
// schedule → enforce workflow this server exposes.
type GuidePrompt struct{}

func (p *GuidePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "varp-guide",
		Description: "Explains the manifest -> plan -> schedule -> enforce workflow and which operation to reach for at each stage.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *GuidePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide to the varp workflow",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(guideContent),
			},
		},
	}, nil
}

const guideContent = `# varp Workflow Guide

varp coordinates multi-agent coding work across a codebase described by a
**component manifest** and a **task plan**. Every operation here is a pure
function over its inputs plus read-only filesystem access — nothing is
mutated except the one acknowledged-freshness write path.

## 1. Describe the codebase: the manifest

Before anything else, a component manifest must exist — a YAML file
naming each logical component, its source path(s), its declared
dependencies, and its docs. Read ` + "`varp://manifest-format`" + ` for the exact
schema.

- ` + "`parse_manifest`" + ` loads it and reports any dependency cycles.
- ` + "`infer_imports`" + ` and ` + "`scan_links`" + ` cross-check the declared ` + "`deps`" + `
  against what the source and docs actually reference, surfacing
  missing and extra edges.
- ` + "`check_freshness`" + ` flags docs whose component source has moved on
  without them; ` + "`ack_freshness`" + ` records a human sign-off once a stale
  doc has been reviewed (the one write path — ` + "`.varp/freshness.json`" + `).

## 2. Describe the work: the plan

A plan is a structured document: metadata, a contract (preconditions,
invariants, postconditions), and a list of tasks. Each task declares
which components it ` + "`reads`" + ` and ` + "`writes`" + ` (its "touches"), and a
token/time budget.

- ` + "`parse_plan`" + ` loads it.
- ` + "`validate_plan`" + ` accumulates every structural problem at once:
  undeclared components in touches, duplicate task ids, non-positive
  budgets, illegal reads of a component not reachable via ` + "`deps`" + `, plus
  warnings for isolated writes and undeclared import edges.
- ` + "`suggest_touches`" + ` infers a reads/writes set from a list of file
  paths, for drafting a new task's touches.

## 3. Order the work: scheduling

` + "`schedule`" + ` computes the data-hazard graph (RAW/WAW/WAR — see
` + "`varp://hazard-rules`" + `) over a plan's tasks once, then derives whichever
of these the caller asked for via ` + "`mode`" + `:

- ` + "`hazards`" + ` — the raw pairwise conflict list
- ` + "`waves`" + ` — maximal groups of tasks safe to dispatch in parallel
- ` + "`critical_path`" + ` — the longest true-dependency chain and its total budget
- ` + "`all`" + ` — all three, computed from one hazard pass

` + "`diff_plan`" + ` compares two plan revisions structurally, and
` + "`invalidation_cascade`" + ` answers "if these components changed, which
others does that invalidate?" via the reverse-deps graph.

## 4. Enforce the work: capabilities and restarts

Once a task actually runs and touches files, ` + "`verify_capabilities`" + `
checks that every changed path falls within a component the task
declared it would write — a file owned by a component outside the task's
writes is a violation, and so is a file outside every known component
when the task declares any write. Declared reads are not consulted.

If a task fails, ` + "`derive_restart_strategy`" + ` decides whether an isolated
retry suffices, a cascading restart of downstream dependents is needed,
or the failure should escalate to a human, based on what the failed
task wrote and what has already consumed it.

` + "`scoped_tests`" + ` and ` + "`verify_env`" + ` round out pre-flight checks: which test
files and run command cover a given touches set, and which declared
environment variables are actually set before dispatching work that
needs them.

## 5. Health and coupling

` + "`health`" + ` (mode ` + "`all`" + `) bundles manifest-cycle detection, freshness, and a
lint pass (components missing docs or a test command) into one call —
this is what ` + "`varp doctor`" + ` runs. ` + "`coupling`" + ` is best-effort and sits
outside the scheduler core: it reports components that change together
in git history and, separately, the subset of those pairs that an
inferred import edge confirms.
`
