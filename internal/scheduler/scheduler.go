// Package scheduler computes the data-hazard graph over a plan's tasks and
// derives the two artifacts that depend on it: wave assignment (maximal
// parallel grouping respecting write/read ordering) and the critical path
// (the longest chain of true data dependencies). All three functions are
// deterministic over their task-list input.
package scheduler

import (
	"fmt"

	"github.com/varp-dev/varp/internal/plan"
	"github.com/varp-dev/varp/internal/varperr"
)

// HazardType distinguishes the three data-hazard kinds a pair of tasks can
// exhibit over a shared component.
type HazardType string

const (
	RAW HazardType = "RAW"
	WAW HazardType = "WAW"
	WAR HazardType = "WAR"
)

// Hazard is a directed ordering constraint (or, for WAR, informational
// note) between two tasks over one component.
type Hazard struct {
	Type      HazardType
	Source    string
	Target    string
	Component string
}

// DetectHazards implements the pairwise scan in spec.md §4.5.1: every
// unordered pair of tasks in plan order, every component in the union of
// their touches, RAW/WAW/WAR in that order per component, WAR suppressed
// when the reader also writes the same component.
func DetectHazards(tasks []plan.Task) []Hazard {
	var hazards []Hazard
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			hazards = append(hazards, hazardsBetween(&tasks[i], &tasks[j])...)
		}
	}
	return hazards
}

func hazardsBetween(a, b *plan.Task) []Hazard {
	aReads, aWrites := toSet(a.Touches.Reads), toSet(a.Touches.Writes)
	bReads, bWrites := toSet(b.Touches.Reads), toSet(b.Touches.Writes)

	var hazards []Hazard
	for _, c := range unionInOrder(a.Touches.Reads, a.Touches.Writes, b.Touches.Reads, b.Touches.Writes) {
		if aWrites[c] && bReads[c] {
			hazards = append(hazards, Hazard{Type: RAW, Source: a.ID, Target: b.ID, Component: c})
		}
		if bWrites[c] && aReads[c] {
			hazards = append(hazards, Hazard{Type: RAW, Source: b.ID, Target: a.ID, Component: c})
		}
		if aWrites[c] && bWrites[c] {
			hazards = append(hazards, Hazard{Type: WAW, Source: a.ID, Target: b.ID, Component: c})
		}
		if aReads[c] && bWrites[c] && !aWrites[c] {
			hazards = append(hazards, Hazard{Type: WAR, Source: a.ID, Target: b.ID, Component: c})
		}
		if bReads[c] && aWrites[c] && !bWrites[c] {
			hazards = append(hazards, Hazard{Type: WAR, Source: b.ID, Target: a.ID, Component: c})
		}
	}
	return hazards
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// unionInOrder returns the union of the four slices in first-seen order
// across reads-a, writes-a, reads-b, writes-b — spec.md §4.5.1's
// "insertion order of the union".
func unionInOrder(sets ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range sets {
		for _, c := range set {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Wave is a group of tasks that can run in parallel, numbered from 1.
type Wave struct {
	ID    int
	Tasks []string
}

// AssignWaves builds the RAW+WAW ordering graph and assigns each task a
// wave by longest-path-from-roots, per spec.md §4.5.2. Within a wave,
// tasks are ordered critical-path-first (in chain order), then the
// remaining tasks in original plan order.
func AssignWaves(tasks []plan.Task, hazards []Hazard) ([]Wave, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	// predecessors[t] = tasks that must run before t (RAW+WAW edges only).
	predecessors := make(map[string][]string, len(tasks))
	for _, h := range hazards {
		if h.Type != RAW && h.Type != WAW {
			continue
		}
		predecessors[h.Target] = append(predecessors[h.Target], h.Source)
	}

	waveOf, err := longestPathFromRoots(tasks, predecessors)
	if err != nil {
		return nil, err
	}

	cp := CriticalPath(tasks, hazards)
	cpOrder := make(map[string]int, len(cp.TaskIDs))
	for i, id := range cp.TaskIDs {
		cpOrder[id] = i
	}

	maxWave := 0
	for _, w := range waveOf {
		if w > maxWave {
			maxWave = w
		}
	}

	waves := make([]Wave, maxWave)
	for i := range waves {
		waves[i].ID = i + 1
	}
	for _, t := range tasks {
		w := waveOf[t.ID] - 1
		waves[w].Tasks = append(waves[w].Tasks, t.ID)
	}

	for i := range waves {
		ids := waves[i].Tasks
		sortWaveTasks(ids, cpOrder, index)
	}

	return waves, nil
}

// dfsColor tracks the three-state DFS coloring used by longestPathFromRoots
// to detect a cycle without recursing.
type dfsColor int

const (
	white dfsColor = iota // unvisited
	gray                   // on the current stack
	black                  // fully processed
)

// dfsFrame is one stack entry: the task being processed and how many of
// its predecessors have already been pushed.
type dfsFrame struct {
	id      string
	nextIdx int
}

// longestPathFromRoots computes wave(t) = 1 + max(wave(p) for p a
// predecessor of t), or 1 if t has no predecessors, using an explicit-stack
// iterative post-order DFS rather than recursion (plans are small, but a
// stack-based walk keeps cycle members easy to report and avoids relying on
// Go call-stack depth for pathological inputs).
func longestPathFromRoots(tasks []plan.Task, predecessors map[string][]string) (map[string]int, error) {
	wave := make(map[string]int, len(tasks))
	color := make(map[string]dfsColor, len(tasks))

	for _, start := range tasks {
		if color[start.ID] != white {
			continue
		}

		var stack []dfsFrame
		stack = append(stack, dfsFrame{id: start.ID})
		color[start.ID] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			preds := predecessors[top.id]

			if top.nextIdx < len(preds) {
				p := preds[top.nextIdx]
				top.nextIdx++
				switch color[p] {
				case gray:
					members := make([]string, 0, len(stack)+1)
					for _, f := range stack {
						members = append(members, f.id)
					}
					members = append(members, p)
					return nil, fmt.Errorf("%w: cycle through %v", varperr.ErrPlanCycle, members)
				case white:
					color[p] = gray
					stack = append(stack, dfsFrame{id: p})
				case black:
					// already computed; contributes via wave[p] below
				}
				continue
			}

			w := 1
			for _, p := range preds {
				if wave[p]+1 > w {
					w = wave[p] + 1
				}
			}
			wave[top.id] = w
			color[top.id] = black
			stack = stack[:len(stack)-1]
		}
	}

	return wave, nil
}

// sortWaveTasks orders a wave's task ids: critical-path members first (in
// chain order), then non-critical-path members in original plan order.
func sortWaveTasks(ids []string, cpOrder, planIndex map[string]int) {
	less := func(i, j int) bool {
		a, b := ids[i], ids[j]
		_, aCP := cpOrder[a]
		_, bCP := cpOrder[b]
		if aCP != bCP {
			return aCP // critical-path tasks sort first
		}
		if aCP && bCP {
			return cpOrder[a] < cpOrder[b]
		}
		return planIndex[a] < planIndex[b]
	}
	insertionSort(ids, less)
}

func insertionSort(ids []string, less func(i, j int) bool) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// CriticalPathResult is the longest chain of true (RAW-only) data
// dependencies, plus the componentwise sum of its tasks' budgets.
type CriticalPathResult struct {
	TaskIDs     []string
	TotalBudget plan.Budget
}

// CriticalPath builds the RAW-only DAG and returns one path of maximal
// depth, per spec.md §4.5.3. Ties among predecessors achieving the max
// depth are broken by plan order (earliest-declared wins).
func CriticalPath(tasks []plan.Task, hazards []Hazard) CriticalPathResult {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	predecessors := make(map[string][]string, len(tasks))
	for _, h := range hazards {
		if h.Type != RAW {
			continue
		}
		predecessors[h.Target] = append(predecessors[h.Target], h.Source)
	}

	depth := make(map[string]int, len(tasks))
	bestPred := make(map[string]string, len(tasks))
	memoized := make(map[string]bool, len(tasks))

	var compute func(id string) int
	compute = func(id string) int {
		if memoized[id] {
			return depth[id]
		}
		memoized[id] = true

		preds := append([]string(nil), predecessors[id]...)
		sortByPlanOrder(preds, index)

		d := 1
		best := ""
		for _, p := range preds {
			pd := compute(p) + 1
			if pd > d {
				d = pd
				best = p
			}
		}
		depth[id] = d
		if best != "" {
			bestPred[id] = best
		}
		return d
	}

	var maxDepth int
	var endTask string
	for _, t := range tasks {
		d := compute(t.ID)
		if d > maxDepth {
			maxDepth = d
			endTask = t.ID
		}
	}

	if endTask == "" {
		return CriticalPathResult{}
	}

	var chain []string
	for cur := endTask; cur != ""; {
		chain = append(chain, cur)
		cur = bestPred[cur]
	}
	// reverse into forward order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	taskByID := make(map[string]*plan.Task, len(tasks))
	for i := range tasks {
		taskByID[tasks[i].ID] = &tasks[i]
	}
	var total plan.Budget
	for _, id := range chain {
		t := taskByID[id]
		total.Tokens += t.Budget.Tokens
		total.Minutes += t.Budget.Minutes
	}

	return CriticalPathResult{TaskIDs: chain, TotalBudget: total}
}

func sortByPlanOrder(ids []string, index map[string]int) {
	insertionSort(ids, func(i, j int) bool {
		return index[ids[i]] < index[ids[j]]
	})
}
