// Package graph implements dependency-graph analyses over a manifest:
// cycle detection on declared deps, invalidation cascades, and the
// longest-prefix ownership index used by capability enforcement and the
// import analyzer.
package graph

import (
	"path/filepath"
	"sort"

	"github.com/varp-dev/varp/internal/manifest"
)

// Cycle is a set of component names that participate in a dependency cycle.
type Cycle struct {
	Components []string
}

// Graph holds the forward and reverse deps adjacency maps for a manifest,
// per spec.md §9: flat maps of owned strings to sets of owned strings.
type Graph struct {
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
	names   []string // manifest insertion order
}

// Build constructs a Graph from a manifest's declared deps edges.
func Build(m *manifest.Manifest) *Graph {
	g := &Graph{
		forward: make(map[string]map[string]struct{}, len(m.Components)),
		reverse: make(map[string]map[string]struct{}, len(m.Components)),
		names:   append([]string(nil), m.Order...),
	}
	for _, name := range m.Order {
		g.forward[name] = make(map[string]struct{})
		g.reverse[name] = make(map[string]struct{})
	}
	for _, name := range m.Order {
		comp := m.Component(name)
		for _, dep := range comp.Deps {
			if _, ok := g.forward[dep]; !ok {
				// Dangling dep: not reported here or by any validator.
				// Track it so reverse lookups don't panic.
				g.forward[dep] = make(map[string]struct{})
				g.reverse[dep] = make(map[string]struct{})
			}
			g.forward[name][dep] = struct{}{}
			g.reverse[dep][name] = struct{}{}
		}
	}
	return g
}

// DetectCycles runs Kahn's algorithm over the forward deps graph. If every
// node can be removed (in-degree reaches zero), the graph is acyclic and
// DetectCycles returns nil. Otherwise the remaining nodes — those that
// never reach in-degree zero — are partitioned into cycles by strongly
// connected component. A remaining node that is not itself on a cycle
// (one that survives only because a cycle member depends on it) forms a
// one-member group of its own.
func (g *Graph) DetectCycles() []Cycle {
	inDegree := make(map[string]int, len(g.forward))
	for name := range g.forward {
		inDegree[name] = 0
	}
	for _, deps := range g.forward {
		for dep := range deps {
			inDegree[dep]++
		}
	}

	var queue []string
	for _, name := range g.names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	removed := make(map[string]bool, len(g.forward))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		removed[n] = true
		// deterministic successor order: this node's deps, sorted by name
		for _, dep := range sortedKeys(g.forward[n]) {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	var remaining []string
	for _, name := range g.names {
		if !removed[name] {
			remaining = append(remaining, name)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	return partitionCycles(g, remaining)
}

// partitionCycles groups the nodes that survive Kahn's algorithm into
// strongly connected components, which are disjoint (in practice manifests
// are small enough that a simple Tarjan pass is unnecessary precision; we
// group by mutual reachability within the remaining subgraph).
func partitionCycles(g *Graph, remaining []string) []Cycle {
	remainingSet := make(map[string]bool, len(remaining))
	for _, n := range remaining {
		remainingSet[n] = true
	}

	visited := make(map[string]bool)
	var cycles []Cycle
	for _, n := range remaining {
		if visited[n] {
			continue
		}
		// Collect every node in `remaining` mutually reachable with n.
		reachableFromN := reachable(g.forward, n, remainingSet)
		var members []string
		for _, m := range remaining {
			if !reachableFromN[m] {
				continue
			}
			reachableFromM := reachable(g.forward, m, remainingSet)
			if reachableFromM[n] {
				members = append(members, m)
			}
		}
		sort.Strings(members)
		for _, m := range members {
			visited[m] = true
		}
		cycles = append(cycles, Cycle{Components: members})
	}
	return cycles
}

func reachable(forward map[string]map[string]struct{}, start string, allowed map[string]bool) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for dep := range forward[n] {
			if !allowed[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			queue = append(queue, dep)
		}
	}
	return seen
}

// InvalidationCascade returns the transitive closure, inclusive of the
// input, of every component that directly or indirectly depends on one of
// the changed components — i.e. the reverse-deps reachability set.
func (g *Graph) InvalidationCascade(changed []string) []string {
	affected := make(map[string]bool, len(changed))
	var queue []string
	for _, c := range changed {
		if !affected[c] {
			affected[c] = true
			queue = append(queue, c)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for dependent := range g.reverse[n] {
			if !affected[dependent] {
				affected[dependent] = true
				queue = append(queue, dependent)
			}
		}
	}

	out := make([]string, 0, len(affected))
	for name := range affected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DependsOn reports whether target is reachable from start via forward
// deps edges (start -> ... -> target).
func (g *Graph) DependsOn(start, target string) bool {
	if start == target {
		return true
	}
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for dep := range g.forward[n] {
			if dep == target {
				return true
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OutsideAllComponents is the sentinel actual_component value for a path
// that no component owns (spec.md §4.6.1).
const OutsideAllComponents = "outside all components"

// OwnerEntry is one component's contribution to the ownership index: an
// absolute, cleaned form of one of its declared paths.
type OwnerEntry struct {
	Component string
	Path      string
}

// OwnershipIndex resolves an absolute file path to the component whose
// declared path is its longest prefix. Ties (two components declaring the
// identical longest prefix) are broken by manifest insertion order
// (spec.md §9 Open Question 1).
type OwnershipIndex struct {
	entries []OwnerEntry // sorted by descending path length
}

// BuildOwnershipIndex constructs the index described in spec.md §3: for
// each component, the absolute form of each of its paths, globally ordered
// by descending path length.
func BuildOwnershipIndex(m *manifest.Manifest) *OwnershipIndex {
	idx := &OwnershipIndex{}
	for _, name := range m.Order {
		comp := m.Component(name)
		for _, p := range comp.Path {
			idx.entries = append(idx.entries, OwnerEntry{Component: name, Path: filepath.Clean(p)})
		}
	}
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return len(idx.entries[i].Path) > len(idx.entries[j].Path)
	})
	return idx
}

// Lookup returns the component owning file, or "" if no component's path
// is a prefix of it. Ambiguous reports whether more than one component
// declares the same longest-matching prefix, and OtherOwners lists the
// other components tied at that prefix length (for diagnostics only — the
// returned owner is still the first in manifest order per the tie-break).
type LookupResult struct {
	Component   string
	Ambiguous   bool
	OtherOwners []string
}

// Lookup resolves file (any path; relative paths are resolved against the
// current working directory via filepath.Abs) to its owning component.
func (idx *OwnershipIndex) Lookup(file string) LookupResult {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = filepath.Clean(file)
	}

	var bestLen = -1
	var winner string
	var found bool
	var tiedOthers []string

	for _, e := range idx.entries {
		if !isWithin(abs, e.Path) {
			continue
		}
		l := len(e.Path)
		switch {
		case l > bestLen:
			bestLen = l
			winner = e.Component
			found = true
			tiedOthers = nil
		case l == bestLen && e.Component != winner:
			tiedOthers = append(tiedOthers, e.Component)
		}
	}

	if !found {
		return LookupResult{}
	}
	return LookupResult{Component: winner, Ambiguous: len(tiedOthers) > 0, OtherOwners: tiedOthers}
}

// isWithin reports whether file is equal to root or nested under it.
func isWithin(file, root string) bool {
	if file == root {
		return true
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[:2] == ".." &&
		(len(rel) == 2 || rel[2] == filepath.Separator)
}
