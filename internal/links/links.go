// Package links scans a manifest's component documentation for Markdown
// link targets and aggregates them into the same component-level
// dependency-edge shape the import analyzer produces, so the two can be
// compared and reconciled against declared deps.
package links

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/manifest"
)

// Edge is a directed component-level dependency inferred from a doc link.
type Edge struct {
	From string
	To   string
}

// BrokenLink is a Markdown link whose target does not resolve to any file
// on disk.
type BrokenLink struct {
	Doc    string
	Target string
}

// Totals summarizes how many links were scanned and how they classified.
type Totals struct {
	Scanned int
	Edges   int
	Broken  int
	Outside int
}

// LinkScanResult is the aggregated output of Scan.
type LinkScanResult struct {
	InferredDeps []Edge
	MissingDeps  []Edge
	ExtraDeps    []Edge
	Broken       []BrokenLink
	Totals       Totals
}

// inlineLink matches Markdown inline links: [text](target "optional title").
var inlineLink = regexp.MustCompile(`\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// referenceDef matches reference-style link definitions: [label]: target
var referenceDef = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s*(\S+)`)

// Scan walks every doc attached to each component and classifies its
// Markdown link targets, per spec.md §4.8. Per-component scans run
// concurrently via errgroup; results are merged and then sorted so the
// return value is deterministic regardless of scheduling.
func Scan(m *manifest.Manifest) (*LinkScanResult, error) {
	idx := graph.BuildOwnershipIndex(m)

	type componentResult struct {
		edges   map[Edge]bool
		broken  []BrokenLink
		scanned int
		outside int
	}
	results := make([]componentResult, len(m.Order))

	var g errgroup.Group
	for i, name := range m.Order {
		i, name := i, name
		g.Go(func() error {
			res := componentResult{edges: make(map[Edge]bool)}
			comp := m.Component(name)
			for _, doc := range comp.Docs {
				data, err := os.ReadFile(doc)
				if err != nil {
					continue // missing doc file: not this scan's concern (see freshness)
				}
				targets := extractLinkTargets(string(data))
				for _, target := range targets {
					if isExternalLink(target) {
						continue
					}
					res.scanned++
					resolved := filepath.Join(filepath.Dir(doc), target)
					resolved = strings.SplitN(resolved, "#", 2)[0]
					info, statErr := os.Stat(resolved)
					if statErr != nil || info.IsDir() {
						res.broken = append(res.broken, BrokenLink{Doc: doc, Target: target})
						continue
					}
					lookup := idx.Lookup(resolved)
					if lookup.Component == "" {
						res.outside++
						continue
					}
					if lookup.Component != name {
						res.edges[Edge{From: name, To: lookup.Component}] = true
					}
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edgeSet := make(map[Edge]bool)
	var broken []BrokenLink
	var totals Totals
	for _, res := range results {
		for e := range res.edges {
			edgeSet[e] = true
		}
		broken = append(broken, res.broken...)
		totals.Scanned += res.scanned
		totals.Broken += len(res.broken)
		totals.Outside += res.outside
	}

	edges := make([]Edge, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Doc != broken[j].Doc {
			return broken[i].Doc < broken[j].Doc
		}
		return broken[i].Target < broken[j].Target
	})
	totals.Edges = len(edges)

	missing, extra := diffDeps(edges, m)
	return &LinkScanResult{
		InferredDeps: edges,
		MissingDeps:  missing,
		ExtraDeps:    extra,
		Broken:       broken,
		Totals:       totals,
	}, nil
}

func extractLinkTargets(content string) []string {
	var targets []string
	for _, match := range inlineLink.FindAllStringSubmatch(content, -1) {
		targets = append(targets, match[1])
	}
	for _, match := range referenceDef.FindAllStringSubmatch(content, -1) {
		targets = append(targets, match[1])
	}
	return targets
}

func isExternalLink(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#")
}

func diffDeps(edges []Edge, m *manifest.Manifest) (missing, extra []Edge) {
	declared := make(map[Edge]bool)
	for _, name := range m.Order {
		for _, dep := range m.Component(name).Deps {
			declared[Edge{From: name, To: dep}] = true
		}
	}
	observed := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		observed[e] = true
		if !declared[e] {
			missing = append(missing, e)
		}
	}
	for _, name := range m.Order {
		for _, dep := range m.Component(name).Deps {
			e := Edge{From: name, To: dep}
			if !observed[e] {
				extra = append(extra, e)
			}
		}
	}
	sort.Slice(missing, func(i, j int) bool { return lessEdge(missing[i], missing[j]) })
	sort.Slice(extra, func(i, j int) bool { return lessEdge(extra[i], extra[j]) })
	return missing, extra
}

func lessEdge(a, b Edge) bool {
	if a.From != b.From {
		return a.From < b.From
	}
	return a.To < b.To
}
