// Package coupling infers a component co-change graph from git history and
// intersects it with the declared and import-inferred dependency edges, per
// spec.md §4.10's coupling composite. It is best-effort and sits outside the
// scheduler core: a missing git binary or a non-repo manifest directory is
// not an error, it just yields an empty graph.
package coupling

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/varp-dev/varp/internal/graph"
	"github.com/varp-dev/varp/internal/manifest"
)

// Pair is an unordered co-change relationship between two components,
// canonicalized so A < B lexicographically.
type Pair struct {
	A, B  string
	Count int // number of commits touching both A and B
}

// Result is the output of Scan.
type Result struct {
	Pairs []Pair
	// ImportConfirmed lists pairs that also have a declared or
	// import-inferred dependency edge in either direction.
	ImportConfirmed []Pair
	CommitsScanned  int
}

// Scan walks up to depth commits of git history under the manifest's
// directory, attributes each changed file to its owning component via the
// ownership index, and counts how often each distinct pair of components
// changes together in the same commit. importEdges is the set of
// component-level edges already known from declared deps and/or import
// inference; pairs present in both sets populate ImportConfirmed.
func Scan(ctx context.Context, m *manifest.Manifest, depth int, importEdges map[[2]string]bool) (*Result, error) {
	if err := checkGitRepo(ctx, m.Dir); err != nil {
		return &Result{}, nil
	}

	cmd := exec.CommandContext(ctx, "git", "log",
		fmt.Sprintf("-n%d", depth),
		"--pretty=format:COMMIT",
		"--name-only",
	)
	cmd.Dir = m.Dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	idx := graph.BuildOwnershipIndex(m)
	counts := make(map[[2]string]int)
	commits := 0
	var current map[string]bool

	flush := func() {
		if len(current) < 2 {
			return
		}
		names := make([]string, 0, len(current))
		for n := range current {
			names = append(names, n)
		}
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				counts[[2]string{names[i], names[j]}]++
			}
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "COMMIT" {
			flush()
			commits++
			current = make(map[string]bool)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lookup := idx.Lookup(filepath.Join(m.Dir, line))
		if lookup.Component != "" {
			current[lookup.Component] = true
		}
	}
	flush()

	pairs := make([]Pair, 0, len(counts))
	for k, count := range counts {
		pairs = append(pairs, Pair{A: k[0], B: k[1], Count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	var confirmed []Pair
	for _, p := range pairs {
		if importEdges[[2]string{p.A, p.B}] || importEdges[[2]string{p.B, p.A}] {
			confirmed = append(confirmed, p)
		}
	}

	return &Result{Pairs: pairs, ImportConfirmed: confirmed, CommitsScanned: commits}, nil
}

func checkGitRepo(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run()
}
