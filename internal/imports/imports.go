// Package imports scans a manifest's components for static import
// declarations and aggregates them into a component-level dependency
// graph, diffed against the manifest's declared deps.
package imports

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

// Edge is a directed component-level dependency inferred from source.
type Edge struct {
	From string
	To   string
}

// ScanError records a per-file failure that didn't abort the overall scan.
type ScanError struct {
	File string
	Err  error
}

// ScanResult is the aggregated output of Scan.
type ScanResult struct {
	Edges       []Edge
	MissingDeps []Edge
	ExtraDeps   []Edge
	ScanErrors  []ScanError
	// FilesScanned is the number of source files walked, regardless of
	// whether any import specifiers were found in them.
	FilesScanned int
}

var candidateExtensions = []string{"", ".ts", ".tsx", ".js", ".jsx", ".go", ".py", "/index.ts", "/index.tsx", "/index.js"}

var (
	goImportSpecifier = regexp.MustCompile(`"([^"]+)"`)
	jsImportSpecifier = regexp.MustCompile(`(?:from\s+|require\()\s*['"]([^'"]+)['"]`)
	pyImportSpecifier = regexp.MustCompile(`^\s*(?:from\s+(\.*[A-Za-z0-9_.]*)\s+import|import\s+(\.*[A-Za-z0-9_.]+))`)
)

// Option configures a Scan call.
type Option func(*scanConfig)

type scanConfig struct {
	aliases    *AliasTable
	aliasesSet bool
}

// WithAliasTable installs the alias table used to resolve path-alias
// import specifiers (spec.md §4.7), overriding Scan's own tsconfig.json
// auto-discovery. Without one, Scan looks for a tsconfig.json itself;
// pass this only to pin a specific table (e.g. in tests).
func WithAliasTable(t *AliasTable) Option {
	return func(c *scanConfig) {
		if t == nil {
			t = &AliasTable{}
		}
		c.aliases = t
		c.aliasesSet = true
	}
}

// Scan walks every source file under each component's declared paths
// (excluding anything under a docs entry) and infers a from!=to
// component-edge graph from static import specifiers. Component
// directories are scanned concurrently; results are deterministic
// regardless of scheduling because they are merged and then sorted.
func Scan(m *manifest.Manifest, opts ...Option) (*ScanResult, error) {
	cfg := &scanConfig{aliases: &AliasTable{}}
	for _, opt := range opts {
		opt(cfg)
	}

	var discoveryErrors []ScanError
	if !cfg.aliasesSet {
		cfg.aliases, discoveryErrors = discoverAliasTable(m)
	}

	idx := graph.BuildOwnershipIndex(m)
	docSet := make(map[string]bool)
	for _, name := range m.Order {
		for _, d := range m.Component(name).Docs {
			docSet[d] = true
		}
	}

	type componentResult struct {
		edges        map[Edge]bool
		scanErrors   []ScanError
		filesScanned int
	}
	results := make([]componentResult, len(m.Order))

	var g errgroup.Group
	for i, name := range m.Order {
		i, name := i, name
		g.Go(func() error {
			res := componentResult{edges: make(map[Edge]bool)}
			comp := m.Component(name)
			for _, root := range comp.Path {
				_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
					if err != nil {
						res.scanErrors = append(res.scanErrors, ScanError{File: path, Err: err})
						return nil
					}
					if d.IsDir() || docSet[path] {
						return nil
					}
					res.filesScanned++
					specifiers, err := extractSpecifiers(path)
					if err != nil {
						res.scanErrors = append(res.scanErrors, ScanError{File: path, Err: err})
						return nil
					}
					for _, spec := range specifiers {
						to := resolveSpecifier(spec, path, idx, cfg.aliases)
						if to == "" || to == name {
							continue
						}
						res.edges[Edge{From: name, To: to}] = true
					}
					return nil
				})
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edgeSet := make(map[Edge]bool)
	scanErrors := append([]ScanError(nil), discoveryErrors...)
	filesScanned := 0
	for _, res := range results {
		for e := range res.edges {
			edgeSet[e] = true
		}
		scanErrors = append(scanErrors, res.scanErrors...)
		filesScanned += res.filesScanned
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
	sort.Slice(scanErrors, func(i, j int) bool { return scanErrors[i].File < scanErrors[j].File })

	result := &ScanResult{Edges: edges, ScanErrors: scanErrors, FilesScanned: filesScanned}
	result.MissingDeps, result.ExtraDeps = diffDeps(edges, m)
	return result, nil
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

// extractSpecifiers returns every raw import specifier found in file,
// using the extraction rule keyed by extension per spec.md §4.7.
func extractSpecifiers(path string) ([]string, error) {
	ext := filepath.Ext(path)
	var re *regexp.Regexp
	switch ext {
	case ".go":
		re = goImportSpecifier
	case ".ts", ".tsx", ".js", ".jsx":
		re = jsImportSpecifier
	case ".py":
		re = pyImportSpecifier
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var specs []string
	for _, line := range strings.Split(string(data), "\n") {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			for _, g := range m[1:] {
				if g != "" {
					specs = append(specs, g)
					break
				}
			}
		}
	}
	return specs, nil
}

// resolveSpecifier resolves spec (as seen in fromFile) to the component
// that owns the resolved file, or "" if it's a bare external package, a
// dangling alias, or doesn't resolve to any file on disk.
func resolveSpecifier(spec, fromFile string, idx *graph.OwnershipIndex, aliases *AliasTable) string {
	var candidates []string
	switch {
	case strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../"):
		candidates = []string{filepath.Join(filepath.Dir(fromFile), spec)}
	case strings.HasPrefix(spec, "."):
		// Python relative import: leading dots count levels above the
		// importing file's package directory.
		dots := 0
		for dots < len(spec) && spec[dots] == '.' {
			dots++
		}
		base := filepath.Dir(fromFile)
		for i := 1; i < dots; i++ {
			base = filepath.Dir(base)
		}
		rest := strings.ReplaceAll(spec[dots:], ".", string(filepath.Separator))
		candidates = []string{filepath.Join(base, rest)}
	default:
		candidates = aliases.Resolve(spec)
	}

	for _, c := range candidates {
		if resolved := probeFile(c); resolved != "" {
			if r := idx.Lookup(resolved); r.Component != "" {
				return r.Component
			}
		}
	}
	return ""
}

func probeFile(base string) string {
	for _, suffix := range candidateExtensions {
		candidate := base + suffix
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
