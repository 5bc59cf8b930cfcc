package imports

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/varp-dev/varp/internal/manifest"
)

// aliasEntry is one resolved (pattern -> targets) row from a tsconfig-style
// compilerOptions.paths table, with baseURL already folded into each
// target so resolution is a pure string operation.
type aliasEntry struct {
	pattern string // may end in "/*"
	targets []string
}

// AliasTable resolves path-alias specifiers per spec.md §4.7: entries are
// tried longest-prefix-first so a more specific alias wins over a broader
// one declared in an extended config.
type AliasTable struct {
	entries []aliasEntry
}

type tsconfigFile struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadAliasTable reads the tsconfig-shaped file at path and follows its
// extends chain to a fixed point (cycle-guarded), merging compilerOptions.paths
// with closer configs overriding entries from ones they extend.
func LoadAliasTable(path string) (*AliasTable, error) {
	merged := make(map[string][]string)
	visited := make(map[string]bool)

	current := path
	for current != "" {
		abs, err := filepath.Abs(current)
		if err != nil {
			break
		}
		if visited[abs] {
			break // extends cycle; stop following
		}
		visited[abs] = true

		data, err := os.ReadFile(abs)
		if err != nil {
			if abs == path {
				return nil, err
			}
			break
		}

		var cfg tsconfigFile
		if err := json.Unmarshal(data, &cfg); err != nil {
			if abs == path {
				return nil, err
			}
			break
		}

		dir := filepath.Dir(abs)
		baseDir := dir
		if cfg.CompilerOptions.BaseURL != "" {
			baseDir = filepath.Join(dir, cfg.CompilerOptions.BaseURL)
		}
		for pattern, targets := range cfg.CompilerOptions.Paths {
			if _, exists := merged[pattern]; exists {
				continue // closer config already set this pattern
			}
			resolved := make([]string, len(targets))
			for i, t := range targets {
				resolved[i] = filepath.Join(baseDir, t)
			}
			merged[pattern] = resolved
		}

		if cfg.Extends == "" {
			break
		}
		current = resolveExtends(dir, cfg.Extends)
	}

	table := &AliasTable{}
	for pattern, targets := range merged {
		table.entries = append(table.entries, aliasEntry{pattern: pattern, targets: targets})
	}
	sort.Slice(table.entries, func(i, j int) bool {
		return specificity(table.entries[i].pattern) > specificity(table.entries[j].pattern)
	})
	return table, nil
}

// discoverAliasTable looks for a tsconfig.json at the manifest's root
// directory first, then falls back to the first component path (in
// manifest order) that has one. A load failure is reported as a scan
// error rather than aborting the scan; a missing file at every candidate
// is not an error at all, since not every workspace uses path aliases.
func discoverAliasTable(m *manifest.Manifest) (*AliasTable, []ScanError) {
	var candidates []string
	if m.Dir != "" {
		candidates = append(candidates, filepath.Join(m.Dir, "tsconfig.json"))
	}
	for _, name := range m.Order {
		for _, root := range m.Component(name).Path {
			candidates = append(candidates, filepath.Join(root, "tsconfig.json"))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		table, err := LoadAliasTable(path)
		if err != nil {
			return &AliasTable{}, []ScanError{{File: path, Err: err}}
		}
		return table, nil
	}
	return &AliasTable{}, nil
}

func resolveExtends(dir, extends string) string {
	if !strings.HasSuffix(extends, ".json") {
		extends += ".json"
	}
	return filepath.Join(dir, extends)
}

// specificity ranks patterns so exact (non-wildcard) patterns and longer
// prefixes win ties deterministically.
func specificity(pattern string) int {
	prefix := strings.TrimSuffix(pattern, "*")
	n := len(prefix)
	if !strings.Contains(pattern, "*") {
		n += 1 << 16 // exact patterns always outrank wildcards
	}
	return n
}

// Resolve attempts to match specifier against the table and returns every
// candidate absolute path (wildcard substituted) worth probing on disk, in
// the table's priority order.
func (t *AliasTable) Resolve(specifier string) []string {
	for _, e := range t.entries {
		prefix := strings.TrimSuffix(e.pattern, "*")
		if !strings.HasSuffix(e.pattern, "*") {
			if specifier != e.pattern {
				continue
			}
			return append([]string(nil), e.targets...)
		}
		if !strings.HasPrefix(specifier, prefix) {
			continue
		}
		remainder := specifier[len(prefix):]
		var out []string
		for _, target := range e.targets {
			out = append(out, strings.TrimSuffix(target, "*")+remainder)
		}
		return out
	}
	return nil
}
