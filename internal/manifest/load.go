package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/varp-dev/varp/internal/varperr"
	"gopkg.in/yaml.v3"
)

// rawComponent mirrors the YAML shape of a single component entry. Path,
// Docs, Tags, Env, and Deps all accept either a single string or a
// sequence in the manifest file; stringOrSlice normalizes both.
type rawComponent struct {
	Path      stringOrSlice `yaml:"path"`
	Deps      stringOrSlice `yaml:"deps"`
	Docs      stringOrSlice `yaml:"docs"`
	Tags      stringOrSlice `yaml:"tags"`
	Stability string        `yaml:"stability"`
	Test      string        `yaml:"test"`
	Env       stringOrSlice `yaml:"env"`
}

// stringOrSlice decodes a YAML scalar or sequence of scalars into a []string.
type stringOrSlice []string

func (s *stringOrSlice) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v == "" {
			*s = nil
			return nil
		}
		*s = []string{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = v
		return nil
	case 0:
		*s = nil
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence, got %v", node.Kind)
	}
}

// Load parses the manifest file at path, resolves every component path and
// doc path relative to the manifest's directory, and augments each
// component's docs with any README.md discovered under its path that isn't
// already listed. Load is pure over the file's bytes: identical input
// produces an identical *Manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest %s: %v", varperr.ErrIO, path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", varperr.ErrMalformedManifest, path, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s: empty document", varperr.ErrMalformedManifest, path)
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", varperr.ErrMalformedManifest, path)
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: resolving manifest directory: %v", varperr.ErrIO, err)
	}

	m := &Manifest{
		Dir:        absDir,
		Components: make(map[string]*Component),
	}

	var sawVersion bool
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valNode := doc.Content[i], doc.Content[i+1]
		key := keyNode.Value

		if key == "version" {
			if err := valNode.Decode(&m.Version); err != nil {
				return nil, fmt.Errorf("%w: %s: version: %v", varperr.ErrMalformedManifest, path, err)
			}
			sawVersion = true
			continue
		}

		if valNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s: component %q must be a mapping", varperr.ErrMalformedManifest, path, key)
		}

		var raw rawComponent
		if err := valNode.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %s: component %q: %v", varperr.ErrMalformedManifest, path, key, err)
		}

		stability := StabilityActive
		if raw.Stability != "" {
			stability = Stability(raw.Stability)
			if !stability.Valid() {
				return nil, fmt.Errorf("%w: %s: component %q: invalid stability %q", varperr.ErrMalformedManifest, path, key, raw.Stability)
			}
		}

		comp := &Component{
			Name:      key,
			Path:      resolveAll(absDir, raw.Path),
			Deps:      append([]string(nil), raw.Deps...),
			Docs:      resolveAll(absDir, raw.Docs),
			Tags:      append([]string(nil), raw.Tags...),
			Stability: stability,
			Test:      raw.Test,
			Env:       append([]string(nil), raw.Env...),
		}

		if err := discoverReadmes(comp); err != nil {
			return nil, err
		}

		m.Components[key] = comp
		m.Order = append(m.Order, key)
	}

	if !sawVersion {
		return nil, fmt.Errorf("%w: %s: missing version key", varperr.ErrMalformedManifest, path)
	}

	return m, nil
}

// resolveAll resolves each relative entry in paths against dir, leaving
// already-absolute entries untouched.
func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = filepath.Clean(p)
		} else {
			out[i] = filepath.Clean(filepath.Join(dir, p))
		}
	}
	return out
}

// discoverReadmes appends any README.md found directly under each of the
// component's paths that isn't already present in Docs.
func discoverReadmes(comp *Component) error {
	existing := make(map[string]bool, len(comp.Docs))
	for _, d := range comp.Docs {
		existing[d] = true
	}

	var found []string
	for _, p := range comp.Path {
		candidate := filepath.Join(p, "README.md")
		if existing[candidate] {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil {
			continue // no README under this path; not an error
		}
		if info.IsDir() {
			continue
		}
		if !existing[candidate] {
			found = append(found, candidate)
			existing[candidate] = true
		}
	}

	sort.Strings(found)
	comp.Docs = append(comp.Docs, found...)
	return nil
}
