// Package ack persists human freshness acknowledgements to
// <repo>/.varp/freshness.json, per spec.md §6's ack_freshness operation.
package ack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/varp-dev/varp/internal/manifest"
)

// State is the on-disk shape: component name -> doc basename -> RFC3339
// timestamp of last acknowledgement.
type State map[string]map[string]string

func statePath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), ".varp", "freshness.json")
}

// Load reads the acknowledgement state next to manifestPath. A missing file
// is not an error; it reads as empty state.
func Load(manifestPath string) (State, error) {
	path := statePath(manifestPath)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if s == nil {
		s = State{}
	}
	return s, nil
}

// save writes state atomically: write to a temp file in the same directory,
// then rename. The last writer wins if two hosts race (spec.md §5).
func save(manifestPath string, s State) error {
	path := statePath(manifestPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling freshness state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

// Acknowledge records "now" against every (component, doc-basename) pair
// named. An empty doc acknowledges every doc attached to that component.
// It returns the list of component names actually recorded, per spec.md
// §6's `{acked[]}`.
func Acknowledge(m *manifest.Manifest, manifestPath string, components []string, doc string, now time.Time) ([]string, error) {
	s, err := Load(manifestPath)
	if err != nil {
		return nil, err
	}

	stamp := now.UTC().Format(time.RFC3339)
	var acked []string
	for _, name := range components {
		comp := m.Component(name)
		if comp == nil {
			continue
		}
		docs := comp.Docs
		if doc != "" {
			docs = []string{doc}
		}
		if len(docs) == 0 {
			continue
		}
		if s[name] == nil {
			s[name] = make(map[string]string)
		}
		for _, d := range docs {
			s[name][filepath.Base(d)] = stamp
		}
		acked = append(acked, name)
	}

	if err := save(manifestPath, s); err != nil {
		return nil, err
	}
	return acked, nil
}
