// Package freshness compares each component's attached documentation
// against its source tree's most recent modification time, flagging docs
// that have fallen behind.
package freshness

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/varp-dev/varp/internal/manifest"
)

// DefaultTolerance absorbs batch-edit races where a doc and its source are
// saved within the same operation but land a few seconds apart.
const DefaultTolerance = 5 * time.Second

// DocFreshness is the freshness verdict for one attached doc.
type DocFreshness struct {
	Path         string
	LastModified string // RFC3339, or "N/A" if the doc file is missing
	Stale        bool
}

// ComponentFreshness is the per-component freshness report.
type ComponentFreshness struct {
	SourceMaxModified time.Time
	Docs              []DocFreshness
}

var testFilePatterns = []string{"_test.go", ".test.ts", ".test.tsx", ".spec.ts", ".spec.tsx"}

func isTestFile(name string) bool {
	if strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py") {
		return true
	}
	for _, suffix := range testFilePatterns {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Check computes freshness for every component in m, per spec.md §4.9:
// source-max mtime excludes doc files and test files; a doc is stale when
// its mtime plus tolerance precedes the source max; a missing doc reports
// LastModified "N/A" and Stale true.
func Check(m *manifest.Manifest, tolerance time.Duration) (map[string]ComponentFreshness, error) {
	out := make(map[string]ComponentFreshness, len(m.Order))

	for _, name := range m.Order {
		comp := m.Component(name)
		docSet := make(map[string]bool, len(comp.Docs))
		for _, d := range comp.Docs {
			docSet[d] = true
		}

		var sourceMax time.Time
		for _, root := range comp.Path {
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil // best-effort: unreadable entries don't abort the scan
				}
				if d.IsDir() || docSet[path] || isTestFile(d.Name()) {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return nil
				}
				if info.ModTime().After(sourceMax) {
					sourceMax = info.ModTime()
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}

		docs := make([]DocFreshness, 0, len(comp.Docs))
		for _, doc := range comp.Docs {
			info, err := os.Stat(doc)
			if err != nil {
				docs = append(docs, DocFreshness{Path: doc, LastModified: "N/A", Stale: true})
				continue
			}
			stale := info.ModTime().Add(tolerance).Before(sourceMax)
			docs = append(docs, DocFreshness{
				Path:         doc,
				LastModified: info.ModTime().Format(time.RFC3339),
				Stale:        stale,
			})
		}

		out[name] = ComponentFreshness{SourceMaxModified: sourceMax, Docs: docs}
	}

	return out, nil
}
