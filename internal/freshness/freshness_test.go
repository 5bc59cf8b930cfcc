package freshness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/varp-dev/varp/internal/manifest"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setMTime(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatal(err)
	}
}

func TestCheck_FreshDoc(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "auth", "login.go")
	doc := filepath.Join(dir, "auth", "README.md")
	mustWrite(t, src, "package auth\n")
	mustWrite(t, doc, "# auth\n")

	now := time.Now()
	setMTime(t, src, now.Add(-time.Hour))
	setMTime(t, doc, now)

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}, Docs: []string{doc}},
		},
		Order: []string{"auth"},
	}

	result, err := Check(m, DefaultTolerance)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	docs := result["auth"].Docs
	if len(docs) != 1 || docs[0].Stale {
		t.Errorf("docs = %+v, want fresh", docs)
	}
}

func TestCheck_StaleDoc(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "auth", "login.go")
	doc := filepath.Join(dir, "auth", "README.md")
	mustWrite(t, src, "package auth\n")
	mustWrite(t, doc, "# auth\n")

	now := time.Now()
	setMTime(t, doc, now.Add(-time.Hour))
	setMTime(t, src, now)

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}, Docs: []string{doc}},
		},
		Order: []string{"auth"},
	}

	result, err := Check(m, DefaultTolerance)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	docs := result["auth"].Docs
	if len(docs) != 1 || !docs[0].Stale {
		t.Errorf("docs = %+v, want stale", docs)
	}
}

func TestCheck_ToleranceAbsorbsSmallSkew(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "auth", "login.go")
	doc := filepath.Join(dir, "auth", "README.md")
	mustWrite(t, src, "package auth\n")
	mustWrite(t, doc, "# auth\n")

	now := time.Now()
	setMTime(t, doc, now)
	setMTime(t, src, now.Add(2*time.Second)) // within the 5s tolerance

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}, Docs: []string{doc}},
		},
		Order: []string{"auth"},
	}

	result, err := Check(m, DefaultTolerance)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result["auth"].Docs[0].Stale {
		t.Error("expected tolerance to absorb a 2s skew against a 5s tolerance")
	}
}

func TestCheck_MissingDocReportsNAndStale(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "auth", "login.go")
	mustWrite(t, src, "package auth\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}, Docs: []string{filepath.Join(dir, "auth", "MISSING.md")}},
		},
		Order: []string{"auth"},
	}

	result, err := Check(m, DefaultTolerance)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	docs := result["auth"].Docs
	if len(docs) != 1 || docs[0].LastModified != "N/A" || !docs[0].Stale {
		t.Errorf("docs = %+v, want N/A + stale", docs)
	}
}

func TestCheck_TestFilesExcludedFromSourceMax(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "auth", "login.go")
	testFile := filepath.Join(dir, "auth", "login_test.go")
	doc := filepath.Join(dir, "auth", "README.md")
	mustWrite(t, src, "package auth\n")
	mustWrite(t, testFile, "package auth\n")
	mustWrite(t, doc, "# auth\n")

	now := time.Now()
	setMTime(t, src, now.Add(-time.Hour))
	setMTime(t, doc, now.Add(-time.Hour))
	setMTime(t, testFile, now) // much newer, but must not count as source

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}, Docs: []string{doc}},
		},
		Order: []string{"auth"},
	}

	result, err := Check(m, DefaultTolerance)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result["auth"].Docs[0].Stale {
		t.Error("test file mtime must not count toward source max, so doc should read fresh")
	}
}
