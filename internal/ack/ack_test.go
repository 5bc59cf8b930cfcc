package ack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/varp-dev/varp/internal/manifest"
)

func testManifest(dir string) *manifest.Manifest {
	return &manifest.Manifest{
		Version: "1",
		Dir:     dir,
		Components: map[string]*manifest.Component{
			"auth": {
				Name: "auth",
				Path: []string{filepath.Join(dir, "auth")},
				Docs: []string{filepath.Join(dir, "auth", "README.md"), filepath.Join(dir, "auth", "DESIGN.md")},
			},
		},
		Order: []string{"auth"},
	}
}

func TestAcknowledge_WritesTimestampForNamedDoc(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "components.yaml")
	m := testManifest(dir)
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	acked, err := Acknowledge(m, manifestPath, []string{"auth"}, filepath.Join(dir, "auth", "README.md"), now)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if len(acked) != 1 || acked[0] != "auth" {
		t.Fatalf("acked = %+v, want [auth]", acked)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".varp", "freshness.json"))
	if err != nil {
		t.Fatalf("reading freshness.json: %v", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s["auth"]["README.md"] != "2026-07-31T12:00:00Z" {
		t.Errorf("stamp = %q, want 2026-07-31T12:00:00Z", s["auth"]["README.md"])
	}
}

func TestAcknowledge_EmptyDocAcksAllAttachedDocs(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "components.yaml")
	m := testManifest(dir)
	now := time.Now()

	acked, err := Acknowledge(m, manifestPath, []string{"auth"}, "", now)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if len(acked) != 1 || acked[0] != "auth" {
		t.Fatalf("acked = %+v, want [auth] (one entry per component, not per doc)", acked)
	}
}

func TestAcknowledge_PreservesPriorEntriesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "components.yaml")
	m := testManifest(dir)

	if _, err := Acknowledge(m, manifestPath, []string{"auth"}, filepath.Join(dir, "auth", "README.md"), time.Now()); err != nil {
		t.Fatalf("first Acknowledge: %v", err)
	}
	if _, err := Acknowledge(m, manifestPath, []string{"auth"}, filepath.Join(dir, "auth", "DESIGN.md"), time.Now()); err != nil {
		t.Fatalf("second Acknowledge: %v", err)
	}

	s, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s["auth"]) != 2 {
		t.Errorf("state = %+v, want both docs recorded", s["auth"])
	}
}

func TestLoad_MissingFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "components.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("s = %+v, want empty", s)
	}
}

func TestAcknowledge_UnknownComponentSkipped(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "components.yaml")
	m := testManifest(dir)

	acked, err := Acknowledge(m, manifestPath, []string{"nonexistent"}, "", time.Now())
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if len(acked) != 0 {
		t.Errorf("acked = %+v, want none", acked)
	}
}
