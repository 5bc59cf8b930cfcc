package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestSuggestTouches_WritesImplyDownstreamReads(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "auth"))
	mustMkdir(t, filepath.Join(dir, "api"))
	mustWrite(t, filepath.Join(dir, "api", "handler.go"), "package api\n")
	path := writeManifest(t, dir, "version: \"1\"\nauth:\n  path: auth\napi:\n  path: api\n  deps: [auth]\n")

	tool := NewSuggestTouches()
	params, _ := json.Marshal(suggestTouchesParams{
		ManifestPath: path,
		FilePaths:    []string{filepath.Join(dir, "api", "handler.go")},
	})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out suggestTouchesResult
	decodeResult(t, res, &out)
	if len(out.Writes) != 1 || out.Writes[0] != "api" {
		t.Fatalf("Writes = %v, want [api]", out.Writes)
	}
	if len(out.Reads) != 2 {
		t.Errorf("Reads = %v, want api and its dep auth", out.Reads)
	}
}

func TestScopedTests_CollectsRunCommandAndEnv(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "auth"))
	mustWrite(t, filepath.Join(dir, "auth", "login_test.go"), "package auth\n")
	path := writeManifest(t, dir, `version: "1"
auth:
  path: auth
  test: go test ./auth/...
  env: [AUTH_SECRET]
`)

	tool := NewScopedTests()
	params, _ := json.Marshal(scopedTestsParams{ManifestPath: path, Writes: []string{"auth"}})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out scopedTestsResult
	decodeResult(t, res, &out)
	if out.RunCommand != "go test ./auth/..." {
		t.Errorf("RunCommand = %q", out.RunCommand)
	}
	if len(out.RequiredEnv) != 1 || out.RequiredEnv[0] != "AUTH_SECRET" {
		t.Errorf("RequiredEnv = %v, want [AUTH_SECRET]", out.RequiredEnv)
	}
	if len(out.TestFiles) != 1 {
		t.Errorf("TestFiles = %v, want the discovered login_test.go", out.TestFiles)
	}
}

func TestScopedTests_TagFilterExcludesUnmatchedComponents(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "auth"))
	path := writeManifest(t, dir, `version: "1"
auth:
  path: auth
  tags: [backend]
`)

	tool := NewScopedTests()
	params, _ := json.Marshal(scopedTestsParams{ManifestPath: path, Writes: []string{"auth"}, Tags: []string{"frontend"}})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out scopedTestsResult
	decodeResult(t, res, &out)
	if len(out.ComponentsCovered) != 0 {
		t.Errorf("ComponentsCovered = %v, want none (tag mismatch)", out.ComponentsCovered)
	}
}
