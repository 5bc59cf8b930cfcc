package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestCoupling_NonGitDirYieldsEmptyPairs(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "auth"))
	path := writeManifest(t, dir, "version: \"1\"\nauth:\n  path: auth\n")

	tool := NewCoupling()
	params, _ := json.Marshal(couplingParams{ManifestPath: path, Mode: "co_change"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out struct{ Pairs []struct{ A, B string } }
	decodeResult(t, res, &out)
	if len(out.Pairs) != 0 {
		t.Errorf("Pairs = %+v, want none outside a git repo", out.Pairs)
	}
}
