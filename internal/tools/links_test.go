package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestScanLinks_DepsModeOmitsBroken(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "README.md"), "See [auth docs](../auth/README.md) for setup.\n")
	mustWrite(t, filepath.Join(dir, "auth", "README.md"), "# auth\n")
	path := writeManifest(t, dir, "version: \"1\"\napi:\n  path: api\nauth:\n  path: auth\n")

	tool := NewScanLinks()
	params, _ := json.Marshal(map[string]string{"manifest_path": path, "mode": "deps"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out struct {
		InferredDeps []struct{ From, To string }
		Broken       []struct{ Doc, Target string } `json:"broken"`
	}
	decodeResult(t, res, &out)
	if len(out.InferredDeps) != 1 || out.InferredDeps[0].From != "api" || out.InferredDeps[0].To != "auth" {
		t.Fatalf("InferredDeps = %+v, want [{api auth}]", out.InferredDeps)
	}
	if out.Broken != nil {
		t.Errorf("Broken = %+v, want omitted in deps mode", out.Broken)
	}
}

func TestScanLinks_BrokenModeFlagsMissingTarget(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "README.md"), "See [ghost](../ghost/README.md) for setup.\n")
	path := writeManifest(t, dir, "version: \"1\"\napi:\n  path: api\n")

	tool := NewScanLinks()
	params, _ := json.Marshal(map[string]string{"manifest_path": path, "mode": "broken"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out struct {
		Broken []struct{ Doc, Target string }
	}
	decodeResult(t, res, &out)
	if len(out.Broken) != 1 {
		t.Errorf("Broken = %+v, want the dangling link flagged", out.Broken)
	}
}
