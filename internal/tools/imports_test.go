package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestInferImports_FindsUndeclaredEdge(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import { login } from '../auth/login';\n")
	path := writeManifest(t, dir, "version: \"1\"\nauth:\n  path: auth\napi:\n  path: api\n")

	tool := NewInferImports()
	params, _ := json.Marshal(map[string]string{"manifest_path": path})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out inferImportsResult
	decodeResult(t, res, &out)
	if len(out.ImportDeps) != 1 || out.ImportDeps[0].From != "api" || out.ImportDeps[0].To != "auth" {
		t.Fatalf("ImportDeps = %+v, want [{api auth}]", out.ImportDeps)
	}
	if len(out.MissingDeps) != 1 {
		t.Errorf("MissingDeps = %+v, want the api->auth edge flagged as undeclared", out.MissingDeps)
	}
	if out.Totals.Scanned != 2 {
		t.Errorf("Totals.Scanned = %d, want 2 (files walked, not edges inferred)", out.Totals.Scanned)
	}
}
