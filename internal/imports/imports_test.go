package imports

import (
	"os"
	"path/filepath"
	"testing"

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

func TestScan_RelativeImportCrossesComponents(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import { login } from '../auth/login';\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}},
			"api":  {Name: "api", Path: []string{filepath.Join(dir, "api")}, Deps: nil},
		},
		Order: []string{"auth", "api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 1 || result.Edges[0] != (Edge{From: "api", To: "auth"}) {
		t.Fatalf("Edges = %+v, want [{api auth}]", result.Edges)
	}
	if len(result.MissingDeps) != 1 || result.MissingDeps[0] != (Edge{From: "api", To: "auth"}) {
		t.Errorf("MissingDeps = %+v, want [{api auth}] (edge inferred but not declared)", result.MissingDeps)
	}
}

func TestScan_DeclaredDepUnusedIsExtraDep(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "export const handle = 1;\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}},
			"api":  {Name: "api", Path: []string{filepath.Join(dir, "api")}, Deps: []string{"auth"}},
		},
		Order: []string{"auth", "api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 0 {
		t.Errorf("Edges = %+v, want none (no import present)", result.Edges)
	}
	if len(result.ExtraDeps) != 1 || result.ExtraDeps[0] != (Edge{From: "api", To: "auth"}) {
		t.Errorf("ExtraDeps = %+v, want [{api auth}]", result.ExtraDeps)
	}
}

func TestScan_BareExternalPackageIgnored(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import express from 'express';\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"api": {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 0 {
		t.Errorf("Edges = %+v, want none (bare external package)", result.Edges)
	}
}

func TestScan_AliasResolution(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import { login } from '@auth/login';\n")
	tsconfig := filepath.Join(dir, "tsconfig.json")
	mustWrite(t, tsconfig, `{
  "compilerOptions": {
    "baseUrl": ".",
    "paths": { "@auth/*": ["auth/*"] }
  }
}`)

	aliasTable, err := LoadAliasTable(tsconfig)
	if err != nil {
		t.Fatalf("LoadAliasTable: %v", err)
	}

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}},
			"api":  {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"auth", "api"},
	}

	result, err := Scan(m, WithAliasTable(aliasTable))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 1 || result.Edges[0] != (Edge{From: "api", To: "auth"}) {
		t.Fatalf("Edges = %+v, want [{api auth}] via alias resolution", result.Edges)
	}
}

func TestScan_AutoDiscoversTsconfigAtManifestDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import { login } from '@auth/login';\n")
	mustWrite(t, filepath.Join(dir, "tsconfig.json"), `{
  "compilerOptions": {
    "baseUrl": ".",
    "paths": { "@auth/*": ["auth/*"] }
  }
}`)

	m := &manifest.Manifest{
		Version: "1",
		Dir:     dir,
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}},
			"api":  {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"auth", "api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 1 || result.Edges[0] != (Edge{From: "api", To: "auth"}) {
		t.Fatalf("Edges = %+v, want [{api auth}] via auto-discovered tsconfig.json, no WithAliasTable passed", result.Edges)
	}
}

func TestScan_AutoDiscoversTsconfigUnderComponentPath(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "auth", "login.ts"), "export const login = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "import { login } from '~/login';\n")
	mustWrite(t, filepath.Join(dir, "api", "tsconfig.json"), `{
  "compilerOptions": {
    "baseUrl": "..",
    "paths": { "~/*": ["auth/*"] }
  }
}`)

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"auth": {Name: "auth", Path: []string{filepath.Join(dir, "auth")}},
			"api":  {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"auth", "api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 1 || result.Edges[0] != (Edge{From: "api", To: "auth"}) {
		t.Fatalf("Edges = %+v, want [{api auth}] via tsconfig.json found under a component path", result.Edges)
	}
}

func TestScan_MalformedAutoDiscoveredTsconfigReportsScanError(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "export const handle = 1;\n")
	mustWrite(t, filepath.Join(dir, "tsconfig.json"), `{ not valid json`)

	m := &manifest.Manifest{
		Version: "1",
		Dir:     dir,
		Components: map[string]*manifest.Component{
			"api": {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.ScanErrors) != 1 {
		t.Fatalf("ScanErrors = %+v, want exactly one entry for the malformed tsconfig.json", result.ScanErrors)
	}
	if result.ScanErrors[0].File != filepath.Join(dir, "tsconfig.json") {
		t.Errorf("ScanErrors[0].File = %q, want %q", result.ScanErrors[0].File, filepath.Join(dir, "tsconfig.json"))
	}
}

func TestScan_FilesScannedCountsEveryNonDocFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "handler.ts"), "export const handle = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "util.ts"), "export const util = 1;\n")
	mustWrite(t, filepath.Join(dir, "api", "README.md"), "# api\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"api": {Name: "api", Path: []string{filepath.Join(dir, "api")}, Docs: []string{filepath.Join(dir, "api", "README.md")}},
		},
		Order: []string{"api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2 (README.md excluded as a doc)", result.FilesScanned)
	}
}

func TestScan_GoImport(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "api", "handler.go"), "package api\n\nimport (\n\t\"fmt\"\n)\n\nfunc f() { fmt.Println(\"x\") }\n")

	m := &manifest.Manifest{
		Version: "1",
		Components: map[string]*manifest.Component{
			"api": {Name: "api", Path: []string{filepath.Join(dir, "api")}},
		},
		Order: []string{"api"},
	}

	result, err := Scan(m)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Edges) != 0 {
		t.Errorf("Edges = %+v, want none (stdlib package is a bare external)", result.Edges)
	}
}
