package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VARP_CONFIG", "")
	t.Setenv("VARP_MANIFEST_PATH", "")
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.ManifestPath != "./component-manifest.yaml" {
		t.Errorf("ManifestPath = %q, want default", cfg.Workspace.ManifestPath)
	}
	if cfg.Transport.Mode != "stdio" {
		t.Errorf("Transport.Mode = %q, want stdio", cfg.Transport.Mode)
	}
	if cfg.Freshness.ToleranceSeconds != 5 {
		t.Errorf("Freshness.ToleranceSeconds = %d, want 5", cfg.Freshness.ToleranceSeconds)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "varp.toml")
	toml := `
[workspace]
manifest_path = "./custom-manifest.yaml"

[freshness]
tolerance_seconds = 30
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.ManifestPath != "./custom-manifest.yaml" {
		t.Errorf("ManifestPath = %q, want custom-manifest.yaml", cfg.Workspace.ManifestPath)
	}
	if cfg.Freshness.ToleranceSeconds != 30 {
		t.Errorf("ToleranceSeconds = %d, want 30", cfg.Freshness.ToleranceSeconds)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "varp.toml")
	if err := os.WriteFile(path, []byte(`[workspace]
manifest_path = "./file-manifest.yaml"
`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VARP_MANIFEST_PATH", "./env-manifest.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.ManifestPath != "./env-manifest.yaml" {
		t.Errorf("ManifestPath = %q, want env override", cfg.Workspace.ManifestPath)
	}
}

func TestValidate_RejectsUnknownTransportMode(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Mode: "carrier-pigeon"}, Workspace: WorkspaceConfig{ManifestPath: "x"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unrecognized transport mode")
	}
}

func TestValidate_RejectsEmptyManifestPath(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Mode: "stdio"}, Workspace: WorkspaceConfig{ManifestPath: ""}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an empty manifest path")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
