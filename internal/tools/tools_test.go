package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/varp-dev/varp/internal/mcp"
)

// writeManifest writes the given manifest body to disk as a fixture and
// returns its path, mirroring the layout internal/manifest's own tests use.
func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "component-manifest.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture manifest: %v", err)
	}
	return path
}

// decodeResult unmarshals a successful JSONResult's text content into dst.
func decodeResult(t *testing.T, res *mcp.ToolsCallResult, dst any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("result is an error: %s", res.Content[0].Text)
	}
	if len(res.Content) != 1 {
		t.Fatalf("Content = %+v, want exactly one block", res.Content)
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), dst); err != nil {
		t.Fatalf("decoding result JSON: %v\n%s", err, res.Content[0].Text)
	}
}
