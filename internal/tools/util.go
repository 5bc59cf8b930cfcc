// Package tools wraps the core manifest/plan/scheduler/enforcement
// packages as MCP tools: one file per row of spec.md §6's operation table,
// each a thin struct implementing mcp.Tool. None of these hold state
// beyond what a single call needs — there is no client to construct them
// with, unlike the teacher's graph-backed tools.
package tools

import (
	"fmt"

	"github.com/varp-dev/varp/internal/manifest"
	"github.com/varp-dev/varp/internal/mcp"
)

// loadManifest is the one-liner every tool below uses once it has a
// manifest_path string out of its own params struct.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest_path is required")
	}
	return manifest.Load(path)
}

func invalidParams(err error) (*mcp.ToolsCallResult, error) {
	return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
}

func toolError(err error) (*mcp.ToolsCallResult, error) {
	return mcp.ErrorResult(err.Error()), nil
}
