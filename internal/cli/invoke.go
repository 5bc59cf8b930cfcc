package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/varp-dev/varp/internal/mcp"
)

// runTool marshals params, runs tool against them, and prints the result's
// text content. It mirrors exactly what the MCP transport does with a
// tools/call request, so CLI output matches what an MCP client would see.
func runTool(tool mcp.Tool, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}
	result, err := tool.Execute(context.Background(), raw)
	if err != nil {
		return err
	}
	for _, block := range result.Content {
		fmt.Println(block.Text)
	}
	if result.IsError {
		exitError(tool.Name() + " failed")
	}
	return nil
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
