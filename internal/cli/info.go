package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	infoOpencode bool
	infoClaude   bool
	infoCursor   bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print varp configuration and MCP client setup snippets",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case infoOpencode:
			printClientConfig("opencode.json", opencodeSnippet)
		case infoClaude:
			printClientConfig("claude_desktop_config.json", claudeSnippet)
		case infoCursor:
			printClientConfig(".cursor/mcp.json", cursorSnippet)
		default:
			printGeneralInfo()
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoOpencode, "opencode", false, "show OpenCode MCP client configuration")
	infoCmd.Flags().BoolVar(&infoClaude, "claude", false, "show Claude Desktop MCP client configuration")
	infoCmd.Flags().BoolVar(&infoCursor, "cursor", false, "show Cursor MCP client configuration")
	rootCmd.AddCommand(infoCmd)
}

func printGeneralInfo() {
	fmt.Printf(`varp %s — component-manifest-driven planning and enforcement

varp parses a component manifest (component-manifest.yaml) and XML task
plans, and serves the resulting scheduling, validation, and enforcement
primitives as both MCP tools and CLI subcommands.

TRANSPORT MODES

  stdio (default)
    Communicates over stdin/stdout using JSON-RPC 2.0. Used when launched
    as a subprocess by an MCP client.

  http
    Runs as a standalone HTTP server (MCP Streamable HTTP transport,
    spec 2025-03-26).

    Endpoint:      POST /mcp
    Health check:  GET /health
    Default port:  21452 (VARP_PORT)

ENVIRONMENT VARIABLES

  VARP_CONFIG                       Path to a varp.toml config file
  VARP_MANIFEST_PATH                Path to component-manifest.yaml
  VARP_TRANSPORT                    stdio (default) or http
  VARP_PORT, VARP_HOST              HTTP listen address
  VARP_CORS_ORIGINS                 Comma-separated allowed origins
  VARP_LOG_LEVEL                    debug, info, warn, error (default: info)
  VARP_FRESHNESS_TOLERANCE_SECONDS  Stored in config (default: 5); checks use a fixed 5s

TOOLS (18)

  Manifest (3):    parse_manifest, resolve_docs, invalidation_cascade
  Freshness (2):   check_freshness, ack_freshness
  Plan (3):        parse_plan, validate_plan, diff_plan
  Scheduling (1):  schedule
  Enforcement (2): verify_capabilities, derive_restart_strategy
  Imports (1):     infer_imports
  Links (1):       scan_links
  Touches (2):     suggest_touches, scoped_tests
  Env (1):         verify_env
  Composite (2):   health, coupling

RESOURCES (3)

  varp://manifest-format    Component manifest YAML reference
  varp://hazard-rules       RAW/WAW/WAR hazard classification reference
  varp://tool-reference     Full tool catalogue

PROMPTS (1)

  varp-guide   Usage guide for the manifest/plan/scheduler workflow

MCP CLIENT CONFIGURATION

  Run 'varp info --opencode', '--claude', or '--cursor' for a ready-to-paste
  client config snippet.
`, versionString())
}

func printClientConfig(filename, snippet string) {
	fmt.Printf("Add the following to %s:\n\n%s\n", filename, snippet)
}

func versionString() string {
	if Version != "dev" {
		return Version
	}
	return "(dev build)"
}

const opencodeSnippet = `{
  "mcp": {
    "varp": {
      "type": "local",
      "command": ["varp", "serve"]
    }
  }
}`

const claudeSnippet = `{
  "mcpServers": {
    "varp": {
      "command": "varp",
      "args": ["serve"]
    }
  }
}`

const cursorSnippet = `{
  "mcpServers": {
    "varp": {
      "command": "varp",
      "args": ["serve"]
    }
  }
}`
