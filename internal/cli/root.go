// Package cli wires varp's cobra command tree: an MCP server (serve), a
// doctor/info/upgrade trio, and one subcommand per core operation so the
// same functionality is reachable from a shell as from an MCP client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set by main via ldflags.
	Version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "varp",
	Short: "Component-manifest-driven planning and enforcement for multi-agent codebases",
	Long: `varp parses a component manifest and XML task plans, and exposes the
resulting scheduling, validation, and enforcement primitives over both the
Model Context Protocol and a plain CLI.

Core commands:
  varp serve              Run the MCP server (stdio by default, --http for HTTP)
  varp doctor             Run every health check against the manifest
  varp schedule           Compute hazards, waves, and the critical path for a plan
  varp validate-plan      Check a plan against the manifest and its own hazards

Run 'varp <command> --help' for details on any subcommand.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $VARP_CONFIG, ./varp.toml, ~/.config/varp/varp.toml)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("varp version %s\n", Version))
}

func exitError(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}
