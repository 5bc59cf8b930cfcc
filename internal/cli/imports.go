package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var inferImportsCmd = &cobra.Command{
	Use:   "infer-imports <manifest-path>",
	Short: "Infer import edges between components from the import specifiers in their source files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewInferImports(), map[string]any{
			"manifest_path": args[0],
		})
	},
}

var scanLinksMode string

var scanLinksCmd = &cobra.Command{
	Use:   "scan-links <manifest-path>",
	Short: "Scan components for cross-references and report broken ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewScanLinks(), map[string]any{
			"manifest_path": args[0],
			"mode":          scanLinksMode,
		})
	},
}

func init() {
	scanLinksCmd.Flags().StringVar(&scanLinksMode, "mode", "all", "deps, broken, or all")
	rootCmd.AddCommand(inferImportsCmd, scanLinksCmd)
}
