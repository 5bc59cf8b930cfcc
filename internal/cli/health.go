package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var healthMode string

var healthCmd = &cobra.Command{
	Use:   "health <manifest-path>",
	Short: "Report cycles, doc freshness, and lint findings as JSON",
	Long:  `health is the machine-readable counterpart to 'doctor': same data, JSON output.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewHealth(), map[string]any{
			"manifest_path": args[0],
			"mode":          healthMode,
		})
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthMode, "mode", "all", "manifest, freshness, lint, or all")
	rootCmd.AddCommand(healthCmd)
}
