package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var couplingMode string

var couplingCmd = &cobra.Command{
	Use:   "coupling <manifest-path>",
	Short: "Report components that change together in git history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewCoupling(), map[string]any{
			"manifest_path": args[0],
			"mode":          couplingMode,
		})
	},
}

func init() {
	couplingCmd.Flags().StringVar(&couplingMode, "mode", "all", "co_change, import_confirmed, or all")
	rootCmd.AddCommand(couplingCmd)
}
