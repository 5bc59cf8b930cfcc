package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var verifyEnvCmd = &cobra.Command{
	Use:   "verify-env <manifest-path> <components...>",
	Short: "Check that every env var required by the given components is set",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewVerifyEnv(), map[string]any{
			"manifest_path": args[0],
			"components":    args[1:],
		})
	},
}

func init() {
	rootCmd.AddCommand(verifyEnvCmd)
}
