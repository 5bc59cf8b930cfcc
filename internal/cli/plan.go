package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var parsePlanCmd = &cobra.Command{
	Use:   "parse-plan <plan-path>",
	Short: "Parse an XML task plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewParsePlan(), map[string]any{
			"path": args[0],
		})
	},
}

var validatePlanCmd = &cobra.Command{
	Use:   "validate-plan <plan-path> <manifest-path>",
	Short: "Check a plan against the manifest and its own hazards",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewValidatePlan(), map[string]any{
			"plan_path":     args[0],
			"manifest_path": args[1],
		})
	},
}

var diffPlanCmd = &cobra.Command{
	Use:   "diff-plan <plan-a> <plan-b>",
	Short: "Diff two plan revisions task by task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewDiffPlan(), map[string]any{
			"plan_a": args[0],
			"plan_b": args[1],
		})
	},
}

func init() {
	rootCmd.AddCommand(parsePlanCmd, validatePlanCmd, diffPlanCmd)
}
