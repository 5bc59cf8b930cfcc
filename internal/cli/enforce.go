package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/plan"
	"github.com/varp-dev/varp/internal/tools"
)

var (
	verifyCapReads  string
	verifyCapWrites string
)

var verifyCapabilitiesCmd = &cobra.Command{
	Use:   "verify-capabilities <manifest-path> <diff-paths...>",
	Short: "Check that changed paths fall within a task's declared touches",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewVerifyCapabilities(), map[string]any{
			"manifest_path": args[0],
			"reads":         splitCSV(verifyCapReads),
			"writes":        splitCSV(verifyCapWrites),
			"diff_paths":    args[1:],
		})
	},
}

var (
	restartCompleted  string
	restartDispatched string
)

var deriveRestartStrategyCmd = &cobra.Command{
	Use:   "derive-restart-strategy <plan-path> <failed-task-id>",
	Short: "Decide whether a failed task needs retry, cascade restart, or escalation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading plan: %w", err)
		}
		failed := p.Task(args[1])
		if failed == nil {
			return fmt.Errorf("no task %q in plan", args[1])
		}
		return runTool(tools.NewDeriveRestartStrategy(), map[string]any{
			"failed_task":         *failed,
			"all_tasks":           p.Tasks,
			"completed_task_ids":  splitCSV(restartCompleted),
			"dispatched_task_ids": splitCSV(restartDispatched),
		})
	},
}

func init() {
	verifyCapabilitiesCmd.Flags().StringVar(&verifyCapReads, "reads", "", "comma-separated component names read")
	verifyCapabilitiesCmd.Flags().StringVar(&verifyCapWrites, "writes", "", "comma-separated component names written")

	deriveRestartStrategyCmd.Flags().StringVar(&restartCompleted, "completed", "", "comma-separated completed task ids")
	deriveRestartStrategyCmd.Flags().StringVar(&restartDispatched, "dispatched", "", "comma-separated dispatched-but-incomplete task ids")

	rootCmd.AddCommand(verifyCapabilitiesCmd, deriveRestartStrategyCmd)
}
