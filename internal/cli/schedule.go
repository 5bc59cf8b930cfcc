package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/plan"
	"github.com/varp-dev/varp/internal/tools"
)

var scheduleMode string

var scheduleCmd = &cobra.Command{
	Use:   "schedule <plan-path>",
	Short: "Compute hazards, waves, and the critical path for a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading plan: %w", err)
		}
		return runTool(tools.NewSchedule(), map[string]any{
			"tasks": p.Tasks,
			"mode":  scheduleMode,
		})
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleMode, "mode", "all", "waves, critical_path, hazards, or all")
	rootCmd.AddCommand(scheduleCmd)
}
