package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var checkFreshnessCmd = &cobra.Command{
	Use:   "check-freshness <manifest-path>",
	Short: "Report which attached docs are stale against their source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewCheckFreshness(), map[string]any{
			"manifest_path": args[0],
		})
	},
}

var (
	ackFreshnessComponents string
	ackFreshnessDoc        string
)

var ackFreshnessCmd = &cobra.Command{
	Use:   "ack-freshness <manifest-path>",
	Short: "Record that stale docs for the given components have been reviewed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewAckFreshness(), map[string]any{
			"manifest_path": args[0],
			"components":    splitCSV(ackFreshnessComponents),
			"doc":           ackFreshnessDoc,
		})
	},
}

func init() {
	ackFreshnessCmd.Flags().StringVar(&ackFreshnessComponents, "components", "", "comma-separated component names to acknowledge")
	ackFreshnessCmd.Flags().StringVar(&ackFreshnessDoc, "doc", "", "acknowledge only this doc, by basename (default: every attached doc)")
	ackFreshnessCmd.MarkFlagRequired("components")

	rootCmd.AddCommand(checkFreshnessCmd, ackFreshnessCmd)
}
