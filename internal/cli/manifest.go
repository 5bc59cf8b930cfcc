package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var parseManifestCmd = &cobra.Command{
	Use:   "parse-manifest <manifest-path>",
	Short: "Load the component manifest and report any dependency cycles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewParseManifest(), map[string]any{
			"manifest_path": args[0],
		})
	},
}

var (
	resolveDocsReads  string
	resolveDocsWrites string
)

var resolveDocsCmd = &cobra.Command{
	Use:   "resolve-docs <manifest-path>",
	Short: "Resolve docs relevant to a set of reads/writes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewResolveDocs(), map[string]any{
			"manifest_path": args[0],
			"reads":         splitCSV(resolveDocsReads),
			"writes":        splitCSV(resolveDocsWrites),
		})
	},
}

var invalidationCascadeChanged string

var invalidationCascadeCmd = &cobra.Command{
	Use:   "invalidation-cascade <manifest-path>",
	Short: "Compute every component reachable from a changed set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewInvalidationCascade(), map[string]any{
			"manifest_path": args[0],
			"changed":       splitCSV(invalidationCascadeChanged),
		})
	},
}

func init() {
	resolveDocsCmd.Flags().StringVar(&resolveDocsReads, "reads", "", "comma-separated component names read")
	resolveDocsCmd.Flags().StringVar(&resolveDocsWrites, "writes", "", "comma-separated component names written")

	invalidationCascadeCmd.Flags().StringVar(&invalidationCascadeChanged, "changed", "", "comma-separated component names that changed")
	invalidationCascadeCmd.MarkFlagRequired("changed")

	rootCmd.AddCommand(parseManifestCmd, resolveDocsCmd, invalidationCascadeCmd)
}
