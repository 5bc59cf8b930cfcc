package cli

import (
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/tools"
)

var suggestTouchesCmd = &cobra.Command{
	Use:   "suggest-touches <manifest-path> <file-paths...>",
	Short: "Suggest the reads/writes touches block for a set of changed files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewSuggestTouches(), map[string]any{
			"manifest_path": args[0],
			"file_paths":    args[1:],
		})
	},
}

var (
	scopedTestsReads   string
	scopedTestsWrites  string
	scopedTestsTags    string
	scopedTestsReadTst bool
)

var scopedTestsCmd = &cobra.Command{
	Use:   "scoped-tests <manifest-path>",
	Short: "Resolve the test files and run command covering a set of touches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(tools.NewScopedTests(), map[string]any{
			"manifest_path":      args[0],
			"reads":              splitCSV(scopedTestsReads),
			"writes":             splitCSV(scopedTestsWrites),
			"tags":               splitCSV(scopedTestsTags),
			"include_read_tests": scopedTestsReadTst,
		})
	},
}

func init() {
	scopedTestsCmd.Flags().StringVar(&scopedTestsReads, "reads", "", "comma-separated component names read")
	scopedTestsCmd.Flags().StringVar(&scopedTestsWrites, "writes", "", "comma-separated component names written")
	scopedTestsCmd.Flags().StringVar(&scopedTestsTags, "tags", "", "comma-separated test tags to filter by")
	scopedTestsCmd.Flags().BoolVar(&scopedTestsReadTst, "include-read-tests", false, "also cover tests for read-only components")

	rootCmd.AddCommand(suggestTouchesCmd, scopedTestsCmd)
}
