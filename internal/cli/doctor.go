package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/composite"
	"github.com/varp-dev/varp/internal/config"
	"github.com/varp-dev/varp/internal/manifest"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run every health check against the manifest",
	Long: `doctor bundles the three health facets into one pass: dependency
cycles, doc freshness, and the lint pass (missing docs/test commands).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		m, err := manifest.Load(cfg.Workspace.ManifestPath)
		if err != nil {
			return err
		}
		result, err := composite.Health(m, composite.HealthAll)
		if err != nil {
			return err
		}
		printDoctorReport(result)
		if !result.Valid {
			exitError("manifest has unresolved dependency cycles")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func printDoctorReport(r *composite.HealthResult) {
	fmt.Printf("%s %s\n", statusGlyph(len(r.Cycles) == 0), colorBold("dependency cycles"))
	for _, c := range r.Cycles {
		fmt.Printf("    %s cycle: %s\n", colorRed("✗"), join(c.Components, " -> "))
	}

	fmt.Printf("%s %s\n", statusGlyph(true), colorBold("doc freshness"))
	for name, fresh := range r.Freshness {
		for _, d := range fresh.Docs {
			glyph := statusGlyph(!d.Stale)
			age := colorDim(humanize.Time(fresh.SourceMaxModified))
			fmt.Printf("    %s %s: %s (source changed %s)\n", glyph, name, d.Path, age)
		}
	}

	fmt.Printf("%s %s\n", statusGlyph(len(r.LintIssues) == 0), colorBold("lint"))
	for _, issue := range r.LintIssues {
		fmt.Printf("    %s %s: %s\n", colorYellow("!"), issue.Component, issue.Message)
	}
}

func join(items []string, sep string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}
