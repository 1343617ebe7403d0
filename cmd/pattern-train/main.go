package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pattern-train",
		Short: "Offline maintenance of section-detection pattern tables",
		Long: `pattern-train folds reviewed detection results back into a pattern table and
writes a new versioned YAML artifact. The import server loads the artifact with
--patterns and can hot-reload it with --watch-patterns.

Example:
  pattern-train improve --analysis reviewed.yaml --output patterns.yaml
  pattern-train validate patterns.yaml
  pattern-train show patterns.yaml --section RECOMMENDATIONS`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(improveCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(showCmd())
	return root
}

// loadBase reads a pattern artifact, or the built-in table when path is empty
func loadBase(path string) (*patterns.Set, error) {
	if path == "" {
		return patterns.DefaultSet(), nil
	}
	return patterns.LoadFile(path)
}

func improveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Update pattern confidences and frequencies from reviewed observations",
		Long: `Read an analysis file of per-pattern hit/miss observations, update the matching
patterns, add new patterns with enough hits, prune patterns whose confidence falls
below the minimum and recompute section statistics.

The analysis file is YAML:

  source: q3-review
  observations:
    - section: RECOMMENDATIONS
      text: plan of care
      hits: 6
      misses: 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath, _ := cmd.Flags().GetString("base")
			analysisPath, _ := cmd.Flags().GetString("analysis")
			output, _ := cmd.Flags().GetString("output")
			newVersion, _ := cmd.Flags().GetString("set-version")
			asJSON, _ := cmd.Flags().GetBool("json")

			opts := patterns.DefaultImproveOptions()
			opts.Version = newVersion
			opts.MinHits, _ = cmd.Flags().GetInt("min-hits")
			opts.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
			opts.LearningRate, _ = cmd.Flags().GetFloat64("learning-rate")

			base, err := loadBase(basePath)
			if err != nil {
				return err
			}
			analysis, err := patterns.LoadAnalysis(analysisPath)
			if err != nil {
				return err
			}

			next, report, err := patterns.Improve(base, analysis, opts)
			if err != nil {
				return err
			}
			if err := patterns.WriteFile(output, next); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Version string `json:"version"`
					Output  string `json:"output"`
					patterns.ImproveReport
				}{next.Version, output, report})
			}

			fmt.Fprintf(out, "Wrote %s (version %s, from %s)\n", output, next.Version, base.Version)
			fmt.Fprintf(out, "  Updated: %d\n  Added:   %d\n  Pruned:  %d\n", report.Updated, report.Added, report.Pruned)
			if len(report.Sections) > 0 {
				fmt.Fprintf(out, "  Sections: %s\n", strings.Join(report.Sections, ", "))
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "  Skipped %s\n", s)
			}
			return nil
		},
	}

	defaults := patterns.DefaultImproveOptions()
	cmd.Flags().String("base", "", "Pattern artifact to start from (built-in table when empty)")
	cmd.Flags().StringP("analysis", "a", "", "Analysis YAML file with observations (required)")
	cmd.Flags().StringP("output", "o", "patterns.yaml", "Output artifact path")
	cmd.Flags().String("set-version", "", "Version for the new table (default: base version + \"+1\")")
	cmd.Flags().Int("min-hits", defaults.MinHits, "Hits required before an unseen pattern is added")
	cmd.Flags().Float64("min-confidence", defaults.MinConfidence, "Prune patterns below this confidence")
	cmd.Flags().Float64("learning-rate", defaults.LearningRate, "Weight of observed precision against the old confidence")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("analysis")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a pattern artifact loads and compiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := patterns.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := set.Compile(); err != nil {
				return err
			}

			count := 0
			for _, section := range set.SectionTypes() {
				count += len(set.PatternsFor(section))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (version %s, %d sections, %d patterns)\n",
				args[0], set.Version, len(set.SectionTypes()), count)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a pattern table (the built-in table when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, _ := cmd.Flags().GetString("section")
			format, _ := cmd.Flags().GetString("format")

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			set, err := loadBase(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				view := set
				if section != "" {
					view, err = sectionView(set, section)
					if err != nil {
						return err
					}
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(view); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				return showText(cmd, set, section)
			default:
				return fmt.Errorf("unsupported format: %s (use text or yaml)", format)
			}
		},
	}

	cmd.Flags().StringP("section", "s", "", "Only show one section type")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, yaml")
	return cmd
}

// sectionView returns a copy of set reduced to one section
func sectionView(set *patterns.Set, section string) (*patterns.Set, error) {
	list, ok := set.Patterns[section]
	if !ok {
		return nil, fmt.Errorf("unknown section %q", section)
	}
	view := &patterns.Set{
		Version:  set.Version,
		Sections: []string{section},
		Patterns: map[string][]patterns.Pattern{section: list},
	}
	if stats, ok := set.Stats[section]; ok {
		view.Stats = map[string]patterns.SectionStats{section: stats}
	}
	if cues, ok := set.Context[section]; ok {
		view.Context = map[string]patterns.ContextPatterns{section: cues}
	}
	return view, nil
}

func showText(cmd *cobra.Command, set *patterns.Set, only string) error {
	if err := set.Compile(); err != nil {
		return err
	}
	if only != "" && !set.HasSection(only) {
		return fmt.Errorf("unknown section %q", only)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pattern table %s\n", set.Version)
	for _, section := range set.SectionTypes() {
		if only != "" && section != only {
			continue
		}
		stats := set.StatsFor(section)
		fmt.Fprintf(out, "\n%s (min %.2f, max %.2f, avg %.2f)\n", section, stats.Min, stats.Max, stats.Avg)

		list := append([]patterns.CompiledPattern(nil), set.PatternsFor(section)...)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Frequency > list[j].Frequency })
		for _, p := range list {
			kind := ""
			if p.Regex {
				kind = " (regex)"
			}
			fmt.Fprintf(out, "  %-40s %.2f  x%d%s\n", p.Text, p.Confidence, p.Frequency, kind)
		}

		before, after := set.ContextFor(section)
		for _, c := range before {
			fmt.Fprintf(out, "  before: %s %.2f\n", c.Text, c.Confidence)
		}
		for _, c := range after {
			fmt.Fprintf(out, "  after:  %s %.2f\n", c.Text, c.Confidence)
		}
	}
	return nil
}
