package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/pipeline"
	"github.com/sells-group/district-etl/internal/report"
	"github.com/sells-group/district-etl/internal/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [final.csv]",
	Short: "Summarize a final district table",
	Long: `Reads a final table written by "run" (the configured output path by
default) and prints districts won per candidate, column means, and the
income standard deviation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(cfg.Output.ReportFormat)
		if err != nil {
			return err
		}
		candidates, err := clean.ParseCandidates(cfg.Vote.Candidates)
		if err != nil {
			return err
		}

		path := cfg.OutputPath()
		if len(args) == 1 {
			path = args[0]
		}

		final, err := pipeline.LoadFinal(cmd.Context(), path)
		if err != nil {
			return err
		}

		s := summary.Summarize(final, candidates)
		if format == report.FormatText {
			_, err := io.WriteString(cmd.OutOrStdout(), report.FormatSummary(s))
			return err
		}
		return report.Render(cmd.OutOrStdout(), &report.Report{Summary: s}, format)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
