package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/export"
	"github.com/sells-group/district-etl/internal/pipeline"
	"github.com/sells-group/district-etl/internal/report"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <source>",
	Short: "Clean a single source and report what changed",
	Long: `Runs one cleaner (vote, population, revenue, or education) on its
configured file and prints the cleaning statistics. With --output the
cleaned table is also written as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := report.ParseFormat(cfg.Output.ReportFormat)
		if err != nil {
			return err
		}
		opts, err := pipeline.OptionsFromConfig(cfg)
		if err != nil {
			return err
		}

		c, err := clean.NewRegistry(opts.Candidates).Get(args[0])
		if err != nil {
			return err
		}

		path := opts.Inputs[c.Name()]
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			path = file
		}

		res, err := pipeline.LoadSource(ctx, c, path)
		if err != nil {
			return eris.Wrapf(err, "clean %s", c.Name())
		}

		rep := &report.Report{
			Inputs:  []report.Input{{Source: c.Name(), Path: path}},
			Sources: []clean.Stats{res.Stats},
		}
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			if err := export.WriteFile(out, res.Table, opts.Encoding); err != nil {
				return err
			}
			rep.Output = out
			rep.Encoding = opts.Encoding
		}
		return report.Render(cmd.OutOrStdout(), rep, format)
	},
}

func init() {
	cleanCmd.Flags().String("file", "", "source file to clean instead of the configured one")
	cleanCmd.Flags().String("output", "", "write the cleaned table to this CSV")
	rootCmd.AddCommand(cleanCmd)
}
