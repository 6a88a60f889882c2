package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/db"
	"github.com/sells-group/district-etl/internal/export"
	"github.com/sells-group/district-etl/internal/pipeline"
	"github.com/sells-group/district-etl/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean, merge, and export all four sources",
	Long: `Loads the vote, population, revenue, and education files, cleans each,
merges them into the final district table, writes it as CSV (and to any
configured database sinks), and prints a run report.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := report.ParseFormat(cfg.Output.ReportFormat)
		if err != nil {
			return err
		}
		opts, err := pipeline.OptionsFromConfig(cfg)
		if err != nil {
			return err
		}

		if cfg.Output.SQLitePath != "" {
			opts.Sinks = append(opts.Sinks, export.NewSQLite(cfg.Output.SQLitePath, cfg.Output.Table))
		}
		if cfg.Output.PostgresURL != "" {
			pool, err := db.Connect(ctx, cfg.Output.PostgresURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			opts.Sinks = append(opts.Sinks, export.NewPostgres(pool, cfg.Output.Table))
		}

		rep, err := pipeline.Run(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", rep.RunID),
			zap.String("output", rep.Output),
		)
		return report.Render(cmd.OutOrStdout(), rep, format)
	},
}

func init() {
	runCmd.Flags().String("output", "", "final CSV path (overrides output.path)")
	runCmd.Flags().String("encoding", "", "CSV encoding: utf-8-sig or utf-8 (overrides output.encoding)")
	runCmd.Flags().String("sqlite", "", "also write the final table to this SQLite file")
	runCmd.Flags().String("postgres-url", "", "also write the final table to this PostgreSQL database")
	runCmd.Flags().String("table", "", "database table name for sinks (overrides output.table)")
	rootCmd.AddCommand(runCmd)
}
