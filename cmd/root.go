package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "district-etl",
	Short: "Taiwan district election data pipeline",
	Long:  "Cleans district-level vote, population, revenue, and education data, merges it into one analytical table, and summarizes it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("base-dir", "", "directory holding the source files (overrides data.base_dir)")
	rootCmd.PersistentFlags().String("format", "", "report format: text, json, or yaml (overrides output.report_format)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides log.level)")
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	overrides := map[string]*string{
		"base-dir":     &c.Data.BaseDir,
		"format":       &c.Output.ReportFormat,
		"log-level":    &c.Log.Level,
		"output":       &c.Output.Path,
		"encoding":     &c.Output.Encoding,
		"sqlite":       &c.Output.SQLitePath,
		"postgres-url": &c.Output.PostgresURL,
		"table":        &c.Output.Table,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
