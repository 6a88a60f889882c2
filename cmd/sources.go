package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/pipeline"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources and the files they are read from",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := pipeline.OptionsFromConfig(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tPATH\tSTATUS")
		for _, name := range clean.NewRegistry(opts.Candidates).AllNames() {
			path := opts.Inputs[name]
			status := "ok"
			if _, err := os.Stat(path); err != nil {
				status = "missing"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, path, status)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
