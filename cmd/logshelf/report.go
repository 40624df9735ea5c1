package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		topN       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the journal",
		Long:  "Print the time span, level distribution, flagged entries, and the most repeated message signatures.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), journalPath(), topN, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&topN, "top", 5, "number of repeated signatures to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runReport(w io.Writer, path string, top int, jsonOutput bool) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}

	rep := report.Build(path, store.Entries(), top)
	if jsonOutput {
		return rep.WriteJSON(w)
	}
	rep.WriteText(w)
	return nil
}
