package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent [count]",
		Short: "Print the most recent entries",
		Long:  "Print the last entries in insertion order. A missing or unusable count falls back to the configured default.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := recentCount()
			if len(args) == 1 {
				// junk input falls back to the default rather than erroring
				if v, err := strconv.Atoi(args[0]); err == nil && v >= 0 {
					n = v
				}
			}
			return runRecent(cmd.OutOrStdout(), journalPath(), n)
		},
	}

	return cmd
}

func runRecent(out io.Writer, path string, n int) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}
	printEntries(out, store.Recent(n))
	return nil
}
