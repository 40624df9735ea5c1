package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <level>",
		Short: "Print entries with a given level",
		Long:  "Print the entries whose level matches, ignoring case. Order is preserved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.OutOrStdout(), journalPath(), args[0])
		},
	}

	return cmd
}

func runFilter(out io.Writer, path, level string) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}
	printEntries(out, store.FilterLevel(strings.TrimSpace(level)))
	return nil
}
