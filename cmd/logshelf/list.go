package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), journalPath())
		},
	}

	return cmd
}

func runList(out io.Writer, path string) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}
	printEntries(out, store.Entries())
	return nil
}
