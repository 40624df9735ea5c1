package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Print entries whose message contains text",
		Long:  "Case-insensitive substring search over entry messages.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.OutOrStdout(), journalPath(), args[0])
		},
	}

	return cmd
}

func runSearch(out io.Writer, path, query string) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}
	printEntries(out, store.Search(strings.TrimSpace(query)))
	return nil
}
