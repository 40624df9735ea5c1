package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every entry and save the empty journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd.OutOrStdout(), journalPath())
		},
	}

	return cmd
}

func runClear(out io.Writer, path string) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}

	dropped := store.Total()
	store.Clear()

	if err := saveStore(store, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Journal cleared (%d entries dropped).\n", dropped)
	return nil
}
