package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <level> <message...>",
		Short: "Append an entry to the journal",
		Long:  "Stamp a new entry with the current time and save the journal. The message is everything after the level.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.OutOrStdout(), journalPath(), args[0], strings.Join(args[1:], " "))
		},
	}

	return cmd
}

func runAdd(out io.Writer, path, level, message string) error {
	redactor, err := newRedactor()
	if err != nil {
		return err
	}

	store, err := loadStore(path)
	if err != nil {
		return err
	}

	message = strings.TrimSpace(message)
	if redactor != nil {
		message = redactor.Redact(message)
	}
	store.Add(strings.ToUpper(strings.TrimSpace(level)), message)

	if err := saveStore(store, path); err != nil {
		return err
	}
	fmt.Fprintln(out, "Entry added.")
	return nil
}
