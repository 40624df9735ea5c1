package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/journal"
)

func newMergeCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "merge <journal> [<journal>...]",
		Short: "Fold other journals into this one",
		Long:  "Load the configured journal, then each source in order, and write the combined entries out. Malformed lines are dropped on the way through.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outPath
			if out == "" {
				out = journalPath()
			}
			return runMerge(cmd.OutOrStdout(), journalPath(), args, out)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output journal (default: the configured journal)")

	return cmd
}

func runMerge(w io.Writer, basePath string, sources []string, outPath string) error {
	store := journal.New()
	if err := store.Load(basePath); err != nil {
		return cli.NewIOError(err.Error())
	}

	// Load never clears, so each source appends in order.
	for _, src := range sources {
		if _, err := os.Stat(src); err != nil {
			return cli.NewNotFoundError(fmt.Sprintf("source journal %s: %v", src, err))
		}
		if err := store.Load(src); err != nil {
			return cli.NewIOError(err.Error())
		}
	}

	if err := saveStore(store, outPath); err != nil {
		return err
	}
	fmt.Fprintf(w, "Merged: %d sources -> %s (%d entries)\n", len(sources), outPath, store.Total())
	return nil
}
