package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/config"
	"github.com/logshelf/logshelf/internal/journal"
)

// Build metadata, set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg holds file and environment defaults. Flags override it per command
// through applyConfigDefaults.
var cfg *config.Config

func main() {
	if err := execute(); err != nil {
		cli.FormatError(os.Stderr, err, false)
		os.Exit(cli.ExitCode(err))
	}
}

func execute() error {
	cfg = config.Load()

	root := &cobra.Command{
		Use:           "logshelf",
		Short:         "Journal for timestamped log entries",
		Long:          "Keep a pipe-delimited log journal: add, filter, search, and summarize entries. Run without a subcommand for the interactive menu.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "journal file (default "+journal.DefaultFile+")")

	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newFilterCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newRecentCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newPullCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newFeedCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd())

	return root.Execute()
}
