package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	var (
		output  string
		extract bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [archive.zst]",
		Short: "Pack the journal into a zstd snapshot, or restore one",
		Long:  "Snapshot compresses the journal into a single .zst file. With --extract, the named snapshot is restored over the journal instead.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if extract {
				if len(args) != 1 {
					return cli.NewUsageError("--extract needs a snapshot file argument")
				}
				dst := output
				if dst == "" {
					dst = journalPath()
				}
				return runSnapshot(args[0], dst, true)
			}
			if len(args) != 0 {
				return cli.NewUsageError("snapshot takes no arguments unless --extract is set")
			}
			dst := output
			if dst == "" {
				dst = journalPath() + ".zst"
			}
			return runSnapshot(journalPath(), dst, false)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output path (default: <journal>.zst, or the journal when extracting)")
	cmd.Flags().BoolVar(&extract, "extract", false, "restore a snapshot over the journal")

	return cmd
}

func runSnapshot(src, output string, extract bool) error {
	if extract {
		info, err := snapshot.Unpack(src, output)
		if err != nil {
			return cli.NewIOError(err.Error())
		}
		fmt.Fprintf(os.Stderr, "Restored %d entries to %s", info.Entries, output)
		if info.Skipped > 0 {
			fmt.Fprintf(os.Stderr, " (%d malformed lines kept as-is)", info.Skipped)
		}
		fmt.Fprintln(os.Stderr)
		return nil
	}

	info, err := snapshot.Pack(src, output)
	if err != nil {
		return cli.NewIOError(err.Error())
	}
	fmt.Fprintf(os.Stderr, "Snapshot saved to %s (%d entries, %s -> %s)\n",
		output, info.Entries, formatBytes(info.Raw), formatBytes(info.Packed))
	return nil
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
