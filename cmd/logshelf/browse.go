package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/buffers"
	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/journal"
	"github.com/logshelf/logshelf/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	var (
		level  string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the journal in a full-screen viewer",
		Long:  "Scroll, filter by level, and search the journal interactively. With --follow, new entries stream in as they are appended to the file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(journalPath(), level, follow)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "show only entries with this level")
	cmd.Flags().BoolVar(&follow, "follow", false, "tail the journal for new entries")

	return cmd
}

func runBrowse(path, level string, follow bool) error {
	store, err := loadStore(path)
	if err != nil {
		return err
	}

	ring := buffers.NewEntryRing(0)
	for _, e := range store.Entries() {
		ring.Push(e)
	}

	// the tailer starts at end of file, so the ring backfill above does
	// not repeat
	var tailer *journal.Tailer
	done := make(chan struct{})
	if follow {
		tailer, err = journal.NewTailer(path)
		if err != nil {
			return cli.NewIOError(err.Error())
		}
		go func() {
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					entries, err := tailer.Tail()
					if err != nil {
						continue
					}
					for _, e := range entries {
						ring.Push(e)
					}
				case <-done:
					return
				}
			}
		}()
	}

	p := tea.NewProgram(tui.NewModel(ring, path, level, follow), tea.WithAltScreen())
	_, runErr := p.Run()

	close(done)
	if tailer != nil {
		_ = tailer.Close()
	}
	if runErr != nil {
		return fmt.Errorf("browse: %w", runErr)
	}
	return nil
}
