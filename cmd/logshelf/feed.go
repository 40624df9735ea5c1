package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/feed"
	"github.com/logshelf/logshelf/internal/journal"
)

func newFeedCmd() *cobra.Command {
	var (
		from      string
		batchSize int
		flushStr  string
		bufferStr string
		insecure  bool
	)

	cmd := &cobra.Command{
		Use:   "feed <target-url>",
		Short: "Tail the journal and push new entries to a logshelf server",
		Long:  "Follow the journal file like tail -F and forward appended entries to a running logshelf server in batches. Failed batches are buffered and retried.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flushEvery, err := time.ParseDuration(flushStr)
			if err != nil {
				return cli.NewUsageError(fmt.Sprintf("invalid --flush-interval: %v", err))
			}
			bufBytes, err := parseByteSize(bufferStr)
			if err != nil {
				return cli.NewUsageError(fmt.Sprintf("invalid --buffer: %v", err))
			}
			path := from
			if path == "" {
				path = journalPath()
			}
			return runFeed(args[0], path, batchSize, flushEvery, int(bufBytes), insecure)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "journal file to tail (default: the configured journal)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "max entries per push")
	cmd.Flags().StringVar(&flushStr, "flush-interval", "500ms", "how often to poll and flush")
	cmd.Flags().StringVar(&bufferStr, "buffer", "8MB", "retry buffer capacity for failed pushes")
	cmd.Flags().BoolVar(&insecure, "insecure-tls", false, "skip TLS certificate verification")

	return cmd
}

func runFeed(target, path string, batchSize int, flushEvery time.Duration, bufBytes int, insecure bool) error {
	tailer, err := journal.NewTailer(path)
	if err != nil {
		return cli.NewIOError(err.Error())
	}
	defer func() { _ = tailer.Close() }()

	var pusher *feed.Pusher
	if insecure {
		pusher = feed.NewTLSPusher(target, true)
	} else {
		pusher = feed.NewPusher(target)
	}

	buf := feed.NewBuffer(bufBytes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
		cancel()
	}()

	var (
		batch  []journal.Entry
		pushed int64
	)

	send := func(ctx context.Context, entries []journal.Entry) {
		if len(entries) == 0 {
			return
		}
		if err := pusher.Push(ctx, entries); err != nil {
			if err == feed.ErrBatchTooLarge {
				fmt.Fprintf(os.Stderr, "batch too large, dropping %d entries\n", len(entries))
				return
			}
			if ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "push error: %v\n", err)
			}
			buf.Add(feed.Batch{Entries: entries, Size: feed.EstimateBatchSize(entries)})
			return
		}
		pushed += int64(len(entries))
	}

	flush := func(ctx context.Context) {
		// buffered batches go first so ordering roughly holds
		for _, b := range buf.Drain() {
			send(ctx, b.Entries)
		}
		if len(batch) > 0 {
			send(ctx, batch)
			batch = nil
		}
	}

	fmt.Fprintf(os.Stderr, "feeding %s -> %s\n", path, target)

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			entries, err := tailer.Tail()
			if err != nil {
				fmt.Fprintf(os.Stderr, "tail: %v\n", err)
				continue
			}
			for _, e := range entries {
				batch = append(batch, e)
				if len(batch) >= batchSize {
					flush(ctx)
				}
			}
			flush(ctx)
		case <-ctx.Done():
			// the signal killed ctx; give the final flush its own deadline
			if entries, err := tailer.Tail(); err == nil {
				batch = append(batch, entries...)
			}
			finalCtx, finalCancel := context.WithTimeout(context.Background(), 5*time.Second)
			flush(finalCtx)
			finalCancel()

			fmt.Fprintf(os.Stderr, "feed stopped: %d entries pushed", pushed)
			if d := buf.Drops(); d > 0 {
				fmt.Fprintf(os.Stderr, ", %d batches dropped", d)
			}
			if n := buf.Len(); n > 0 {
				fmt.Fprintf(os.Stderr, ", %d batches undelivered", n)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		}
	}
}
