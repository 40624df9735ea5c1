package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/cloud"
	"github.com/logshelf/logshelf/internal/contextutil"
)

func newPushCmd() *cobra.Command {
	var (
		share      bool
		expiryStr  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "push [s3://bucket/prefix | gs://bucket/prefix]",
		Short: "Upload the journal to cloud storage",
		Long:  "Copy the journal file to S3 or GCS under the given prefix. With --share, print a presigned download URL.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := remoteURL(args)
			if err != nil {
				return err
			}
			expiry, err := time.ParseDuration(expiryStr)
			if err != nil {
				return cli.NewUsageError(fmt.Sprintf("invalid --expiry: %v", err))
			}
			return runPush(cmd.OutOrStdout(), journalPath(), remote, share, expiry, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&share, "share", false, "print a presigned download URL after upload")
	cmd.Flags().StringVar(&expiryStr, "expiry", "1h", "presigned URL lifetime (with --share)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output summary as JSON")

	return cmd
}

func runPush(w io.Writer, path, remote string, share bool, expiry time.Duration, jsonOutput bool) error {
	scheme, bucket, prefix, err := cloud.ParseURL(remote)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}

	ctx, cancel := contextutil.NewRemoteContext(remoteTimeout)
	defer cancel()

	backend, err := cloud.NewBackend(ctx, scheme, bucket)
	if err != nil {
		return cli.NewNetworkError(fmt.Sprintf("connect to %s: %v", scheme, err))
	}

	key, size, err := pushJournal(ctx, backend, path, prefix)
	if err != nil {
		return err
	}

	var shareLink string
	if share {
		shareLink, err = backend.ShareURL(ctx, key, expiry)
		if err != nil {
			return cli.NewNetworkError(fmt.Sprintf("share URL: %v", err))
		}
	}

	dest := fmt.Sprintf("%s://%s/%s", scheme, bucket, key)

	if jsonOutput {
		summary := map[string]any{
			"journal":     path,
			"destination": dest,
			"bytes":       size,
		}
		if shareLink != "" {
			summary["share_url"] = shareLink
		}
		return json.NewEncoder(w).Encode(summary)
	}

	_, _ = fmt.Fprintf(os.Stderr, "Pushed: %s -> %s (%s)\n", path, dest, formatBytes(size))
	if shareLink != "" {
		fmt.Fprintln(w, shareLink)
	}
	return nil
}

// pushJournal uploads the journal file under prefix and returns the object
// key and size.
func pushJournal(ctx context.Context, backend cloud.Backend, path, prefix string) (string, int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", 0, cli.NewIOError(fmt.Sprintf("stat journal: %v", err))
	}
	f, err := os.Open(path)
	if err != nil {
		return "", 0, cli.NewIOError(fmt.Sprintf("open journal: %v", err))
	}
	defer func() { _ = f.Close() }()

	key := cloud.JoinKey(prefix, filepath.Base(path))
	if err := backend.Upload(ctx, key, f, fi.Size()); err != nil {
		return "", 0, cli.NewNetworkError(fmt.Sprintf("upload %s: %v", key, err))
	}
	return key, fi.Size(), nil
}
