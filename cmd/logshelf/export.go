package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/export"
	"github.com/logshelf/logshelf/internal/journal"
)

func newExportCmd() *cobra.Command {
	var (
		formatStr  string
		outPath    string
		level      string
		contains   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal to parquet, CSV, or JSONL",
		Long:  "Convert journal entries to external formats for analytics tooling (DuckDB, pandas, spreadsheets). A .zst suffix on a jsonl output compresses it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.OutOrStdout(), journalPath(), formatStr, outPath, level, contains, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "output format: parquet, csv, jsonl (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (required)")
	cmd.Flags().StringVar(&level, "level", "", "only export entries with this level")
	cmd.Flags().StringVar(&contains, "contains", "", "only export entries whose message contains this text")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output summary as JSON")
	_ = cmd.MarkFlagRequired("format")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(w io.Writer, path, formatStr, outPath, level, contains string, jsonOutput bool) error {
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}

	store, err := loadStore(path)
	if err != nil {
		return err
	}

	entries := store.Entries()
	if level != "" {
		entries = keepEntries(entries, func(e journal.Entry) bool {
			return strings.EqualFold(e.Level, level)
		})
	}
	if contains != "" {
		q := strings.ToLower(contains)
		entries = keepEntries(entries, func(e journal.Entry) bool {
			return strings.Contains(strings.ToLower(e.Message), q)
		})
	}

	written, err := export.Write(outPath, format, entries)
	if err != nil {
		return cli.NewIOError(err.Error())
	}

	var size int64
	if fi, err := os.Stat(outPath); err == nil {
		size = fi.Size()
	}

	if jsonOutput {
		return json.NewEncoder(w).Encode(map[string]any{
			"source":  path,
			"format":  formatStr,
			"output":  outPath,
			"records": written,
			"bytes":   size,
		})
	}

	_, _ = fmt.Fprintf(os.Stderr, "Exported: %d entries -> %s (%s)\n", written, outPath, formatBytes(size))
	return nil
}

func keepEntries(entries []journal.Entry, keep func(journal.Entry) bool) []journal.Entry {
	var out []journal.Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
