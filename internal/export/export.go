// Package export writes journal entries to external formats for analytics
// tooling (DuckDB, pandas, spreadsheets).
package export

import (
	"fmt"

	"github.com/logshelf/logshelf/internal/journal"
)

// Format identifies the output format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "parquet":
		return FormatParquet, nil
	case "csv":
		return FormatCSV, nil
	case "jsonl":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format %q: expected parquet, csv, or jsonl", s)
	}
}

// RecordWriter writes journal entries to an output format.
type RecordWriter interface {
	Write(journal.Entry) error
	Close() error
}

// NewWriter creates a RecordWriter for path in the given format. A jsonl
// path ending in .zst is zstd-compressed on the way out; parquet carries
// its own internal compression and csv stays plain.
func NewWriter(path string, format Format) (RecordWriter, error) {
	switch format {
	case FormatParquet:
		return newParquetWriter(path)
	case FormatCSV:
		return newCSVWriter(path)
	case FormatJSONL:
		return newJSONLWriter(path)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Write writes every entry to path in the given format and reports how
// many records landed.
func Write(path string, format Format, entries []journal.Entry) (int, error) {
	w, err := NewWriter(path, format)
	if err != nil {
		return 0, fmt.Errorf("create writer: %w", err)
	}

	var written int
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			_ = w.Close()
			return written, fmt.Errorf("write record: %w", err)
		}
		written++
	}

	if err := w.Close(); err != nil {
		return written, fmt.Errorf("close writer: %w", err)
	}
	return written, nil
}
