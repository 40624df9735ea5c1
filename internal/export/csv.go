package export

import (
	"encoding/csv"
	"os"

	"github.com/logshelf/logshelf/internal/journal"
)

type csvWriter struct {
	file *os.File
	w    *csv.Writer
}

func newCSVWriter(path string) (*csvWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ts", "level", "msg"}); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &csvWriter{file: f, w: w}, nil
}

func (w *csvWriter) Write(e journal.Entry) error {
	return w.w.Write([]string{e.Timestamp, e.Level, e.Message})
}

func (w *csvWriter) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
