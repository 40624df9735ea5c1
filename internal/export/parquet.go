package export

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/logshelf/logshelf/internal/journal"
)

const parquetBatchSize = 4096

// parquetEntry is the Parquet schema struct. Timestamps stay strings
// because the journal never parses them.
type parquetEntry struct {
	Ts    string `parquet:"ts"`
	Level string `parquet:"level,dict"`
	Msg   string `parquet:"msg"`
}

type parquetWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[parquetEntry]
	batch  []parquetEntry
}

func newParquetWriter(path string) (*parquetWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := parquet.NewGenericWriter[parquetEntry](f,
		parquet.Compression(&zstd.Codec{}),
	)

	return &parquetWriter{
		file:   f,
		writer: w,
		batch:  make([]parquetEntry, 0, parquetBatchSize),
	}, nil
}

func (w *parquetWriter) Write(e journal.Entry) error {
	w.batch = append(w.batch, parquetEntry{
		Ts:    e.Timestamp,
		Level: e.Level,
		Msg:   e.Message,
	})
	if len(w.batch) >= parquetBatchSize {
		return w.flush()
	}
	return nil
}

func (w *parquetWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	_, err := w.writer.Write(w.batch)
	w.batch = w.batch[:0]
	return err
}

func (w *parquetWriter) Close() error {
	if err := w.flush(); err != nil {
		_ = w.writer.Close()
		_ = w.file.Close()
		return err
	}
	if err := w.writer.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
