package journal

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Tailer follows a journal file, emitting entries as lines are appended by
// other writers. A journal is rewritten in place on save, so the tailer
// watches for truncation and starts over from the top when the file
// shrinks, the way tail -F treats a replaced file.
type Tailer struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial string
}

// NewTailer opens the journal and seeks to the end. A missing file is not
// an error; the tailer picks it up from the top once it appears.
func NewTailer(path string) (*Tailer, error) {
	t := &Tailer{path: path}
	if err := t.open(true); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return t, nil
}

// Tail reads any new complete lines, skipping malformed ones. It returns
// nil, nil when no new data is available. Partial trailing lines are held
// back until their newline arrives.
func (t *Tailer) Tail() ([]Entry, error) {
	if t.file == nil {
		if err := t.open(false); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
	}

	fi, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.reset()
			return nil, nil
		}
		return nil, err
	}
	if fi.Size() < t.offset {
		// rewritten in place; everything in the file counts as new
		t.reset()
		if err := t.open(false); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
	}

	var entries []Entry
	for {
		line, err := t.reader.ReadString('\n')
		t.offset += int64(len(line))
		if err != nil {
			if err == io.EOF {
				t.partial += line
				break
			}
			return entries, err
		}
		full := strings.TrimRight(t.partial+line, "\r\n")
		t.partial = ""
		entry, ok := ParseLine(full)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close closes the underlying file.
func (t *Tailer) Close() error {
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}

func (t *Tailer) open(seekEnd bool) error {
	f, err := os.Open(t.path)
	if err != nil {
		return err
	}
	t.offset = 0
	if seekEnd {
		n, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			_ = f.Close()
			return err
		}
		t.offset = n
	}
	t.file = f
	t.reader = bufio.NewReader(f)
	t.partial = ""
	return nil
}

func (t *Tailer) reset() {
	if t.file != nil {
		_ = t.file.Close()
	}
	t.file = nil
	t.reader = nil
	t.offset = 0
	t.partial = ""
}
