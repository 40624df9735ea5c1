// Package snapshot packs a journal file into a single zstd-compressed
// snapshot and restores it, validating the payload on the way back in.
package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/logshelf/logshelf/internal/journal"
)

// Info summarizes one pack or unpack run.
type Info struct {
	Entries int   // well-formed journal lines seen
	Skipped int   // malformed lines carried through untouched
	Raw     int64 // uncompressed payload bytes
	Packed  int64 // snapshot file bytes
}

// Pack compresses the journal at src into a snapshot at dst. The payload
// is copied byte for byte, so a later Unpack reproduces the journal
// exactly, malformed lines included. Entry counts are informational.
func Pack(src, dst string) (Info, error) {
	var info Info

	in, err := os.Open(src)
	if err != nil {
		return info, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return info, fmt.Errorf("create snapshot: %w", err)
	}

	zw, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return info, fmt.Errorf("create zstd writer: %w", err)
	}

	counter := &countingWriter{w: zw}
	if err := copyLines(in, counter, &info); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return info, fmt.Errorf("pack journal: %w", err)
	}
	info.Raw = counter.n

	if err := zw.Close(); err != nil {
		_ = out.Close()
		return info, fmt.Errorf("close zstd writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return info, fmt.Errorf("close snapshot: %w", err)
	}

	fi, err := os.Stat(dst)
	if err == nil {
		info.Packed = fi.Size()
	}
	return info, nil
}

// Unpack restores the snapshot at src to a journal file at dst. The
// decompressed payload must look like a journal: at least one line has to
// parse unless the snapshot is empty. Restores never merge; dst is
// replaced wholesale.
func Unpack(src, dst string) (Info, error) {
	var info Info

	in, err := os.Open(src)
	if err != nil {
		return info, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = in.Close() }()

	if fi, err := in.Stat(); err == nil {
		info.Packed = fi.Size()
	}

	zr, err := zstd.NewReader(in)
	if err != nil {
		return info, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return info, fmt.Errorf("create journal: %w", err)
	}

	counter := &countingWriter{w: out}
	if err := copyLines(zr, counter, &info); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return info, fmt.Errorf("unpack snapshot: %w", err)
	}
	info.Raw = counter.n

	if err := out.Close(); err != nil {
		return info, fmt.Errorf("close journal: %w", err)
	}

	if info.Raw > 0 && info.Entries == 0 {
		_ = os.Remove(dst)
		return info, fmt.Errorf("snapshot payload is not a journal: no line parsed")
	}
	return info, nil
}

// copyLines streams r to w unchanged while counting journal lines.
func copyLines(r io.Reader, w io.Writer, info *Info) error {
	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if _, ok := journal.ParseLine(line); ok {
			info.Entries++
		} else {
			info.Skipped++
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
