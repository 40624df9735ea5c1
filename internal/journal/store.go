package journal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Store owns an in-memory sequence of entries in insertion order. It does
// no locking of its own; anything that shares a store across goroutines
// must serialize every call behind a single lock (see internal/server).
type Store struct {
	entries []Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load reads a journal file and appends its well-formed lines to the
// store. A missing file is not an error and leaves the store unchanged.
// Load never clears, so loading two files (or one file twice) accumulates.
// Malformed lines are skipped without comment.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		entry, ok := ParseLine(sc.Text())
		if !ok {
			continue // skip malformed lines
		}
		s.entries = append(s.entries, entry)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	return nil
}

// Save writes every entry to path, one line each, replacing whatever was
// there before. An empty store produces an empty file.
func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, e := range s.entries {
		if _, err := w.WriteString(e.Line() + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("write journal: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}

// Add appends a new entry stamped with the current wall-clock time. Level
// and message are stored as given, empty or not; Add never fails.
func (s *Store) Add(level, message string) {
	s.entries = append(s.entries, Entry{
		Timestamp: time.Now().Format(TimeLayout),
		Level:     level,
		Message:   message,
	})
}

// Append adds an entry exactly as given, keeping its timestamp. Surfaces
// that receive already-stamped entries (the HTTP API, merge) use this
// instead of Add.
func (s *Store) Append(e Entry) {
	s.entries = append(s.entries, e)
}

// FilterLevel returns the entries whose level matches, ignoring case.
// Order is preserved and the store is not modified.
func (s *Store) FilterLevel(level string) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if strings.EqualFold(e.Level, level) {
			out = append(out, e)
		}
	}
	return out
}

// Search returns the entries whose message contains query, ignoring case.
// An empty query matches every entry.
func (s *Store) Search(query string) []Entry {
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Message), q) {
			out = append(out, e)
		}
	}
	return out
}

// Stats counts entries per distinct level. Grouping is case-sensitive:
// "ERROR" and "error" are separate buckets. Iteration order of the result
// is unspecified; presentation layers sort the keys.
func (s *Store) Stats() map[string]int {
	stats := make(map[string]int)
	for _, e := range s.entries {
		stats[e.Level]++
	}
	return stats
}

// Total reports the number of entries held.
func (s *Store) Total() int {
	return len(s.entries)
}

// Recent returns the last n entries in insertion order. n <= 0 yields
// nothing; n beyond the total yields everything.
func (s *Store) Recent(n int) []Entry {
	if n <= 0 {
		return nil
	}
	start := 0
	if len(s.entries) > n {
		start = len(s.entries) - n
	}
	out := make([]Entry, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// Clear drops every entry. The journal file is untouched until the next
// Save.
func (s *Store) Clear() {
	s.entries = nil
}

// Entries returns a copy of the full sequence for display and export.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
