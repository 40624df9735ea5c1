// Package shell implements the interactive menu over a journal store.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/logshelf/logshelf/internal/journal"
)

// DefaultRecent is the fallback count for the recent view when the prompt
// gets junk input.
const DefaultRecent = 10

// LineReader supplies one line of user input per call. The production
// implementation wraps a line editor; tests script it.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Options tune shell behavior. The zero value is usable.
type Options struct {
	Recent int                 // recent-view fallback count; 0 means DefaultRecent
	Redact func(string) string // applied to new messages before storing
}

// Shell drives the numbered menu over one store. The journal is loaded
// once up front and saved exactly once when the loop ends, whether by the
// exit choice or by end of input.
type Shell struct {
	store  *journal.Store
	path   string
	in     LineReader
	out    io.Writer
	recent int
	redact func(string) string
}

// New creates a shell bound to store and its journal path.
func New(store *journal.Store, path string, in LineReader, out io.Writer, opts Options) *Shell {
	recent := opts.Recent
	if recent <= 0 {
		recent = DefaultRecent
	}
	return &Shell{
		store:  store,
		path:   path,
		in:     in,
		out:    out,
		recent: recent,
		redact: opts.Redact,
	}
}

// Run loads the journal, then loops over the menu until the user exits.
// A load failure is reported and the shell starts empty. The returned
// error is the save failure, if any.
func (s *Shell) Run() error {
	if err := s.store.Load(s.path); err != nil {
		fmt.Fprintf(s.out, "error loading journal: %v\n", err)
	}

	for {
		s.printMenu()
		choice, err := s.in.ReadLine("Choice: ")
		if err != nil {
			fmt.Fprintln(s.out)
			return s.save()
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.add()
		case "2":
			s.list(s.store.Entries())
		case "3":
			s.filter()
		case "4":
			s.search()
		case "5":
			s.stats()
		case "6":
			s.recentView()
		case "7":
			s.store.Clear()
			fmt.Fprintln(s.out, "Journal cleared.")
		case "8":
			return s.save()
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintf(s.out, `
=== logshelf - %s ===
1. Add entry
2. View all entries
3. Filter by level
4. Search messages
5. Statistics
6. Recent entries
7. Clear journal
8. Save and exit
`, s.path)
}

func (s *Shell) add() {
	level, err := s.in.ReadLine("Level (INFO/WARNING/ERROR): ")
	if err != nil {
		return
	}
	message, err := s.in.ReadLine("Message: ")
	if err != nil {
		return
	}
	message = strings.TrimSpace(message)
	if s.redact != nil {
		message = s.redact(message)
	}
	s.store.Add(strings.ToUpper(strings.TrimSpace(level)), message)
	fmt.Fprintln(s.out, "Entry added.")
}

func (s *Shell) filter() {
	level, err := s.in.ReadLine("Level: ")
	if err != nil {
		return
	}
	s.list(s.store.FilterLevel(strings.TrimSpace(level)))
}

func (s *Shell) search() {
	query, err := s.in.ReadLine("Search for: ")
	if err != nil {
		return
	}
	s.list(s.store.Search(strings.TrimSpace(query)))
}

func (s *Shell) stats() {
	stats := s.store.Stats()
	fmt.Fprintf(s.out, "Total: %d\n", s.store.Total())

	levels := make([]string, 0, len(stats))
	for level := range stats {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(s.out, "  %s: %d\n", level, stats[level])
	}
}

func (s *Shell) recentView() {
	raw, err := s.in.ReadLine(fmt.Sprintf("How many (default %d): ", s.recent))
	if err != nil {
		return
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || n < 0 {
		n = s.recent
	}
	s.list(s.store.Recent(n))
}

func (s *Shell) list(entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "(no entries)")
		return
	}
	for _, e := range entries {
		fmt.Fprintln(s.out, e.String())
	}
}

// save writes the journal and reports the outcome. It is the single exit
// path for Run.
func (s *Shell) save() error {
	if err := s.store.Save(s.path); err != nil {
		fmt.Fprintf(s.out, "error saving journal: %v\n", err)
		return err
	}
	fmt.Fprintf(s.out, "Saved %d entries to %s.\n", s.store.Total(), s.path)
	return nil
}
