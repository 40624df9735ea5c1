// Package report aggregates a journal into a printable health summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/logshelf/logshelf/internal/journal"
)

// Report holds aggregated information about a journal file.
type Report struct {
	File       string       `json:"file"`
	Total      int          `json:"total"`
	First      string       `json:"first,omitempty"`
	Last       string       `json:"last,omitempty"`
	Levels     []LevelCount `json:"levels,omitempty"`
	Flagged    int          `json:"flagged"`
	Signatures []Signature  `json:"top_messages,omitempty"`
}

// LevelCount summarizes one level's contribution.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Signature represents a normalized message pattern.
type Signature struct {
	Signature string `json:"signature"`
	Count     int    `json:"count"`
	Example   string `json:"example"`
}

// Build aggregates entries into a report. top caps the message signature
// list; zero or negative disables it. Entries are assumed to be in journal
// order, so First and Last come straight from the ends of the slice.
func Build(file string, entries []journal.Entry, top int) *Report {
	r := &Report{File: file, Total: len(entries)}
	if len(entries) == 0 {
		return r
	}

	r.First = entries[0].Timestamp
	r.Last = entries[len(entries)-1].Timestamp

	levelAcc := make(map[string]int)
	sigAcc := make(map[string]*Signature)
	var sigOrder []string

	for _, e := range entries {
		levelAcc[e.Level]++
		if IsError(e.Message) {
			r.Flagged++
		}

		if top > 0 {
			sig := NormalizeMessage(e.Message)
			s := sigAcc[sig]
			if s == nil {
				s = &Signature{Signature: sig, Example: e.Message}
				sigAcc[sig] = s
				sigOrder = append(sigOrder, sig)
			}
			s.Count++
		}
	}

	r.Levels = make([]LevelCount, 0, len(levelAcc))
	for level, n := range levelAcc {
		r.Levels = append(r.Levels, LevelCount{Level: level, Count: n})
	}
	sort.Slice(r.Levels, func(i, j int) bool {
		if r.Levels[i].Count != r.Levels[j].Count {
			return r.Levels[i].Count > r.Levels[j].Count
		}
		return r.Levels[i].Level < r.Levels[j].Level
	})

	if top > 0 {
		sigs := make([]Signature, 0, len(sigAcc))
		for _, sig := range sigOrder {
			sigs = append(sigs, *sigAcc[sig])
		}
		sort.SliceStable(sigs, func(i, j int) bool {
			return sigs[i].Count > sigs[j].Count
		})
		if len(sigs) > top {
			sigs = sigs[:top]
		}
		r.Signatures = sigs
	}

	return r
}

// textWriter wraps an io.Writer and captures the first error.
type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *textWriter) println(args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintln(tw.w, args...)
}

// WriteText renders the report as human-readable text.
func (r *Report) WriteText(w io.Writer) {
	tw := &textWriter{w: w}

	tw.printf("Journal: %s\n", r.File)
	tw.printf("Entries: %s\n", formatCount(r.Total))
	if r.First != "" {
		if r.Last != "" && r.Last != r.First {
			tw.printf("Period:  %s -> %s\n", r.First, r.Last)
		} else {
			tw.printf("Period:  %s\n", r.First)
		}
	}

	if len(r.Levels) > 0 {
		tw.println()
		tw.println("Levels:")
		for _, lc := range r.Levels {
			pct := float64(0)
			if r.Total > 0 {
				pct = float64(lc.Count) / float64(r.Total) * 100
			}
			tw.printf("  %-10s %6s  (%.1f%%)  %s\n",
				lc.Level, formatCount(lc.Count), pct, levelBar(lc.Count, r.Total))
		}
	}

	if r.Flagged > 0 {
		tw.println()
		tw.printf("Flagged: %s messages with error-indicating text\n", formatCount(r.Flagged))
	}

	if len(r.Signatures) > 0 {
		tw.println()
		tw.println("Top messages:")
		for i, s := range r.Signatures {
			tw.printf("  %d. %-60s %s\n", i+1, s.Signature, formatCount(s.Count))
			if s.Example != s.Signature {
				tw.printf("     e.g. %s\n", s.Example)
			}
		}
	}
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

const barWidth = 20

// levelBar renders a proportional block bar for one level.
func levelBar(count, total int) string {
	if total <= 0 || count <= 0 {
		return ""
	}
	n := count * barWidth / total
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// formatCount formats large numbers with comma separators.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}
