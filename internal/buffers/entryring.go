// Package buffers holds the bounded in-memory structures shared by the
// server dashboard and the watch view.
package buffers

import (
	"sync"

	"github.com/logshelf/logshelf/internal/journal"
)

const defaultRingSize = 2_000

// EntryRing is a fixed-size circular buffer of journal entries for live
// display. All methods are safe for concurrent use.
type EntryRing struct {
	mu      sync.Mutex
	buf     []journal.Entry
	cap     int
	head    int // next write position
	count   int // entries in buffer (≤ cap)
	version int // monotonic counter for change detection
}

// NewEntryRing creates a ring buffer with the given capacity.
// If cap ≤ 0, defaultRingSize is used.
func NewEntryRing(cap int) *EntryRing {
	if cap <= 0 {
		cap = defaultRingSize
	}
	return &EntryRing{
		buf: make([]journal.Entry, cap),
		cap: cap,
	}
}

// Push adds an entry to the ring. If full, the oldest entry is overwritten.
// Never blocks.
func (r *EntryRing) Push(e journal.Entry) {
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.cap
	if r.count < r.cap {
		r.count++
	}
	r.version++
	r.mu.Unlock()
}

// Snapshot returns a chronological copy of all entries in the ring.
func (r *EntryRing) Snapshot() []journal.Entry {
	r.mu.Lock()
	n := r.count
	if n == 0 {
		r.mu.Unlock()
		return nil
	}

	out := make([]journal.Entry, n)
	start := (r.head - n + r.cap) % r.cap
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%r.cap]
	}
	r.mu.Unlock()
	return out
}

// SnapshotFiltered returns a chronological copy of entries matching the
// predicate.
func (r *EntryRing) SnapshotFiltered(fn func(journal.Entry) bool) []journal.Entry {
	r.mu.Lock()
	n := r.count
	if n == 0 {
		r.mu.Unlock()
		return nil
	}

	var out []journal.Entry
	start := (r.head - n + r.cap) % r.cap
	for i := 0; i < n; i++ {
		e := r.buf[(start+i)%r.cap]
		if fn(e) {
			out = append(out, e)
		}
	}
	r.mu.Unlock()
	return out
}

// Version returns a monotonic counter that increments on every Push.
func (r *EntryRing) Version() int {
	r.mu.Lock()
	v := r.version
	r.mu.Unlock()
	return v
}
