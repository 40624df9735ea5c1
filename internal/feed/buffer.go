package feed

import (
	"sync"

	"github.com/logshelf/logshelf/internal/journal"
)

// Batch holds a failed push attempt for later retry.
type Batch struct {
	Entries []journal.Entry
	Size    int // estimated byte size
}

// Buffer is a bounded FIFO queue that drops oldest batches when full.
type Buffer struct {
	mu      sync.Mutex
	batches []Batch
	size    int
	cap     int
	drops   int64
}

// NewBuffer creates a buffer with the given byte capacity.
func NewBuffer(maxBytes int) *Buffer {
	return &Buffer{cap: maxBytes}
}

// Add appends a batch, evicting oldest batches if over capacity.
func (b *Buffer) Add(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// evict oldest until there is room
	for b.size+batch.Size > b.cap && len(b.batches) > 0 {
		b.size -= b.batches[0].Size
		b.batches = b.batches[1:]
		b.drops++
	}

	b.batches = append(b.batches, batch)
	b.size += batch.Size
}

// Drain returns all buffered batches and clears the buffer.
func (b *Buffer) Drain() []Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.batches) == 0 {
		return nil
	}

	out := b.batches
	b.batches = nil
	b.size = 0
	return out
}

// Size returns the current total byte usage.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Len returns the number of buffered batches.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batches)
}

// Drops returns the total number of batches dropped due to overflow.
func (b *Buffer) Drops() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drops
}

// EstimateBatchSize returns a rough serialized byte size for a batch.
func EstimateBatchSize(entries []journal.Entry) int {
	size := 0
	for _, e := range entries {
		size += len(e.Timestamp) + len(e.Level) + len(e.Message) + 32 // JSON framing overhead
	}
	return size
}
