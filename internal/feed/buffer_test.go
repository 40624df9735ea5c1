package feed

import (
	"testing"

	"github.com/logshelf/logshelf/internal/journal"
)

func TestBuffer_AddAndDrain(t *testing.T) {
	buf := NewBuffer(1024)

	b1 := Batch{Entries: []journal.Entry{{Message: "a"}}, Size: 100}
	b2 := Batch{Entries: []journal.Entry{{Message: "b"}}, Size: 200}
	b3 := Batch{Entries: []journal.Entry{{Message: "c"}}, Size: 300}

	buf.Add(b1)
	buf.Add(b2)
	buf.Add(b3)

	if buf.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", buf.Len())
	}
	if buf.Size() != 600 {
		t.Fatalf("Size() = %d, want 600", buf.Size())
	}

	drained := buf.Drain()
	if len(drained) != 3 {
		t.Fatalf("drained %d batches, want 3", len(drained))
	}
	if drained[0].Entries[0].Message != "a" {
		t.Error("expected FIFO order, first batch mismatch")
	}
	if drained[2].Entries[0].Message != "c" {
		t.Error("expected FIFO order, last batch mismatch")
	}

	if buf.Len() != 0 {
		t.Errorf("Len() after drain = %d, want 0", buf.Len())
	}
	if buf.Size() != 0 {
		t.Errorf("Size() after drain = %d, want 0", buf.Size())
	}
}

func TestBuffer_Overflow(t *testing.T) {
	buf := NewBuffer(500)

	buf.Add(Batch{Entries: []journal.Entry{{Message: "a"}}, Size: 200})
	buf.Add(Batch{Entries: []journal.Entry{{Message: "b"}}, Size: 200})

	if buf.Drops() != 0 {
		t.Fatalf("drops = %d, want 0", buf.Drops())
	}

	// this should evict the first batch (200 + 200 + 200 = 600 > 500)
	buf.Add(Batch{Entries: []journal.Entry{{Message: "c"}}, Size: 200})

	if buf.Drops() != 1 {
		t.Fatalf("drops = %d, want 1", buf.Drops())
	}
	if buf.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", buf.Len())
	}

	drained := buf.Drain()
	if drained[0].Entries[0].Message != "b" {
		t.Error("expected oldest (a) to be evicted, but first is not b")
	}
	if drained[1].Entries[0].Message != "c" {
		t.Error("expected c to be second")
	}
}

func TestBuffer_DrainEmpty(t *testing.T) {
	buf := NewBuffer(1024)
	drained := buf.Drain()
	if drained != nil {
		t.Errorf("expected nil for empty drain, got %d batches", len(drained))
	}
}

func TestBuffer_SingleLargeBatch(t *testing.T) {
	buf := NewBuffer(100)

	// add a small batch first
	buf.Add(Batch{Entries: []journal.Entry{{Message: "small"}}, Size: 50})

	// a batch larger than cap evicts everything and is still added
	buf.Add(Batch{Entries: []journal.Entry{{Message: "large"}}, Size: 200})

	if buf.Drops() != 1 {
		t.Fatalf("drops = %d, want 1 (small batch evicted)", buf.Drops())
	}
	if buf.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", buf.Len())
	}

	drained := buf.Drain()
	if drained[0].Entries[0].Message != "large" {
		t.Error("expected the large batch to be kept")
	}
}

func TestBuffer_SizeTracking(t *testing.T) {
	buf := NewBuffer(1000)

	buf.Add(Batch{Size: 100})
	buf.Add(Batch{Size: 200})
	if buf.Size() != 300 {
		t.Errorf("Size() = %d, want 300", buf.Size())
	}

	buf.Drain()
	if buf.Size() != 0 {
		t.Errorf("Size() after drain = %d, want 0", buf.Size())
	}
}

func TestEstimateBatchSize(t *testing.T) {
	entries := []journal.Entry{
		{Timestamp: "2024-01-15 10:30:00", Level: "INFO", Message: "hello world"},
		{Timestamp: "2024-01-15 10:30:01", Level: "ERROR", Message: "another line"},
	}

	size := EstimateBatchSize(entries)
	// first: 19 + 4 + 11 + 32 = 66
	// second: 19 + 5 + 12 + 32 = 68
	if size != 134 {
		t.Errorf("EstimateBatchSize = %d, want 134", size)
	}
}
