package server

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditRecord captures one auditable server event.
type AuditRecord struct {
	Time       time.Time `json:"time"`
	Op         string    `json:"op"`
	Remote     string    `json:"remote,omitempty"`
	Lines      int       `json:"lines,omitempty"`
	Bytes      int       `json:"bytes,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// AuditLogger writes append-only JSONL audit records. The serve command
// backs it with a rotate.Rotator so the trail stays size-capped.
type AuditLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewAuditLogger creates an audit logger writing to w. The caller owns w
// and closes it after the server shuts down.
func NewAuditLogger(w io.Writer) *AuditLogger {
	return &AuditLogger{enc: json.NewEncoder(w)}
}

// Log stamps and writes one record. Safe to call from multiple goroutines.
// If a is nil, the call is a no-op.
func (a *AuditLogger) Log(rec AuditRecord) {
	if a == nil {
		return
	}
	rec.Time = time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.enc.Encode(rec)
}
