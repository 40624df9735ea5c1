// Package server exposes one journal store over HTTP. The store does no
// locking of its own, so every handler serializes access through a single
// mutex and works on copies taken under it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logshelf/logshelf/internal/journal"
)

const maxRequestBytes = 10 << 20 // 10MB

// APIVersion is incremented on breaking changes to the HTTP API.
const APIVersion = 1

// Server is the journal HTTP server.
type Server struct {
	httpSrv *http.Server

	mu    sync.Mutex
	store *journal.Store
	path  string

	metrics    *Metrics
	audit      *AuditLogger
	hooks      *WebhookDispatcher
	adds       atomic.Int64
	activeConn atomic.Int64
	version    string
}

// NewServer creates an HTTP server bound to addr over the given store.
// journalPath is where SaveJournal persists the store. gatherer backs the
// /metrics endpoint; pass the registry the Metrics were registered on, or
// nil for the default registry.
func NewServer(addr string, store *journal.Store, journalPath string, metrics *Metrics, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		store:   store,
		path:    journalPath,
		metrics: metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleAddEntries)
	mux.HandleFunc("DELETE /api/entries", s.handleClear)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// SetAuditLogger attaches an audit logger to the server.
func (s *Server) SetAuditLogger(a *AuditLogger) {
	s.audit = a
}

// SetWebhooks attaches a webhook dispatcher to the server.
func (s *Server) SetWebhooks(d *WebhookDispatcher) {
	s.hooks = d
}

// SetVersion sets the application version reported by /api/version.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Serve accepts connections on a listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpSrv.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// SaveJournal persists the store to the journal file under the server lock.
func (s *Server) SaveJournal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(s.path)
}

// Snapshot is a point-in-time view of the journal used for alerting.
type Snapshot struct {
	Total  int
	Added  int64          // cumulative entries accepted over HTTP
	Levels map[string]int // per-level counts, case-sensitive buckets
}

// StatsSnapshot returns the current journal state for alert evaluation.
func (s *Server) StatsSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Total:  s.store.Total(),
		Added:  s.adds.Load(),
		Levels: s.store.Stats(),
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	s.trackConnOpen()
	defer s.trackConnClose()

	q := r.URL.Query()
	level := q.Get("level")
	query := q.Get("q")
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, fmt.Sprintf("invalid limit: %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	s.mu.Lock()
	entries := s.store.Entries()
	s.mu.Unlock()

	if level != "" {
		kept := entries[:0]
		for _, e := range entries {
			if strings.EqualFold(e.Level, level) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if query != "" {
		lq := strings.ToLower(query)
		kept := entries[:0]
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Message), lq) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	writeJSON(w, entries)
}

func (s *Server) handleAddEntries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.trackConnOpen()
	defer s.trackConnClose()
	defer func() {
		if s.metrics != nil {
			s.metrics.PushDuration.Observe(time.Since(start).Seconds())
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	// the body is a JSONL stream; a single JSON object works too
	var incoming []journal.Entry
	dec := json.NewDecoder(r.Body)
	for dec.More() {
		var e journal.Entry
		if err := dec.Decode(&e); err != nil {
			http.Error(w, fmt.Sprintf("invalid JSON line: %v", err), http.StatusBadRequest)
			return
		}
		incoming = append(incoming, e)
	}

	var byteCount int
	s.mu.Lock()
	for _, e := range incoming {
		if e.Timestamp == "" {
			e.Timestamp = time.Now().Format(journal.TimeLayout)
		}
		s.store.Append(e)
		byteCount += len(e.Message)
	}
	total := s.store.Total()
	s.mu.Unlock()

	s.adds.Add(int64(len(incoming)))
	if s.metrics != nil {
		s.metrics.EntriesAdded.Add(float64(len(incoming)))
		s.metrics.JournalEntries.Set(float64(total))
		for _, e := range incoming {
			s.metrics.EntriesByLevel.WithLabelValues(e.Level).Inc()
		}
	}

	s.audit.Log(AuditRecord{
		Op:         "entries_added",
		Remote:     stripPort(r.RemoteAddr),
		Lines:      len(incoming),
		Bytes:      byteCount,
		DurationMS: time.Since(start).Milliseconds(),
	})
	s.hooks.Fire(WebhookEvent{
		Event:   "entries_added",
		Journal: s.path,
		Detail:  fmt.Sprintf("%d entries", len(incoming)),
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.trackConnOpen()
	defer s.trackConnClose()

	s.mu.Lock()
	removed := s.store.Total()
	s.store.Clear()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ClearsTotal.Inc()
		s.metrics.JournalEntries.Set(0)
	}
	s.audit.Log(AuditRecord{
		Op:     "journal_cleared",
		Remote: stripPort(r.RemoteAddr),
		Lines:  removed,
	})
	s.hooks.Fire(WebhookEvent{
		Event:   "journal_cleared",
		Journal: s.path,
		Detail:  fmt.Sprintf("%d entries removed", removed),
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.trackConnOpen()
	defer s.trackConnClose()

	s.mu.Lock()
	total := s.store.Total()
	levels := s.store.Stats()
	s.mu.Unlock()

	resp := struct {
		Total  int            `json:"total"`
		Levels map[string]int `json:"levels"`
	}{
		Total:  total,
		Levels: levels,
	}
	writeJSON(w, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	v := s.version
	if v == "" {
		v = "dev"
	}
	resp := struct {
		Version string `json:"version"`
		API     int    `json:"api"`
	}{
		Version: v,
		API:     APIVersion,
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) trackConnOpen() {
	n := s.activeConn.Add(1)
	if s.metrics != nil {
		s.metrics.ActiveConnections.Set(float64(n))
	}
}

func (s *Server) trackConnClose() {
	n := s.activeConn.Add(-1)
	if s.metrics != nil {
		s.metrics.ActiveConnections.Set(float64(n))
	}
}

func stripPort(addr string) string {
	if host, _, ok := strings.Cut(addr, ":"); ok {
		return host
	}
	return addr
}
