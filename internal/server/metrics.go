package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the journal server.
type Metrics struct {
	EntriesAdded        prometheus.Counter
	EntriesByLevel      *prometheus.CounterVec
	ClearsTotal         prometheus.Counter
	JournalEntries      prometheus.Gauge
	ActiveConnections   prometheus.Gauge
	PushDuration        prometheus.Histogram
	AuditRotations      prometheus.Counter
	AuditRotationErrors prometheus.Counter
}

// NewMetrics creates and registers all server metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logshelf_entries_added_total",
			Help: "Total journal entries accepted over HTTP",
		}),
		EntriesByLevel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logshelf_entries_by_level_total",
			Help: "Total accepted entries by level",
		}, []string{"level"}),
		ClearsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logshelf_clears_total",
			Help: "Total journal clear requests",
		}),
		JournalEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logshelf_journal_entries",
			Help: "Current number of entries in the journal",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logshelf_active_connections",
			Help: "Current active HTTP connections",
		}),
		PushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logshelf_push_duration_seconds",
			Help:    "Duration of entry ingestion request handling",
			Buckets: prometheus.DefBuckets,
		}),
		AuditRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logshelf_audit_rotations_total",
			Help: "Total audit log segment rotations",
		}),
		AuditRotationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logshelf_audit_rotation_errors_total",
			Help: "Total failed audit log rotations",
		}),
	}
	reg.MustRegister(
		m.EntriesAdded,
		m.EntriesByLevel,
		m.ClearsTotal,
		m.JournalEntries,
		m.ActiveConnections,
		m.PushDuration,
		m.AuditRotations,
		m.AuditRotationErrors,
	)
	return m
}
