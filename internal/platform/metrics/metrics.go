package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	DocumentsIngested    prometheus.Counter
	CredentialsExtracted prometheus.Counter
	CredentialsStored    prometheus.Counter
	ExtractionLatency    prometheus.Histogram

	VerificationVerdicts *prometheus.CounterVec
	IntegrityFailures    prometheus.Counter
	LedgerErrors         prometheus.Counter

	AttestationsWritten  prometheus.Counter
	AttestationsRejected *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		DocumentsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_documents_ingested_total",
			Help: "Total number of documents processed by the extraction engine",
		}),
		CredentialsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_credentials_extracted_total",
			Help: "Total number of credential records produced by extraction",
		}),
		CredentialsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_credentials_stored_total",
			Help: "Total number of credential records persisted",
		}),
		ExtractionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credanchor_extraction_latency_seconds",
			Help:    "Latency of document extraction in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		VerificationVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credanchor_verification_verdicts_total",
			Help: "Total number of verification verdicts, labeled by status",
		}, []string{"status"}),
		IntegrityFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_integrity_failures_total",
			Help: "Total number of stored hash mismatches detected",
		}),
		LedgerErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_ledger_errors_total",
			Help: "Total number of ledger lookups that failed and degraded the verdict",
		}),
		AttestationsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_attestations_written_total",
			Help: "Total number of attestations created or replaced",
		}),
		AttestationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credanchor_attestations_rejected_total",
			Help: "Total number of rejected attest calls, labeled by reason",
		}, []string{"reason"}),
	}
}

// ObserveExtraction records a document ingestion with its latency and record count.
func (m *Metrics) ObserveExtraction(records int, d time.Duration) {
	m.DocumentsIngested.Inc()
	m.CredentialsExtracted.Add(float64(records))
	m.ExtractionLatency.Observe(d.Seconds())
}

// IncrementVerdict increments the verdict counter for the given status.
func (m *Metrics) IncrementVerdict(status string) {
	m.VerificationVerdicts.WithLabelValues(status).Inc()
}
