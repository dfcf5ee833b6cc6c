package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Stock metrics
	StockMovements     *prometheus.CounterVec
	StockRejections    *prometheus.CounterVec
	MovementDuration   prometheus.Histogram
	StockAlerts        *prometheus.CounterVec
	AlertsAcknowledged prometheus.Counter
	PartsCreated       prometheus.Counter

	// Sequence metrics
	SequenceNumbers *prometheus.CounterVec

	// Accounting metrics
	InvoicesIssued    prometheus.Counter
	InvoicesCancelled prometheus.Counter
	InvoiceTotal      prometheus.Histogram
	PaymentsRecorded  *prometheus.CounterVec
	ExpensesRecorded  prometheus.Counter
	SummaryCache      *prometheus.CounterVec

	// Job metrics
	JobTransitions *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBRetries *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthLockouts prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Stock metrics
		StockMovements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_stock_movements_total",
				Help: "Total number of committed stock movements by reason",
			},
			[]string{"reason"},
		),
		StockRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_stock_rejections_total",
				Help: "Total number of rejected stock movements by cause",
			},
			[]string{"cause"},
		),
		MovementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gtledger_stock_movement_duration_seconds",
			Help:    "Duration of stock movement transactions",
			Buckets: prometheus.DefBuckets,
		}),
		StockAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_stock_alerts_total",
				Help: "Total low stock alerts by severity and outcome",
			},
			[]string{"severity", "outcome"},
		),
		AlertsAcknowledged: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_stock_alerts_acknowledged_total",
			Help: "Total number of acknowledged stock alerts",
		}),
		PartsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_parts_created_total",
			Help: "Total number of parts created",
		}),

		// Sequence metrics
		SequenceNumbers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_sequence_numbers_total",
				Help: "Total document numbers committed by prefix",
			},
			[]string{"prefix"},
		),

		// Accounting metrics
		InvoicesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_invoices_issued_total",
			Help: "Total number of invoices issued",
		}),
		InvoicesCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_invoices_cancelled_total",
			Help: "Total number of invoices cancelled",
		}),
		InvoiceTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gtledger_invoice_total",
			Help:    "Invoice totals",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_payments_recorded_total",
				Help: "Total invoice payments by method",
			},
			[]string{"method"},
		),
		ExpensesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_expenses_recorded_total",
			Help: "Total number of expenses recorded",
		}),
		SummaryCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_summary_cache_total",
				Help: "Accounting summary cache lookups by result",
			},
			[]string{"result"},
		),

		// Job metrics
		JobTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_job_transitions_total",
				Help: "Total job status transitions by target status",
			},
			[]string{"status"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gtledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_db_retries_total",
				Help: "Total retried database operations by SQLSTATE",
			},
			[]string{"code"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_auth_attempts_total",
				Help: "Total authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "gtledger_auth_lockouts_total",
			Help: "Total number of accounts locked after failed sign in",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"route"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtledger_events_published_total",
				Help: "Total outbox events handed to the publisher by outcome",
			},
			[]string{"event_type", "outcome"},
		),
	}
}
