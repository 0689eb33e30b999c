package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_moves_total",
			Help: "Total number of board drag-moves by outcome",
		},
		[]string{"result"},
	)

	leadMoveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_move_commit_duration_seconds",
			Help:    "Duration of the persistence round-trip of a lead move",
			Buckets: prometheus.DefBuckets,
		},
	)

	leadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total number of leads created",
		},
		[]string{"origin"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_events_published_total",
			Help: "Total number of lead events published to the broker",
		},
		[]string{"type", "status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)

	boardSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_sessions_open",
			Help: "Number of open board sessions",
		},
	)
)

// Resultados de um drag-move.
const (
	MoveCommitted = "committed"
	MoveReverted  = "reverted"
	MoveNoop      = "noop"
	MoveRejected  = "rejected"
)

func RecordLeadMove(result string) {
	leadMoves.WithLabelValues(result).Inc()
}

func ObserveMoveCommit(seconds float64) {
	leadMoveDuration.Observe(seconds)
}

func RecordLeadCaptured(origin string) {
	leadsCaptured.WithLabelValues(origin).Inc()
}

func RecordEventPublished(eventType, status string) {
	eventsPublished.WithLabelValues(eventType, status).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

func SetBoardSessions(n int) {
	boardSessions.Set(float64(n))
}
