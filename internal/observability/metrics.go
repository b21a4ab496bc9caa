package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "session",
			Name:      "connects_total",
			Help:      "Connect attempts by result.",
		},
		[]string{"result"},
	)
	sessionReconnectAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "session",
			Name:      "reconnect_attempts_total",
			Help:      "Connect attempts made from the reconnect loop.",
		},
	)
	sessionTransportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "session",
			Name:      "transport_errors_total",
			Help:      "Mid-session transport failures.",
		},
		[]string{"op", "kind"},
	)
	sessionLines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "session",
			Name:      "lines_received_total",
			Help:      "Non-empty lines received from the peer.",
		},
	)
	poseValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "pose",
			Name:      "validations_total",
			Help:      "Pose validation outcomes.",
		},
		[]string{"outcome"},
	)
	actuatorMoves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "actuator",
			Name:      "moves_total",
			Help:      "Actuator moves by success.",
		},
		[]string{"success"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posebridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests on the metrics listener.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "posebridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionConnects,
			sessionReconnectAttempts,
			sessionTransportErrors,
			sessionLines,
			poseValidations,
			actuatorMoves,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordConnect(result string) {
	RegisterMetrics()
	sessionConnects.WithLabelValues(result).Inc()
}

func RecordReconnectAttempt() {
	RegisterMetrics()
	sessionReconnectAttempts.Inc()
}

func RecordTransportError(op, kind string) {
	RegisterMetrics()
	sessionTransportErrors.WithLabelValues(op, kind).Inc()
}

func RecordLineReceived() {
	RegisterMetrics()
	sessionLines.Inc()
}

func RecordValidation(outcome string) {
	RegisterMetrics()
	poseValidations.WithLabelValues(outcome).Inc()
}

func RecordActuation(success bool) {
	RegisterMetrics()
	actuatorMoves.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
