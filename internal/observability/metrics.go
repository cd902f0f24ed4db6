package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobchat_backend_requests_total",
			Help: "Total number of REST requests issued to the backend.",
		},
		[]string{"method", "route", "status"},
	)
	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobchat_backend_request_duration_seconds",
			Help:    "Backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	realtimeConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobchat_realtime_connected",
			Help: "Whether the realtime transport connection is up.",
		},
	)
	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobchat_realtime_events_total",
			Help: "Total number of realtime client events.",
		},
		[]string{"event"},
	)
	presencePollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobchat_presence_polls_total",
			Help: "Total number of presence poll attempts.",
		},
		[]string{"outcome"},
	)
	presenceReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobchat_presence_reports_total",
			Help: "Total number of presence reports sent.",
		},
		[]string{"status"},
	)
	relayErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobchat_relay_errors_total",
			Help: "Total number of notification relay failures.",
		},
		[]string{"call"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobchat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		backendRequestsTotal,
		backendRequestDuration,
		realtimeConnected,
		realtimeEventsTotal,
		presencePollsTotal,
		presenceReportsTotal,
		relayErrorsTotal,
		amqpPublishErrorsTotal,
	)
}

// ObserveBackendRequest records one REST round trip. A status of 0 means the
// request never produced a response.
func ObserveBackendRequest(method, route string, status int, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	backendRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func SetRealtimeConnected(up bool) {
	if up {
		realtimeConnected.Set(1)
		return
	}
	realtimeConnected.Set(0)
}

func IncRealtimeEvent(event string) {
	realtimeEventsTotal.WithLabelValues(event).Inc()
}

func IncPresencePoll(outcome string) {
	presencePollsTotal.WithLabelValues(outcome).Inc()
}

func IncPresenceReport(status string) {
	presenceReportsTotal.WithLabelValues(status).Inc()
}

func IncRelayError(call string) {
	relayErrorsTotal.WithLabelValues(call).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
