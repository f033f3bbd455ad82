package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Realtime metrics
	WSConnections       prometheus.Gauge
	WSEventsTotal       *prometheus.CounterVec
	RoomBroadcastsTotal *prometheus.CounterVec

	// Invite metrics
	InvitesTotal             *prometheus.CounterVec
	InviteNotificationsTotal *prometheus.CounterVec

	RateLimitedTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registry.
func New(namespace string) *Metrics {
	return NewWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a Metrics instance registered on reg.
func NewWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "flowspace"
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ws",
				Name:      "connections",
				Help:      "Current number of open websocket connections",
			},
		),
		WSEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ws",
				Name:      "events_total",
				Help:      "Inbound websocket events by outcome",
			},
			[]string{"event", "result"}, // result: ok, error
		),
		RoomBroadcastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "room",
				Name:      "broadcasts_total",
				Help:      "Events fanned out to board rooms",
			},
			[]string{"event"},
		),

		InvitesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "invites",
				Name:      "total",
				Help:      "Invite state machine transitions",
			},
			[]string{"action", "result"}, // action: create, reuse, accept
		),
		InviteNotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "invites",
				Name:      "notifications_total",
				Help:      "Invite email notifications by outcome",
			},
			[]string{"result"}, // sent, failed
		),

		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ConnectionOpened and ConnectionClosed track open websocket connections.
func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.WSConnections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.WSConnections.Dec()
	}
}

// RecordWSEvent records an inbound socket event.
func (m *Metrics) RecordWSEvent(event string, err error) {
	if m == nil {
		return
	}
	m.WSEventsTotal.WithLabelValues(event, resultLabel(err)).Inc()
}

// RecordBroadcast records one room fan-out.
func (m *Metrics) RecordBroadcast(event string) {
	if m != nil {
		m.RoomBroadcastsTotal.WithLabelValues(event).Inc()
	}
}

// RecordInvite records an invite transition.
func (m *Metrics) RecordInvite(action string, err error) {
	if m == nil {
		return
	}
	m.InvitesTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

// RecordNotification records an invite email attempt.
func (m *Metrics) RecordNotification(sent bool) {
	if m == nil {
		return
	}
	result := "failed"
	if sent {
		result = "sent"
	}
	m.InviteNotificationsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited records a rejected request.
func (m *Metrics) RecordRateLimited(scope string) {
	if m != nil {
		m.RateLimitedTotal.WithLabelValues(scope).Inc()
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
