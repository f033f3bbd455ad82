package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return NewWithRegisterer("test", prometheus.NewRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("GET", "/api/v1/invite/:token", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/invite/:token", 404, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/invite/:token", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/invite/:token", "4xx")))
}

func TestRealtimeMetrics(t *testing.T) {
	m := newTestMetrics()

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))

	m.RecordWSEvent("card:delete", nil)
	m.RecordWSEvent("card:delete", errors.New("not found"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSEventsTotal.WithLabelValues("card:delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSEventsTotal.WithLabelValues("card:delete", "error")))

	m.RecordBroadcast("note:update")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomBroadcastsTotal.WithLabelValues("note:update")))
}

func TestInviteMetrics(t *testing.T) {
	m := newTestMetrics()

	m.RecordInvite("accept", nil)
	m.RecordNotification(false)
	m.RecordNotification(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvitesTotal.WithLabelValues("accept", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InviteNotificationsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InviteNotificationsTotal.WithLabelValues("sent")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ConnectionOpened()
		m.ConnectionClosed()
		m.RecordWSEvent("joinBoard", nil)
		m.RecordBroadcast("card:delete")
		m.RecordInvite("create", nil)
		m.RecordNotification(true)
		m.RecordRateLimited("invite")
	})
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{301, "3xx"},
		{403, "4xx"},
		{503, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCodeToString(tt.code))
	}
}
