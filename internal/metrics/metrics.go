package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trailmarket",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trailmarket",
			Name:      "ws_connections",
			Help:      "Currently open websocket connections.",
		},
	)

	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trailmarket",
			Name:      "ws_events_total",
			Help:      "Websocket events received by type.",
		},
		[]string{"event"},
	)

	notificationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trailmarket",
			Name:      "notifications_created_total",
			Help:      "Notifications recorded.",
		},
	)

	ledgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trailmarket",
			Name:      "ledger_entries_total",
			Help:      "Ledger entries recorded by status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, wsConnections, wsEvents, notificationsCreated, ledgerEntries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func WSConnected()    { wsConnections.Inc() }
func WSDisconnected() { wsConnections.Dec() }

// IncWSEvent counts an inbound websocket event by type.
func IncWSEvent(event string) {
	wsEvents.WithLabelValues(event).Inc()
}

func IncNotifications(n int) {
	notificationsCreated.Add(float64(n))
}

func IncLedgerEntry(status string) {
	ledgerEntries.WithLabelValues(status).Inc()
}
