package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	activeRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Number of registered rooms",
		},
	)

	signalsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_relayed_total",
			Help: "Signaling messages forwarded between peers",
		},
		[]string{"type"},
	)

	signalsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signals_dropped_total",
			Help: "Signaling messages with no resolvable destination",
		},
	)

	notificationsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications appended to the inbox store",
		},
	)

	notificationsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_pruned_total",
			Help: "Notifications dropped by retention pruning",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func IncrementActiveRooms() {
	activeRooms.Inc()
}

func DecrementActiveRooms() {
	activeRooms.Dec()
}

func RecordSignalRelayed(eventType string) {
	signalsRelayed.WithLabelValues(eventType).Inc()
}

func RecordSignalDropped() {
	signalsDropped.Inc()
}

func RecordNotificationPublished() {
	notificationsPublished.Inc()
}

func RecordNotificationsPruned(n int) {
	notificationsPruned.Add(float64(n))
}
