package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

var (
	websocketConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "websocket",
		Name:      "connections",
		Help:      "Currently open WebSocket connections.",
	}, []string{"network"})

	websocketRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "websocket",
		Name:      "requests_total",
		Help:      "Count of client requests by method and status.",
	}, []string{"network", "method", "status"})

	websocketRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "websocket",
		Name:      "request_duration_seconds",
		Help:      "Duration of client request handling.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "method", "status"})

	websocketDroppedSubscribersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "websocket",
		Name:      "dropped_subscribers_total",
		Help:      "Count of subscribers dropped for falling behind.",
	}, []string{"network"})
)

// Websocket tracks the query and notification surface.
type Websocket struct {
	network model.Network
}

// NewWebsocket constructs a websocket metrics collector.
func NewWebsocket(network model.Network) *Websocket {
	if network == "" {
		network = "unknown"
	}
	return &Websocket{network: network}
}

// ConnectionOpened marks one accepted connection.
func (m Websocket) ConnectionOpened() {
	websocketConnections.WithLabelValues(string(m.network)).Inc()
}

// ConnectionClosed marks one finished connection.
func (m Websocket) ConnectionClosed() {
	websocketConnections.WithLabelValues(string(m.network)).Dec()
}

// ObserveRequest records one handled client request.
func (m Websocket) ObserveRequest(method string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	websocketRequestsTotal.WithLabelValues(string(m.network), method, status).Inc()
	websocketRequestDuration.WithLabelValues(string(m.network), method, status).Observe(time.Since(started).Seconds())
}

// ObserveDroppedSubscriber counts one subscriber disconnected on backlog.
func (m Websocket) ObserveDroppedSubscriber() {
	websocketDroppedSubscribersTotal.WithLabelValues(string(m.network)).Inc()
}
