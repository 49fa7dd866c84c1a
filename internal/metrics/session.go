package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

var (
	sessionMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "p2p_session",
		Name:      "messages_total",
		Help:      "Count of wire messages by direction and command.",
	}, []string{"network", "direction", "command"})

	sessionDisconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "p2p_session",
		Name:      "disconnects_total",
		Help:      "Count of session terminations by reason.",
	}, []string{"network", "reason"})
)

// Session tracks wire traffic of the peer connection.
type Session struct {
	network model.Network
}

// NewSession constructs a session metrics collector.
func NewSession(network model.Network) *Session {
	if network == "" {
		network = "unknown"
	}
	return &Session{network: network}
}

// ObserveMessage counts one sent or received message.
func (m Session) ObserveMessage(direction, command string) {
	sessionMessagesTotal.WithLabelValues(string(m.network), direction, command).Inc()
}

// ObserveDisconnect counts one session termination.
func (m Session) ObserveDisconnect(reason string) {
	sessionDisconnectsTotal.WithLabelValues(string(m.network), reason).Inc()
}
