package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

var (
	indexerHeadersInsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "headers_inserted_total",
		Help:      "Count of header inserts by outcome.",
	}, []string{"network", "status"})

	indexerChainHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "chain_height",
		Help:      "Best known main chain height.",
	}, []string{"network"})

	indexerScannedHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "scanned_height",
		Help:      "Highest fully persisted block height.",
	}, []string{"network"})

	indexerBlocksScannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "blocks_scanned_total",
		Help:      "Count of scanned blocks.",
	}, []string{"network", "status"})

	indexerBlockScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "block_scan_duration_seconds",
		Help:      "Duration of scanning and persisting a single block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	indexerVaultEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "vault_events_total",
		Help:      "Count of extracted vault events by action.",
	}, []string{"network", "action"})

	indexerParseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "parse_errors_total",
		Help:      "Count of vault parse failures by kind.",
	}, []string{"network", "kind"})

	indexerReorgsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "reorgs_total",
		Help:      "Count of observed main chain reorganizations.",
	}, []string{"network"})

	indexerReorgDepth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mutinynet_indexer",
		Subsystem: "indexer",
		Name:      "reorg_depth",
		Help:      "Depth of observed reorganizations.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"network"})
)

// Indexer tracks the sync and scan progress of one network.
type Indexer struct {
	network model.Network
}

// NewIndexer constructs an indexer metrics collector.
func NewIndexer(network model.Network) *Indexer {
	if network == "" {
		network = "unknown"
	}
	return &Indexer{network: network}
}

// ObserveHeaderInsert counts one header insert outcome.
func (m Indexer) ObserveHeaderInsert(status string) {
	indexerHeadersInsertedTotal.WithLabelValues(string(m.network), status).Inc()
}

// SetChainHeight records the best known header height.
func (m Indexer) SetChainHeight(height uint32) {
	indexerChainHeight.WithLabelValues(string(m.network)).Set(float64(height))
}

// SetScannedHeight records the cursor height.
func (m Indexer) SetScannedHeight(height uint32) {
	indexerScannedHeight.WithLabelValues(string(m.network)).Set(float64(height))
}

// ObserveBlockScan records the outcome and duration of one block scan.
func (m Indexer) ObserveBlockScan(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	indexerBlocksScannedTotal.WithLabelValues(string(m.network), status).Inc()
	indexerBlockScanDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveVaultEvent counts one extracted event.
func (m Indexer) ObserveVaultEvent(action string) {
	indexerVaultEventsTotal.WithLabelValues(string(m.network), action).Inc()
}

// ObserveParseError counts one dropped transaction by failure kind.
func (m Indexer) ObserveParseError(kind string) {
	indexerParseErrorsTotal.WithLabelValues(string(m.network), kind).Inc()
}

// ObserveReorg records one reorganization and its depth.
func (m Indexer) ObserveReorg(depth uint32) {
	indexerReorgsTotal.WithLabelValues(string(m.network)).Inc()
	indexerReorgDepth.WithLabelValues(string(m.network)).Observe(float64(depth))
}
