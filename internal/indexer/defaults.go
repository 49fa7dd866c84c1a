package indexer

import "time"

const (
	// reconnectBase and reconnectCap bound the redial backoff; each failed
	// attempt doubles the delay, jittered by ±25%.
	reconnectBase = 1 * time.Second
	reconnectCap  = 60 * time.Second

	// headerPollInterval paces getheaders requests once the tip is synced.
	headerPollInterval = 10 * time.Second

	// persistRetries bounds retries of a failed block persist before the
	// indexing loop gives up and exits non-zero.
	persistRetries    = 5
	persistRetryDelay = 2 * time.Second

	// parseWorkerCount parallelizes transaction decoding within one block.
	parseWorkerCount = 4

	// headerFlushSize and headerFlushInterval shape background header
	// persistence; headerFlushRPS caps store writes per second.
	headerFlushSize     = 2000
	headerFlushInterval = 5 * time.Second
	headerFlushRPS      = 10

	defaultBatchSize = 500
)
