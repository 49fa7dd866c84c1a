package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// ActionHistory aggregates volumes of one action into fixed-width oracle
// timestamp buckets.
func (r *Repository) ActionHistory(ctx context.Context, network model.Network, action model.VaultAction, bucketSeconds uint32) ([]model.ActionVolume, error) {
	began := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("action_history", network, err, began)
	}()

	if bucketSeconds == 0 {
		return nil, fmt.Errorf("bucket width must be positive")
	}

	const query = `
SELECT
	toUInt32(intDiv(oracle_timestamp, ?) * ?) AS timestamp_start,
	sum(unit_volume) AS unit_volume,
	sum(btc_volume) AS btc_volume
FROM vault_transactions FINAL
WHERE network = ? AND action = ?
GROUP BY timestamp_start
ORDER BY timestamp_start`

	rows, err := r.conn.Query(ctx, query, bucketSeconds, bucketSeconds, string(network), action.String())
	if err != nil {
		return nil, fmt.Errorf("query action history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var buckets []model.ActionVolume
	for rows.Next() {
		var bucket model.ActionVolume
		if err = rows.Scan(&bucket.TimestampStart, &bucket.UnitVolume, &bucket.BTCVolume); err != nil {
			return nil, fmt.Errorf("scan action bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action history: %w", err)
	}
	return buckets, nil
}
