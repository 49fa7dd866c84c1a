package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// OverallVolume sums signed volumes over every vault event of the network.
func (r *Repository) OverallVolume(ctx context.Context, network model.Network) (model.OverallVolume, error) {
	began := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("overall_volume", network, err, began)
	}()

	const query = `
SELECT sum(btc_volume) AS btc_volume, sum(unit_volume) AS unit_volume
FROM vault_transactions FINAL
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return model.OverallVolume{}, fmt.Errorf("query overall volume: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var volume model.OverallVolume
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.OverallVolume{}, fmt.Errorf("iterate overall volume: %w", err)
		}
		return volume, nil
	}
	if err = rows.Scan(&volume.BTCVolume, &volume.UnitVolume); err != nil {
		return model.OverallVolume{}, fmt.Errorf("scan overall volume: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.OverallVolume{}, fmt.Errorf("iterate overall volume: %w", err)
	}
	return volume, nil
}
