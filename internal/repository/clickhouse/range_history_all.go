package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// RangeHistoryAll returns every vault event whose oracle timestamp falls in
// the half-open range [start, end), ordered by chain position.
func (r *Repository) RangeHistoryAll(ctx context.Context, network model.Network, start, end *uint32) ([]model.VaultEvent, error) {
	began := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("range_history_all", network, err, began)
	}()

	query := `
SELECT` + vaultEventColumns + `
FROM vault_transactions FINAL
WHERE network = ? AND oracle_timestamp >= ? AND oracle_timestamp < ?
ORDER BY height, block_pos`

	from, to := timestampBounds(start, end)
	rows, err := r.conn.Query(ctx, query, string(network), from, to)
	if err != nil {
		return nil, fmt.Errorf("query range history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	events, err := scanVaultEvents(rows, network)
	if err != nil {
		return nil, err
	}
	return events, nil
}
