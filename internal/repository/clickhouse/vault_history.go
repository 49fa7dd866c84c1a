package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// VaultHistory returns the events of one vault, identified by its open
// txid, within the optional oracle timestamp range.
func (r *Repository) VaultHistory(ctx context.Context, network model.Network, vaultID chainhash.Hash, start, end *uint32) ([]model.VaultEvent, error) {
	began := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("vault_history", network, err, began)
	}()

	query := `
SELECT` + vaultEventColumns + `
FROM vault_transactions FINAL
WHERE network = ? AND vault_txid = ? AND oracle_timestamp >= ? AND oracle_timestamp < ?
ORDER BY height, block_pos`

	from, to := timestampBounds(start, end)
	rows, err := r.conn.Query(ctx, query, string(network), vaultID.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("query vault history: %w", err)
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
