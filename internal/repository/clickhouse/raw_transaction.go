package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// GetRawTransaction fetches a stored raw transaction by txid, looking at
// vault transactions first and UNIT phase-1 transactions second. A nil
// result means the transaction is unknown to the store.
func (r *Repository) GetRawTransaction(ctx context.Context, network model.Network, txid chainhash.Hash) ([]byte, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("get_raw_transaction", network, err, start)
	}()

	const query = `
SELECT raw_tx FROM (
	SELECT raw_tx FROM vault_transactions FINAL WHERE network = ? AND txid = ?
	UNION ALL
	SELECT raw_tx FROM unit_transactions FINAL WHERE network = ? AND txid = ?
)
LIMIT 1`

	id := txid.String()
	rows, err := r.conn.Query(ctx, query, string(network), id, string(network), id)
	if err != nil {
		return nil, fmt.Errorf("query raw transaction: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate raw transaction: %w", err)
		}
		return nil, nil
	}
	var raw string
	if err = rows.Scan(&raw); err != nil {
		return nil, fmt.Errorf("scan raw transaction: %w", err)
	}
	return []byte(raw), nil
}
