package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// LoadVaultTxIndex materializes the txid-to-vault map used to resolve a
// transaction's vault without walking the prev-tx chain.
func (r *Repository) LoadVaultTxIndex(ctx context.Context, network model.Network) (map[chainhash.Hash]chainhash.Hash, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_vault_tx_index", network, err, start)
	}()

	const query = `
SELECT txid, vault_txid
FROM vault_transactions FINAL
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return nil, fmt.Errorf("query vault tx index: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	index := make(map[chainhash.Hash]chainhash.Hash)
	for rows.Next() {
		var txidStr, vaultStr string
		if err = rows.Scan(&txidStr, &vaultStr); err != nil {
			return nil, fmt.Errorf("scan vault tx index: %w", err)
		}
		txid, err := chainhash.NewHashFromStr(txidStr)
		if err != nil {
			return nil, fmt.Errorf("decode txid: %w", err)
		}
		vaultID, err := chainhash.NewHashFromStr(vaultStr)
		if err != nil {
			return nil, fmt.Errorf("decode vault txid: %w", err)
		}
		index[*txid] = *vaultID
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault tx index: %w", err)
	}
	return index, nil
}
