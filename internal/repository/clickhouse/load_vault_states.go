package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// LoadVaultStates reads the materialized latest state of every vault; the
// orchestrator seeds its in-memory vault map from it at boot.
func (r *Repository) LoadVaultStates(ctx context.Context, network model.Network) ([]model.VaultState, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_vault_states", network, err, start)
	}()

	const query = `
SELECT open_txid, balance, oracle_price, oracle_timestamp, liquidation_price, liquidation_hash, custody, last_txid
FROM vaults FINAL
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return nil, fmt.Errorf("query vault states: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var states []model.VaultState
	for rows.Next() {
		state := model.VaultState{Network: network}
		var openTxID, lastTxID string
		var liqHash *string
		if err = rows.Scan(
			&openTxID,
			&state.Balance,
			&state.OraclePrice,
			&state.OracleTimestamp,
			&state.LiquidationPrice,
			&liqHash,
			&state.Custody,
			&lastTxID,
		); err != nil {
			return nil, fmt.Errorf("scan vault state: %w", err)
		}
		if state.OpenTxID, err = parseHash(openTxID); err != nil {
			return nil, err
		}
		if state.LastTxID, err = parseHash(lastTxID); err != nil {
			return nil, err
		}
		if liqHash != nil {
			decoded, err := hex.DecodeString(*liqHash)
			if err != nil {
				return nil, fmt.Errorf("decode liquidation hash: %w", err)
			}
			state.LiquidationHash = decoded
		}
		states = append(states, state)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault states: %w", err)
	}
	return states, nil
}
