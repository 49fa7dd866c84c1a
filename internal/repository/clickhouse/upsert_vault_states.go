package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// UpsertVaultStates writes the latest materialized state of each touched
// vault; the newest row per open txid wins.
func (r *Repository) UpsertVaultStates(ctx context.Context, states []model.VaultState) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("upsert_vault_states", firstNetwork(states), err, start)
	}()

	if len(states) == 0 {
		return nil
	}

	const query = `
INSERT INTO vaults (
	network,
	open_txid,
	balance,
	oracle_price,
	oracle_timestamp,
	liquidation_price,
	liquidation_hash,
	custody,
	last_txid
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare vault states batch: %w", err)
	}

	for _, state := range states {
		var liqHash *string
		if state.LiquidationHash != nil {
			encoded := hex.EncodeToString(state.LiquidationHash)
			liqHash = &encoded
		}
		if err = batch.Append(
			string(state.Network),
			state.OpenTxID.String(),
			state.Balance,
			state.OraclePrice,
			state.OracleTimestamp,
			state.LiquidationPrice,
			liqHash,
			state.Custody,
			state.LastTxID.String(),
		); err != nil {
			return fmt.Errorf("append vault state: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("upsert vault states: %w", err)
	}
	return nil
}
