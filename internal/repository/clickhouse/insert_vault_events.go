package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// InsertVaultEvents stores the vault events of one block. Keyed by txid:
// re-scanning a block after a crash or reorg rewind replaces the rows.
func (r *Repository) InsertVaultEvents(ctx context.Context, events []model.VaultEvent) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_vault_events", firstNetwork(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	const query = `
INSERT INTO vault_transactions (
	network,
	txid,
	op_return_output,
	block_pos,
	vault_txid,
	version,
	action,
	balance,
	oracle_price,
	oracle_timestamp,
	liquidation_price,
	liquidation_hash,
	block_hash,
	height,
	btc_custody,
	unit_volume,
	btc_volume,
	prev_txid,
	raw_tx
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare vault events batch: %w", err)
	}

	for _, event := range events {
		var liqHash *string
		if event.LiquidationHash != nil {
			encoded := hex.EncodeToString(event.LiquidationHash)
			liqHash = &encoded
		}
		if err = batch.Append(
			string(event.Network),
			event.TxID.String(),
			event.OpReturnOutput,
			event.BlockPos,
			event.VaultID.String(),
			string(event.Version),
			event.Action.String(),
			event.Balance,
			event.OraclePrice,
			event.OracleTimestamp,
			event.LiquidationPrice,
			liqHash,
			event.BlockHash.String(),
			event.Height,
			event.BTCCustody,
			event.UnitVolume,
			event.BTCVolume,
			event.PrevTx.String(),
			string(event.RawTx),
		); err != nil {
			return fmt.Errorf("append vault event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert vault events: %w", err)
	}
	return nil
}
