package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// InsertUnitTxs stores phase-1 transactions carrying UNIT runestones; they
// back the connector lookups of later vault transactions.
func (r *Repository) InsertUnitTxs(ctx context.Context, txs []model.UnitTx) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_unit_txs", firstNetwork(txs), err, start)
	}()

	if len(txs) == 0 {
		return nil
	}

	const query = `
INSERT INTO unit_transactions (
	network,
	txid,
	unit_amount,
	height,
	raw_tx
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare unit txs batch: %w", err)
	}

	for _, tx := range txs {
		if err = batch.Append(
			string(tx.Network),
			tx.TxID.String(),
			tx.UnitAmount,
			tx.Height,
			string(tx.RawTx),
		); err != nil {
			return fmt.Errorf("append unit tx: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert unit txs: %w", err)
	}
	return nil
}
