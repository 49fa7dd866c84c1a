package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// LoadCursor fetches the persisted scan position; (nil, nil) means no scan
// has completed a block yet.
func (r *Repository) LoadCursor(ctx context.Context, network model.Network) (*model.Cursor, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_cursor", network, err, start)
	}()

	const query = `
SELECT height, block_hash
FROM cursor FINAL
WHERE network = ?
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return nil, fmt.Errorf("query cursor: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate cursor: %w", err)
		}
		return nil, nil
	}

	cursor := &model.Cursor{Network: network}
	var blockHash string
	if err = rows.Scan(&cursor.Height, &blockHash); err != nil {
		return nil, fmt.Errorf("scan cursor: %w", err)
	}
	hash, err := chainhash.NewHashFromStr(blockHash)
	if err != nil {
		return nil, fmt.Errorf("decode cursor block hash: %w", err)
	}
	cursor.BlockHash = *hash
	return cursor, nil
}

// SaveCursor advances the persisted scan position. Callers write it only
// after every event of the block is persisted.
func (r *Repository) SaveCursor(ctx context.Context, cursor model.Cursor) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_cursor", cursor.Network, err, start)
	}()

	const query = `
INSERT INTO cursor (network, height, block_hash) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare cursor batch: %w", err)
	}
	if err = batch.Append(string(cursor.Network), cursor.Height, cursor.BlockHash.String()); err != nil {
		return fmt.Errorf("append cursor: %w", err)
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
