package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// InsertHeaders stores header rows; re-inserting a hash replaces its row.
func (r *Repository) InsertHeaders(ctx context.Context, headers []model.HeaderRecord) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_headers", firstNetwork(headers), err, start)
	}()

	if len(headers) == 0 {
		return nil
	}

	const query = `
INSERT INTO headers (
	network,
	block_hash,
	height,
	prev_block_hash,
	raw,
	in_longest
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare headers batch: %w", err)
	}

	for _, header := range headers {
		inLongest := uint8(0)
		if header.InLongest {
			inLongest = 1
		}
		if err = batch.Append(
			string(header.Network),
			header.BlockHash,
			header.Height,
			header.PrevBlockHash,
			string(header.Raw),
			inLongest,
		); err != nil {
			return fmt.Errorf("append header: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert headers: %w", err)
	}
	return nil
}

func firstNetwork[T any](items []T) model.Network {
	if len(items) == 0 {
		return ""
	}

	switch v := any(items[0]).(type) {
	case model.HeaderRecord:
		return v.Network
	case model.VaultEvent:
		return v.Network
	case model.VaultState:
		return v.Network
	case model.UnitTx:
		return v.Network
	default:
		return ""
	}
}
