package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// LoadHeaders streams every stored header of the network into the callback,
// in ascending height order, so the in-memory cache can be rebuilt at boot.
func (r *Repository) LoadHeaders(ctx context.Context, network model.Network, visit func(model.HeaderRecord) error) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_headers", network, err, start)
	}()

	const query = `
SELECT block_hash, height, prev_block_hash, raw, in_longest
FROM headers FINAL
WHERE network = ?
ORDER BY height`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return fmt.Errorf("query headers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		row := model.HeaderRecord{Network: network}
		var raw string
		var inLongest uint8
		if err = rows.Scan(&row.BlockHash, &row.Height, &row.PrevBlockHash, &raw, &inLongest); err != nil {
			return fmt.Errorf("scan header: %w", err)
		}
		row.Raw = []byte(raw)
		row.InLongest = inLongest != 0
		if err = visit(row); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate headers: %w", err)
	}
	return nil
}
