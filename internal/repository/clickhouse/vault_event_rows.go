package clickhouse

import (
	"encoding/hex"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// vaultEventColumns is the column list shared by the history queries; the
// scan below mirrors its order.
const vaultEventColumns = `
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
	prev_txid`

func scanVaultEvents(rows driver.Rows, network model.Network) ([]model.VaultEvent, error) {
	var events []model.VaultEvent
	for rows.Next() {
		var (
			event                            model.VaultEvent
			txid, vaultID, blockHash, prevTx string
			version, action                  string
			liqHash                          *string
		)
		if err := rows.Scan(
			&txid,
			&event.OpReturnOutput,
			&event.BlockPos,
			&vaultID,
			&version,
			&action,
			&event.Balance,
			&event.OraclePrice,
			&event.OracleTimestamp,
			&event.LiquidationPrice,
			&liqHash,
			&blockHash,
			&event.Height,
			&event.BTCCustody,
			&event.UnitVolume,
			&event.BTCVolume,
			&prevTx,
		); err != nil {
			return nil, fmt.Errorf("scan vault event: %w", err)
		}

		event.Network = network
		var err error
		if event.TxID, err = parseHash(txid); err != nil {
			return nil, err
		}
		if event.VaultID, err = parseHash(vaultID); err != nil {
			return nil, err
		}
		if event.BlockHash, err = parseHash(blockHash); err != nil {
			return nil, err
		}
		if event.PrevTx, err = parseHash(prevTx); err != nil {
			return nil, err
		}
		if event.Version, err = model.ParseVaultVersion(version); err != nil {
			return nil, err
		}
		if event.Action, err = model.ParseVaultAction(action); err != nil {
			return nil, err
		}
		if liqHash != nil {
			decoded, err := hex.DecodeString(*liqHash)
			if err != nil {
				return nil, fmt.Errorf("decode liquidation hash: %w", err)
			}
			event.LiquidationHash = decoded
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault events: %w", err)
	}
	return events, nil
}

func parseHash(s string) (chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("decode hash %q: %w", s, err)
	}
	return *hash, nil
}

// timestampBounds widens optional range parameters to the full range.
func timestampBounds(start, end *uint32) (uint32, uint32) {
	from := uint32(0)
	to := uint32(1<<32 - 1)
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	return from, to
}
