// Package vault decodes vault protocol transactions: the OP_RETURN state
// payload, the custody and connector slot conventions, and the volumes
// derived from the previous state and the companion UNIT runestone.
package vault

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/vault/runes"
	"github.com/NCrashed/mutinynet-indexer/pkg/safe"
)

// Slot conventions of the current vault schema. Stated as assumptions in the
// protocol documentation; a future schema version may relax them.
const (
	// custodyOutputOpen: the first two outputs of an open look like UTXO
	// connectors, the third holds the collateral.
	custodyOutputOpen = 2
	// custodyOutput: every non-open action keeps the collateral in the
	// first output.
	custodyOutput = 0
	// collateralInput spends the vault's previous state transition.
	collateralInput = 0
	// connectorInput spends the phase-1 transaction carrying the UNIT
	// runestone.
	connectorInput = 1
)

// maxVaultWalk bounds the prev-tx walk when the materialized index misses.
const maxVaultWalk = 10_000

const (
	legacyPayloadLen  = 14
	currentPayloadLen = 38
)

// ErrNotVault marks transactions that are not vault transactions at all;
// they are skipped silently.
var ErrNotVault = errors.New("not a vault transaction")

// ErrorKind labels malformed-vault parse failures for counting.
type ErrorKind string

const (
	KindMissingField   ErrorKind = "missing_field"
	KindBadLiqHash     ErrorKind = "bad_liquidation_hash"
	KindNoCustody      ErrorKind = "no_custody_output"
	KindNoConnector    ErrorKind = "no_connector_input"
	KindNoInputs       ErrorKind = "no_inputs"
	KindUnknownVault   ErrorKind = "unknown_vault"
	KindMissingPrevTx  ErrorKind = "missing_prev_tx"
	KindRunestone      ErrorKind = "bad_runestone"
	KindAmbiguousVault ErrorKind = "ambiguous_payload"
)

// ParseError reports a transaction that looks like a vault transaction but
// cannot be decoded. It is logged and counted, never fatal to scanning.
type ParseError struct {
	Kind ErrorKind
	TxID chainhash.Hash
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vault tx %s: %s: %v", e.TxID, e.Kind, e.Err)
	}
	return fmt.Sprintf("vault tx %s: %s", e.TxID, e.Kind)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(kind ErrorKind, txid chainhash.Hash, err error) *ParseError {
	return &ParseError{Kind: kind, TxID: txid, Err: err}
}

// Tx is the metadata decoded from a vault transaction's OP_RETURN output.
type Tx struct {
	TxID             chainhash.Hash
	Output           uint32
	Version          model.VaultVersion
	Action           model.VaultAction
	Balance          uint32
	OraclePrice      uint32
	OracleTimestamp  uint32
	LiquidationPrice *uint32
	LiquidationHash  []byte
}

// Parse inspects a transaction for the vault OP_RETURN payload. It returns
// ErrNotVault for foreign transactions (including unknown versions and
// actions, which must never abort scanning) and ParseError for recognized
// but malformed payloads. Exactly one valid vault payload is required.
func Parse(tx *wire.MsgTx) (*Tx, error) {
	txid := tx.TxHash()

	var parsed *Tx
	var firstErr error
	for i, out := range tx.TxOut {
		vtx, err := parsePayload(out.PkScript, txid, uint32(i))
		if err != nil {
			if !errors.Is(err, ErrNotVault) && firstErr == nil {
				firstErr = err
			}
			continue
		}
		if parsed != nil {
			// Two valid vault payloads in one transaction: unspecified by
			// the schema, skip it.
			return nil, parseErr(KindAmbiguousVault, txid, nil)
		}
		parsed = vtx
	}
	if parsed != nil {
		return parsed, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNotVault
}

func parsePayload(script []byte, txid chainhash.Hash, index uint32) (*Tx, error) {
	if len(script) < 3 || script[0] != txscript.OP_RETURN {
		return nil, ErrNotVault
	}
	if script[1] != txscript.OP_8 {
		return nil, ErrNotVault
	}
	pushOp := script[2]
	if pushOp != txscript.OP_DATA_14 && pushOp != txscript.OP_DATA_38 {
		return nil, ErrNotVault
	}
	isCurrent := pushOp == txscript.OP_DATA_38

	payload := script[3:]
	wantLen := legacyPayloadLen
	if isCurrent {
		wantLen = currentPayloadLen
	}
	if len(payload) < wantLen {
		return nil, parseErr(KindMissingField, txid, fmt.Errorf("payload %d bytes, want %d", len(payload), wantLen))
	}
	payload = payload[:wantLen]

	// Unknown versions and actions mean a future schema: skip, don't fail.
	if payload[0] != 1 {
		return nil, ErrNotVault
	}
	action, ok := model.VaultActionFromByte(payload[1])
	if !ok {
		return nil, ErrNotVault
	}

	vtx := &Tx{
		TxID:    txid,
		Output:  index,
		Action:  action,
		Balance: binary.BigEndian.Uint32(payload[2:6]),
	}

	if isCurrent {
		vtx.Version = model.Vault1
		vtx.OraclePrice = binary.BigEndian.Uint32(payload[6:10])
		vtx.OracleTimestamp = binary.BigEndian.Uint32(payload[10:14])
		price := binary.BigEndian.Uint32(payload[14:18])
		vtx.LiquidationPrice = &price
		hash := make([]byte, model.LiquidationHashLen)
		copy(hash, payload[18:38])
		vtx.LiquidationHash = hash
	} else {
		// The legacy payload carries the timestamp before the price.
		vtx.Version = model.Vault1Legacy
		vtx.OracleTimestamp = binary.BigEndian.Uint32(payload[6:10])
		vtx.OraclePrice = binary.BigEndian.Uint32(payload[10:14])
	}

	return vtx, nil
}

// CustodyValue reads the BTC amount held by the vault after this
// transaction, using the slot conventions above.
func CustodyValue(vtx *Tx, tx *wire.MsgTx) (uint64, error) {
	slot := custodyOutput
	if vtx.Action == model.ActionOpen {
		slot = custodyOutputOpen
	}
	if slot >= len(tx.TxOut) {
		return 0, parseErr(KindNoCustody, vtx.TxID, fmt.Errorf("output %d of %d", slot, len(tx.TxOut)))
	}
	value, err := safe.Uint64(tx.TxOut[slot].Value)
	if err != nil {
		return 0, parseErr(KindNoCustody, vtx.TxID, err)
	}
	return value, nil
}

// PrevVaultTx names the vault's previous state transition, spent by the
// collateral input. Undefined for open.
func PrevVaultTx(vtx *Tx, tx *wire.MsgTx) (chainhash.Hash, error) {
	if vtx.Action == model.ActionOpen {
		return chainhash.Hash{}, nil
	}
	if len(tx.TxIn) <= collateralInput {
		return chainhash.Hash{}, parseErr(KindNoInputs, vtx.TxID, nil)
	}
	return tx.TxIn[collateralInput].PreviousOutPoint.Hash, nil
}

// ConnectorParent names the phase-1 transaction expected to carry the UNIT
// runestone. Deposit and withdraw move no UNIT and have no connector.
func ConnectorParent(vtx *Tx, tx *wire.MsgTx) (*chainhash.Hash, error) {
	switch vtx.Action {
	case model.ActionOpen, model.ActionBorrow, model.ActionRepay:
		if len(tx.TxIn) <= connectorInput {
			return nil, parseErr(KindNoConnector, vtx.TxID, fmt.Errorf("%d inputs", len(tx.TxIn)))
		}
		hash := tx.TxIn[connectorInput].PreviousOutPoint.Hash
		return &hash, nil
	default:
		return nil, nil
	}
}

// Lookup resolves a txid to its raw transaction, consulting the current
// block and the store. Returning (nil, nil) means unknown.
type Lookup func(txid chainhash.Hash) (*wire.MsgTx, error)

// VaultIDIndex is the materialized txid-to-vault map that avoids unbounded
// prev-tx walks.
type VaultIDIndex func(txid chainhash.Hash) (chainhash.Hash, bool)

// ResolveVaultID finds the open transaction that started this vault's
// lifecycle: the index answers directly, otherwise the prev-tx chain is
// walked through the lookup until an open payload appears.
func ResolveVaultID(vtx *Tx, tx *wire.MsgTx, index VaultIDIndex, lookup Lookup) (chainhash.Hash, error) {
	if vtx.Action == model.ActionOpen {
		return vtx.TxID, nil
	}

	prev, err := PrevVaultTx(vtx, tx)
	if err != nil {
		return chainhash.Hash{}, err
	}

	for depth := 0; depth < maxVaultWalk; depth++ {
		if index != nil {
			if vaultID, ok := index(prev); ok {
				return vaultID, nil
			}
		}
		prevRaw, err := lookup(prev)
		if err != nil {
			return chainhash.Hash{}, parseErr(KindMissingPrevTx, vtx.TxID, err)
		}
		if prevRaw == nil {
			return chainhash.Hash{}, parseErr(KindUnknownVault, vtx.TxID, fmt.Errorf("prev tx %s unknown", prev))
		}
		prevVtx, err := Parse(prevRaw)
		if err != nil {
			return chainhash.Hash{}, parseErr(KindUnknownVault, vtx.TxID, fmt.Errorf("prev tx %s is not a vault tx", prev))
		}
		if prevVtx.Action == model.ActionOpen {
			return prevVtx.TxID, nil
		}
		prev, err = PrevVaultTx(prevVtx, prevRaw)
		if err != nil {
			return chainhash.Hash{}, err
		}
	}
	return chainhash.Hash{}, parseErr(KindUnknownVault, vtx.TxID, errors.New("vault walk depth exhausted"))
}

// BlockContext carries where in the chain the transaction was found.
type BlockContext struct {
	Hash   chainhash.Hash
	Height uint32
	Pos    uint32
}

// BuildEvent assembles the full vault event: id resolution, custody, UNIT
// volume from the phase-1 runestone, and the BTC volume of collateral
// movements.
func BuildEvent(network model.Network, vtx *Tx, tx *wire.MsgTx, blk BlockContext, index VaultIDIndex, lookup Lookup) (*model.VaultEvent, error) {
	vaultID, err := ResolveVaultID(vtx, tx, index, lookup)
	if err != nil {
		return nil, err
	}

	custody, err := CustodyValue(vtx, tx)
	if err != nil {
		return nil, err
	}

	prevTx, err := PrevVaultTx(vtx, tx)
	if err != nil {
		return nil, err
	}

	unitVolume, err := unitVolume(vtx, tx, lookup)
	if err != nil {
		return nil, err
	}

	btcVolume, err := btcVolume(vtx, tx, custody, prevTx, lookup)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize tx %s: %w", vtx.TxID, err)
	}

	return &model.VaultEvent{
		Network:          network,
		VaultID:          vaultID,
		TxID:             vtx.TxID,
		OpReturnOutput:   vtx.Output,
		BlockPos:         blk.Pos,
		Version:          vtx.Version,
		Action:           vtx.Action,
		Balance:          vtx.Balance,
		OraclePrice:      vtx.OraclePrice,
		OracleTimestamp:  vtx.OracleTimestamp,
		LiquidationPrice: vtx.LiquidationPrice,
		LiquidationHash:  vtx.LiquidationHash,
		BlockHash:        blk.Hash,
		Height:           blk.Height,
		BTCCustody:       custody,
		UnitVolume:       unitVolume,
		BTCVolume:        btcVolume,
		PrevTx:           prevTx,
		RawTx:            buf.Bytes(),
	}, nil
}

// unitVolume decodes the UNIT runestone of the connector's parent. A missing
// connector or runestone yields zero volume, a malformed one is an error.
func unitVolume(vtx *Tx, tx *wire.MsgTx, lookup Lookup) (int64, error) {
	parent, err := ConnectorParent(vtx, tx)
	if err != nil {
		return 0, err
	}
	if parent == nil {
		return 0, nil
	}
	parentRaw, err := lookup(*parent)
	if err != nil {
		return 0, parseErr(KindMissingPrevTx, vtx.TxID, err)
	}
	if parentRaw == nil {
		return 0, nil
	}
	amount, found, err := runes.UnitAmount(parentRaw)
	if err != nil {
		return 0, parseErr(KindRunestone, vtx.TxID, err)
	}
	if !found {
		return 0, nil
	}
	return vtx.Action.UnitVolumeSign() * int64(amount), nil
}

// btcVolume is the signed collateral delta: positive for deposit, negative
// for withdraw, zero for every other action.
func btcVolume(vtx *Tx, tx *wire.MsgTx, custody uint64, prevTx chainhash.Hash, lookup Lookup) (int64, error) {
	if vtx.Action != model.ActionDeposit && vtx.Action != model.ActionWithdraw {
		return 0, nil
	}
	prevRaw, err := lookup(prevTx)
	if err != nil {
		return 0, parseErr(KindMissingPrevTx, vtx.TxID, err)
	}
	if prevRaw == nil {
		return 0, parseErr(KindMissingPrevTx, vtx.TxID, fmt.Errorf("prev tx %s unknown", prevTx))
	}
	prevVtx, err := Parse(prevRaw)
	if err != nil {
		return 0, parseErr(KindUnknownVault, vtx.TxID, fmt.Errorf("prev tx %s is not a vault tx", prevTx))
	}
	prevCustody, err := CustodyValue(prevVtx, prevRaw)
	if err != nil {
		return 0, err
	}
	return int64(custody) - int64(prevCustody), nil
}
