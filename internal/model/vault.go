package model

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// VaultAction is the operation encoded in a vault transaction payload.
type VaultAction byte

const (
	// ActionOpen creates a new vault.
	ActionOpen VaultAction = 0x6f
	// ActionDeposit adds BTC collateral.
	ActionDeposit VaultAction = 0x64
	// ActionWithdraw removes BTC collateral.
	ActionWithdraw VaultAction = 0x77
	// ActionBorrow mints UNIT against the vault.
	ActionBorrow VaultAction = 0x62
	// ActionRepay burns UNIT back into the vault.
	ActionRepay VaultAction = 0x72
)

// VaultActionFromByte maps the protocol byte to an action, reporting unknown codes.
func VaultActionFromByte(b byte) (VaultAction, bool) {
	switch VaultAction(b) {
	case ActionOpen, ActionDeposit, ActionWithdraw, ActionBorrow, ActionRepay:
		return VaultAction(b), true
	default:
		return 0, false
	}
}

// ParseVaultAction reads the textual action name used on the wire and in storage.
func ParseVaultAction(s string) (VaultAction, error) {
	switch strings.ToLower(s) {
	case "open":
		return ActionOpen, nil
	case "deposit":
		return ActionDeposit, nil
	case "withdraw":
		return ActionWithdraw, nil
	case "borrow":
		return ActionBorrow, nil
	case "repay":
		return ActionRepay, nil
	default:
		return 0, fmt.Errorf("unknown vault action %q", s)
	}
}

func (a VaultAction) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionDeposit:
		return "deposit"
	case ActionWithdraw:
		return "withdraw"
	case ActionBorrow:
		return "borrow"
	case ActionRepay:
		return "repay"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(a))
	}
}

// UnitVolumeSign tells whether UNIT moved by the action flows into or out of
// circulation: Repay burns, every other action mints or is neutral.
func (a VaultAction) UnitVolumeSign() int64 {
	if a == ActionRepay {
		return -1
	}
	return 1
}

// VaultVersion tags the payload schema of a vault transaction.
type VaultVersion string

var (
	// Vault1Legacy is the 14-byte payload: no liquidation fields, oracle
	// timestamp and price swapped relative to the current form.
	Vault1Legacy VaultVersion = "1_legacy"
	// Vault1 is the current 38-byte payload.
	Vault1 VaultVersion = "1"
)

// ParseVaultVersion reads the stored textual version tag.
func ParseVaultVersion(s string) (VaultVersion, error) {
	switch s {
	case "1_legacy":
		return Vault1Legacy, nil
	case "1":
		return Vault1, nil
	default:
		return "", fmt.Errorf("unknown vault version %q", s)
	}
}

// LiquidationHashLen is the byte length of the liquidation hash field.
const LiquidationHashLen = 20

// VaultEvent is one fully resolved vault state transition extracted from a
// block. VaultID equals the txid of the open transaction that started the
// vault's lifecycle.
type VaultEvent struct {
	Network         Network
	VaultID         chainhash.Hash
	TxID            chainhash.Hash
	OpReturnOutput  uint32
	BlockPos        uint32
	Version         VaultVersion
	Action          VaultAction
	Balance         uint32
	OraclePrice     uint32
	OracleTimestamp uint32
	// LiquidationPrice and LiquidationHash are absent in the legacy payload.
	LiquidationPrice *uint32
	LiquidationHash  []byte
	BlockHash        chainhash.Hash
	Height           uint32
	BTCCustody       uint64
	UnitVolume       int64
	BTCVolume        int64
	// PrevTx is the txid of the vault's previous state transition; zero for open.
	PrevTx chainhash.Hash
	RawTx  []byte
}

// VaultState is the materialized latest state of a vault, one row per vault.
type VaultState struct {
	Network          Network
	OpenTxID         chainhash.Hash
	Balance          uint32
	OraclePrice      uint32
	OracleTimestamp  uint32
	LiquidationPrice *uint32
	LiquidationHash  []byte
	Custody          uint64
	LastTxID         chainhash.Hash
}

// UnitTx records a phase-1 transaction carrying a UNIT runestone transfer.
type UnitTx struct {
	Network    Network
	TxID       chainhash.Hash
	UnitAmount uint64
	Height     uint32
	RawTx      []byte
}

// Cursor is the persisted high-water mark of the block scan. The cursor
// always names the highest block whose events are fully persisted.
type Cursor struct {
	Network   Network
	Height    uint32
	BlockHash chainhash.Hash
}

// TimeSpan selects the bucket width of action history aggregation.
type TimeSpan string

var (
	SpanHour  TimeSpan = "Hour"
	SpanDay   TimeSpan = "Day"
	SpanWeek  TimeSpan = "Week"
	SpanMonth TimeSpan = "Month"
)

// Seconds returns the bucket width.
func (t TimeSpan) Seconds() (uint32, error) {
	switch t {
	case SpanHour:
		return 3600, nil
	case SpanDay:
		return 3600 * 24, nil
	case SpanWeek:
		return 3600 * 24 * 7, nil
	case SpanMonth:
		// Thirty weeks, as the deployed protocol defines it.
		return 3600 * 24 * 7 * 30, nil
	default:
		return 0, fmt.Errorf("unknown timespan %q", string(t))
	}
}

// ActionVolume is one aggregation bucket of the action_history query.
type ActionVolume struct {
	TimestampStart uint32 `json:"timestamp_start"`
	UnitVolume     int64  `json:"unit_volume"`
	BTCVolume      int64  `json:"btc_volume"`
}

// OverallVolume is the lifetime volume total over all vaults.
type OverallVolume struct {
	BTCVolume  int64 `json:"btc_volume"`
	UnitVolume int64 `json:"unit_volume"`
}
