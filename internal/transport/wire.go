// Package transport serves the WebSocket query and notification API.
//
// The wire format is JSON text frames. Two response keys keep historical
// misspellings (NewTranscation, OveallVolume); correcting them would break
// deployed clients.
package transport

import (
	"encoding/hex"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

// request is the common envelope; per-method parameters are unmarshalled
// separately.
type request struct {
	Method string `json:"method"`
}

type rangeHistoryRequest struct {
	TimestampStart *uint32 `json:"timestamp_start"`
	TimestampEnd   *uint32 `json:"timestamp_end"`
}

type vaultHistoryRequest struct {
	VaultOpenTxid  string  `json:"vault_open_txid"`
	TimestampStart *uint32 `json:"timestamp_start"`
	TimestampEnd   *uint32 `json:"timestamp_end"`
}

type actionHistoryRequest struct {
	Action   string  `json:"action"`
	Timespan *string `json:"timespan"`
}

// vaultTxInfo is the serialized vault event. Field set and names are fixed
// by the deployed protocol; prev_tx and tx_url carry explorer links.
type vaultTxInfo struct {
	VaultID          string  `json:"vault_id"`
	Txid             string  `json:"txid"`
	OpReturnOutput   uint32  `json:"op_return_output"`
	Version          string  `json:"version"`
	Action           string  `json:"action"`
	Balance          uint32  `json:"balance"`
	OraclePrice      uint32  `json:"oracle_price"`
	OracleTimestamp  uint32  `json:"oracle_timestamp"`
	LiquidationPrice *uint32 `json:"liquidation_price"`
	LiquidationHash  *string `json:"liquidation_hash"`
	BlockHash        string  `json:"block_hash"`
	Height           uint32  `json:"height"`
	TxURL            string  `json:"tx_url"`
	BTCCustody       uint64  `json:"btc_custody"`
	UnitVolume       int64   `json:"unit_volume"`
	BTCVolume        int64   `json:"btc_volume"`
	PrevTx           string  `json:"prev_tx"`
}

func newVaultTxInfo(event model.VaultEvent) vaultTxInfo {
	info := vaultTxInfo{
		VaultID:          event.VaultID.String(),
		Txid:             event.TxID.String(),
		OpReturnOutput:   event.OpReturnOutput,
		Version:          string(event.Version),
		Action:           event.Action.String(),
		Balance:          event.Balance,
		OraclePrice:      event.OraclePrice,
		OracleTimestamp:  event.OracleTimestamp,
		LiquidationPrice: event.LiquidationPrice,
		BlockHash:        event.BlockHash.String(),
		Height:           event.Height,
		TxURL:            event.Network.ExplorerTxURL(event.TxID.String()),
		BTCCustody:       event.BTCCustody,
		UnitVolume:       event.UnitVolume,
		BTCVolume:        event.BTCVolume,
		PrevTx:           event.Network.ExplorerTxURL(event.PrevTx.String()),
	}
	if event.LiquidationHash != nil {
		encoded := hex.EncodeToString(event.LiquidationHash)
		info.LiquidationHash = &encoded
	}
	return info
}

func newVaultTxInfos(events []model.VaultEvent) []vaultTxInfo {
	infos := make([]vaultTxInfo, 0, len(events))
	for _, event := range events {
		infos = append(infos, newVaultTxInfo(event))
	}
	return infos
}

type allHistoryResponse struct {
	AllHistory []vaultTxInfo `json:"AllHistory"`
}

type vaultHistoryResponse struct {
	VaultHistory []vaultTxInfo `json:"VaultHistory"`
}

type actionHistoryResponse struct {
	ActionHistory []model.ActionVolume `json:"ActionHistory"`
}

// overallVolumeResponse keeps the misspelled key for wire compatibility.
type overallVolumeResponse struct {
	OveallVolume model.OverallVolume `json:"OveallVolume"`
}

// notification keeps the misspelled key for wire compatibility.
type notification struct {
	NewTranscation vaultTxInfo `json:"NewTranscation"`
}

type errorResponse struct {
	Error string `json:"error"`
}
