// Package runes decodes the runestone payloads this indexer cares about:
// edicts transferring the UNIT token inside phase-1 vault transactions.
package runes

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/NCrashed/mutinynet-indexer/pkg/safe"
)

// UnitRuneID identifies the UNIT token among all etched runes.
var UnitRuneID = RuneID{Block: 1527352, Tx: 1}

// RuneID names a rune by the block and tx index of its etching.
type RuneID struct {
	Block uint64
	Tx    uint32
}

func (id RuneID) String() string {
	return fmt.Sprintf("%d:%d", id.Block, id.Tx)
}

// Edict is a single transfer instruction inside a runestone.
type Edict struct {
	ID     RuneID
	Amount uint64
	Output uint32
}

// Runestone is the decoded payload. Only the pieces needed for UNIT volume
// tracking are retained; unknown odd tags are skipped per protocol.
type Runestone struct {
	Edicts []Edict
}

var (
	// ErrNotRunestone reports a transaction without an OP_RETURN OP_13 output.
	ErrNotRunestone = errors.New("transaction carries no runestone")
	// ErrCenotaph reports a malformed runestone; its transfers are void.
	ErrCenotaph = errors.New("runestone is a cenotaph")
)

const (
	tagBody = 0
	// runestoneMarker is OP_13, the protocol tag after OP_RETURN.
	runestoneMarker = txscript.OP_13
)

// knownEvenTags are the protocol-defined even tags (flags, rune, premine,
// cap, amount, height/offset bounds, mint, pointer); their values are
// irrelevant to UNIT transfers and are skipped.
var knownEvenTags = map[uint64]bool{
	2: true, 4: true, 6: true, 8: true, 10: true,
	12: true, 14: true, 16: true, 18: true, 20: true, 22: true,
}

// Decipher extracts the runestone from a transaction, if any.
func Decipher(tx *wire.MsgTx) (*Runestone, error) {
	payload, err := runestonePayload(tx)
	if err != nil {
		return nil, err
	}

	integers, err := decodeVarints(payload)
	if err != nil {
		return nil, ErrCenotaph
	}

	return parseMessage(integers, uint32(len(tx.TxOut)))
}

// runestonePayload finds the first OP_RETURN OP_13 output and concatenates
// its data pushes.
func runestonePayload(tx *wire.MsgTx) ([]byte, error) {
	for _, out := range tx.TxOut {
		script := out.PkScript
		if len(script) < 2 || script[0] != txscript.OP_RETURN || script[1] != runestoneMarker {
			continue
		}

		var payload []byte
		tokenizer := txscript.MakeScriptTokenizer(0, script[2:])
		for tokenizer.Next() {
			// Anything but a plain data push voids the runestone.
			if tokenizer.Opcode() > txscript.OP_PUSHDATA4 {
				return nil, ErrCenotaph
			}
			payload = append(payload, tokenizer.Data()...)
		}
		if tokenizer.Err() != nil {
			return nil, ErrCenotaph
		}
		return payload, nil
	}
	return nil, ErrNotRunestone
}

// decodeVarints parses the payload as a sequence of LEB128 integers.
// The protocol uses 128-bit integers; amounts beyond 64 bits are rejected,
// which voids the runestone rather than truncating a transfer.
func decodeVarints(payload []byte) ([]uint64, error) {
	var integers []uint64
	for i := 0; i < len(payload); {
		value, read, err := decodeVarint(payload[i:])
		if err != nil {
			return nil, err
		}
		integers = append(integers, value)
		i += read
	}
	return integers, nil
}

func decodeVarint(buf []byte) (uint64, int, error) {
	var value uint64
	for i, b := range buf {
		if i > 18 {
			return 0, 0, errors.New("varint too long")
		}
		shift := uint(7 * i)
		chunk := uint64(b & 0x7f)
		if shift >= 64 || (shift > 0 && chunk > (^uint64(0))>>shift) {
			return 0, 0, errors.New("varint overflows 64 bits")
		}
		value |= chunk << shift
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, errors.New("varint truncated")
}

// parseMessage splits tag/value fields from the edict body and applies the
// delta decoding of rune ids.
func parseMessage(integers []uint64, numOutputs uint32) (*Runestone, error) {
	stone := &Runestone{}
	i := 0
	for i < len(integers) {
		tag := integers[i]
		if tag == tagBody {
			i++
			break
		}
		// Tags carry one value; a tag without a value is malformed. Unknown
		// even tags void the runestone, odd ones are ignorable.
		if i+1 >= len(integers) {
			return nil, ErrCenotaph
		}
		if tag%2 == 0 && !knownEvenTags[tag] {
			return nil, ErrCenotaph
		}
		i += 2
	}

	body := integers[i:]
	if len(body)%4 != 0 {
		return nil, ErrCenotaph
	}

	var prev RuneID
	for j := 0; j < len(body); j += 4 {
		blockDelta, txDelta := body[j], body[j+1]
		amount, output := body[j+2], body[j+3]

		var id RuneID
		if blockDelta == 0 {
			tx, err := safe.Uint32(uint64(prev.Tx) + txDelta)
			if err != nil {
				return nil, ErrCenotaph
			}
			id = RuneID{Block: prev.Block, Tx: tx}
		} else {
			tx, err := safe.Uint32(txDelta)
			if err != nil {
				return nil, ErrCenotaph
			}
			id = RuneID{Block: prev.Block + blockDelta, Tx: tx}
		}
		outIndex, err := safe.Uint32(output)
		if err != nil || outIndex > numOutputs {
			return nil, ErrCenotaph
		}
		stone.Edicts = append(stone.Edicts, Edict{
			ID:     id,
			Amount: amount,
			Output: outIndex,
		})
		prev = id
	}

	return stone, nil
}

// UnitAmount sums all UNIT edicts of a transaction's runestone. The second
// return is false when the transaction has no runestone or no UNIT edicts.
func UnitAmount(tx *wire.MsgTx) (uint64, bool, error) {
	stone, err := Decipher(tx)
	if err != nil {
		if errors.Is(err, ErrNotRunestone) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var total uint64
	found := false
	for _, edict := range stone.Edicts {
		if edict.ID == UnitRuneID {
			total += edict.Amount
			found = true
		}
	}
	return total, found, nil
}
