package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/p2p"
	"github.com/NCrashed/mutinynet-indexer/internal/vault"
	"github.com/NCrashed/mutinynet-indexer/internal/vault/runes"
	"github.com/NCrashed/mutinynet-indexer/pkg/safe"
	"github.com/NCrashed/mutinynet-indexer/pkg/workerpool"
)

// errPersistence marks store failures that survived their retries; Run
// propagates it so the process exits non-zero.
var errPersistence = errors.New("persistence failure")

// scanBlocks is phase 2: walk the main chain from the cursor to the tip in
// getdata windows, extracting and persisting vault data block by block.
func (s *Service) scanBlocks(ctx context.Context, session Session) error {
	for {
		from := s.cfg.StartHeight
		if s.cursor != nil && s.cursor.Height+1 > from {
			from = s.cursor.Height + 1
		}
		tip := s.cache.Height()
		if from > tip {
			return nil
		}

		to := tip
		if window := from + s.cfg.BatchSize - 1; window < to {
			to = window
		}

		hashes := s.cache.MainChainHashes(from, to)
		if len(hashes) == 0 {
			return nil
		}
		s.logger.Info("requesting block window",
			zap.Uint32("from", from),
			zap.Uint32("to", to),
			zap.Int("blocks", len(hashes)))

		if err := session.RequestBlocks(hashes); err != nil {
			return fmt.Errorf("request blocks: %w", err)
		}

		blocks, err := s.collectWindow(ctx, session, hashes)
		if err != nil {
			return err
		}

		for i, hash := range hashes {
			block, ok := blocks[hash]
			if !ok {
				return fmt.Errorf("peer withheld block %s from window", hash)
			}
			offset, err := safe.Uint32(i)
			if err != nil {
				return fmt.Errorf("window offset: %w", err)
			}
			if err := s.processBlock(ctx, block, hash, from+offset); err != nil {
				return err
			}
		}
	}
}

// collectWindow reads session events until every requested block arrived.
// Header announcements are ingested on the way; disconnects abort.
func (s *Service) collectWindow(ctx context.Context, session Session, hashes []chainhash.Hash) (map[chainhash.Hash]*wire.MsgBlock, error) {
	want := make(map[chainhash.Hash]struct{}, len(hashes))
	for _, hash := range hashes {
		want[hash] = struct{}{}
	}

	blocks := make(map[chainhash.Hash]*wire.MsgBlock, len(hashes))
	for len(want) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-session.Events():
			if !ok {
				return nil, errDisconnected
			}
			switch e := event.(type) {
			case p2p.BlockEvent:
				hash := e.Block.BlockHash()
				if _, wanted := want[hash]; !wanted {
					continue
				}
				delete(want, hash)
				blocks[hash] = e.Block
			case p2p.HeadersEvent:
				if err := s.ingestHeaders(e.Headers); err != nil {
					return nil, err
				}
			case p2p.DisconnectedEvent:
				return nil, disconnectError(e)
			}
		}
	}
	return blocks, nil
}

// processBlock extracts vault data from one block and persists it before
// the cursor advances; events are published only after they are stored.
func (s *Service) processBlock(ctx context.Context, block *wire.MsgBlock, hash chainhash.Hash, height uint32) error {
	started := time.Now()
	events, unitTxs, err := s.extractBlock(ctx, block, hash, height)
	if err != nil {
		s.metrics.ObserveBlockScan(err, started)
		return err
	}

	states := s.applyBlock(events)
	cursor := model.Cursor{Network: s.cfg.Network, Height: height, BlockHash: hash}
	if err := s.persistBlock(ctx, events, unitTxs, states, cursor); err != nil {
		s.metrics.ObserveBlockScan(err, started)
		return err
	}
	s.cursor = &cursor
	s.metrics.SetScannedHeight(height)
	s.metrics.ObserveBlockScan(nil, started)

	for _, event := range events {
		s.metrics.ObserveVaultEvent(event.Action.String())
		s.bus.Publish(event)
	}
	if len(events) > 0 {
		s.logger.Info("vault events indexed",
			zap.Uint32("height", height),
			zap.Int("events", len(events)),
			zap.Int("unit_txs", len(unitTxs)))
	}
	return nil
}

// extractBlock runs the parser over every transaction. Decoding is pure, so
// transactions are parsed in parallel and events re-ordered by block
// position afterwards.
func (s *Service) extractBlock(ctx context.Context, block *wire.MsgBlock, hash chainhash.Hash, height uint32) ([]model.VaultEvent, []model.UnitTx, error) {
	blockTxs := make(map[chainhash.Hash]*wire.MsgTx, len(block.Transactions))
	for _, tx := range block.Transactions {
		blockTxs[tx.TxHash()] = tx
	}
	lookup := s.lookupFunc(ctx, blockTxs)
	index := func(txid chainhash.Hash) (chainhash.Hash, bool) {
		vaultID, ok := s.vaultIndex[txid]
		return vaultID, ok
	}

	var (
		mu      sync.Mutex
		events  []model.VaultEvent
		unitTxs []model.UnitTx
	)
	positions := make([]int, len(block.Transactions))
	for i := range positions {
		positions[i] = i
	}

	err := workerpool.Process(ctx, parseWorkerCount, positions, func(ctx context.Context, pos int) error {
		tx := block.Transactions[pos]

		if unitTx := s.detectUnitTx(tx, height); unitTx != nil {
			mu.Lock()
			unitTxs = append(unitTxs, *unitTx)
			mu.Unlock()
		}

		vtx, err := vault.Parse(tx)
		if err != nil {
			s.countParseError(err, tx)
			return nil
		}
		blockPos, err := safe.Uint32(pos)
		if err != nil {
			return fmt.Errorf("block position: %w", err)
		}
		blk := vault.BlockContext{Hash: hash, Height: height, Pos: blockPos}
		event, err := vault.BuildEvent(s.cfg.Network, vtx, tx, blk, index, lookup)
		if err != nil {
			s.countParseError(err, tx)
			return nil
		}
		mu.Lock()
		events = append(events, *event)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(events, func(i, j int) bool { return events[i].BlockPos < events[j].BlockPos })
	sort.Slice(unitTxs, func(i, j int) bool { return unitTxs[i].TxID.String() < unitTxs[j].TxID.String() })
	return events, unitTxs, nil
}

// detectUnitTx records phase-1 transactions carrying UNIT edicts so later
// connector lookups can resolve them.
func (s *Service) detectUnitTx(tx *wire.MsgTx, height uint32) *model.UnitTx {
	amount, found, err := runes.UnitAmount(tx)
	if err != nil || !found {
		return nil
	}
	var raw bytes.Buffer
	raw.Grow(tx.SerializeSize())
	if err := tx.Serialize(&raw); err != nil {
		return nil
	}
	return &model.UnitTx{
		Network:    s.cfg.Network,
		TxID:       tx.TxHash(),
		UnitAmount: amount,
		Height:     height,
		RawTx:      raw.Bytes(),
	}
}

// lookupFunc resolves transactions from the current block first and the
// store second.
func (s *Service) lookupFunc(ctx context.Context, blockTxs map[chainhash.Hash]*wire.MsgTx) vault.Lookup {
	return func(txid chainhash.Hash) (*wire.MsgTx, error) {
		if tx, ok := blockTxs[txid]; ok {
			return tx, nil
		}
		raw, err := s.repo.GetRawTransaction(ctx, s.cfg.Network, txid)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		tx := wire.NewMsgTx(wire.TxVersion)
		if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("decode stored tx %s: %w", txid, err)
		}
		return tx, nil
	}
}

func (s *Service) countParseError(err error, tx *wire.MsgTx) {
	if errors.Is(err, vault.ErrNotVault) {
		return
	}
	var perr *vault.ParseError
	if errors.As(err, &perr) {
		s.metrics.ObserveParseError(string(perr.Kind))
		s.logger.Warn("dropping undecodable vault transaction", zap.Error(perr))
		return
	}
	txid := tx.TxHash()
	s.metrics.ObserveParseError("other")
	s.logger.Warn("dropping transaction on parse failure",
		zap.Stringer("txid", &txid), zap.Error(err))
}

// applyBlock folds the block's events into the in-memory vault index and
// state map, returning the states to persist.
func (s *Service) applyBlock(events []model.VaultEvent) []model.VaultState {
	touched := make(map[chainhash.Hash]struct{}, len(events))
	for i := range events {
		event := &events[i]
		s.vaultIndex[event.TxID] = event.VaultID
		touched[event.VaultID] = struct{}{}

		state, ok := s.vaultStates[event.VaultID]
		if !ok {
			state = &model.VaultState{Network: s.cfg.Network, OpenTxID: event.VaultID}
			s.vaultStates[event.VaultID] = state
		}
		state.Balance = event.Balance
		state.OraclePrice = event.OraclePrice
		state.OracleTimestamp = event.OracleTimestamp
		state.LiquidationPrice = event.LiquidationPrice
		state.LiquidationHash = event.LiquidationHash
		state.Custody = event.BTCCustody
		state.LastTxID = event.TxID
	}

	states := make([]model.VaultState, 0, len(touched))
	for vaultID := range touched {
		states = append(states, *s.vaultStates[vaultID])
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].OpenTxID.String() < states[j].OpenTxID.String()
	})
	return states
}

// persistBlock writes a block's extraction results in dependency order and
// the cursor strictly last. Failures retry with a fixed pause; when the
// retries run out the indexing loop stops for good.
func (s *Service) persistBlock(ctx context.Context, events []model.VaultEvent, unitTxs []model.UnitTx, states []model.VaultState, cursor model.Cursor) error {
	var lastErr error
	for attempt := 0; attempt < persistRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying block persist",
				zap.Int("attempt", attempt+1), zap.Error(lastErr))
			if err := s.sleep(ctx, persistRetryDelay); err != nil {
				return fmt.Errorf("%w: %v", errPersistence, lastErr)
			}
		}
		lastErr = s.persistOnce(ctx, events, unitTxs, states, cursor)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", errPersistence, lastErr)
}

func (s *Service) persistOnce(ctx context.Context, events []model.VaultEvent, unitTxs []model.UnitTx, states []model.VaultState, cursor model.Cursor) error {
	if err := s.repo.InsertVaultEvents(ctx, events); err != nil {
		return err
	}
	if err := s.repo.InsertUnitTxs(ctx, unitTxs); err != nil {
		return err
	}
	if err := s.repo.UpsertVaultStates(ctx, states); err != nil {
		return err
	}
	return s.repo.SaveCursor(ctx, cursor)
}
