package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"github.com/NCrashed/mutinynet-indexer/internal/chain/headers"
	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/p2p"
)

// errDisconnected ends a session run; the service reconnects with backoff.
var errDisconnected = errors.New("peer disconnected")

// syncHeaders is phase 1: pull header batches with rolling locators until
// the peer returns an empty batch.
func (s *Service) syncHeaders(ctx context.Context, session Session) error {
	s.logger.Info("starting header sync",
		zap.Uint32("chain_height", s.cache.Height()),
		zap.Int32("remote_height", session.RemoteHeight()))

	if err := session.RequestHeaders(s.cache.Locator(), chainhash.Hash{}); err != nil {
		return fmt.Errorf("request headers: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-session.Events():
			if !ok {
				return errDisconnected
			}
			switch e := event.(type) {
			case p2p.HeadersEvent:
				if len(e.Headers) == 0 {
					s.logger.Info("header sync complete",
						zap.Uint32("chain_height", s.cache.Height()))
					return nil
				}
				if err := s.ingestHeaders(e.Headers); err != nil {
					return err
				}
				if err := session.RequestHeaders(s.cache.Locator(), chainhash.Hash{}); err != nil {
					return fmt.Errorf("request headers: %w", err)
				}
			case p2p.DisconnectedEvent:
				return disconnectError(e)
			case p2p.ReadyEvent, p2p.BlockEvent:
				// Ready only repeats what the completed handshake already
				// reported; stray blocks from a previous window carry
				// nothing to do here.
			}
		}
	}
}

// applyEvent handles events arriving outside an explicit sync or download
// loop: steady-state header announcements and session termination.
func (s *Service) applyEvent(session Session, event p2p.Event) error {
	switch e := event.(type) {
	case p2p.HeadersEvent:
		if len(e.Headers) == 0 {
			return nil
		}
		if err := s.ingestHeaders(e.Headers); err != nil {
			return err
		}
		return session.RequestHeaders(s.cache.Locator(), chainhash.Hash{})
	case p2p.DisconnectedEvent:
		return disconnectError(e)
	default:
		return nil
	}
}

// ingestHeaders feeds one batch into the cache, queues connected headers
// for persistence and reacts to reorgs that undercut the cursor.
func (s *Service) ingestHeaders(batch []*wire.BlockHeader) error {
	var connected, orphaned, rejected int
	for _, header := range batch {
		res := s.cache.Insert(*header)
		s.metrics.ObserveHeaderInsert(res.Status.String())

		switch res.Status {
		case headers.StatusConnected:
			connected++
			if err := s.queueHeader(*header, res); err != nil {
				return err
			}
		case headers.StatusOrphan:
			orphaned++
		case headers.StatusDuplicate:
		default:
			rejected++
			s.logger.Warn("header rejected",
				zap.Stringer("hash", &res.Hash),
				zap.String("status", res.Status.String()))
		}

		if res.Reorg != nil {
			s.handleReorg(res.Reorg)
		}
	}

	s.metrics.SetChainHeight(s.cache.Height())
	s.logger.Debug("header batch ingested",
		zap.Int("batch", len(batch)),
		zap.Int("connected", connected),
		zap.Int("orphaned", orphaned),
		zap.Int("rejected", rejected),
		zap.Uint32("chain_height", s.cache.Height()))
	return nil
}

func (s *Service) queueHeader(header wire.BlockHeader, res headers.InsertResult) error {
	var raw bytes.Buffer
	raw.Grow(wire.MaxBlockHeaderPayload)
	if err := header.Serialize(&raw); err != nil {
		return fmt.Errorf("serialize header: %w", err)
	}
	row := model.HeaderRecord{
		Network:       s.cfg.Network,
		BlockHash:     res.Hash.String(),
		Height:        res.Height,
		PrevBlockHash: header.PrevBlock.String(),
		Raw:           raw.Bytes(),
		InLongest:     res.IsNewBestTip,
	}
	return s.headerFlush.Add(context.Background(), row)
}

// handleReorg rewinds the cursor when the fork point is below it; the
// rewound range is re-scanned forward. Notifications already emitted for
// orphaned blocks are not retracted.
func (s *Service) handleReorg(reorg *headers.Reorg) {
	s.metrics.ObserveReorg(reorg.Depth())
	s.logger.Warn("main chain reorganization",
		zap.Uint32("depth", reorg.Depth()),
		zap.Uint32("common_height", reorg.CommonHeight),
		zap.Int("added", len(reorg.Added)))

	if s.cursor == nil || reorg.CommonHeight >= s.cursor.Height {
		return
	}
	rewound := model.Cursor{
		Network:   s.cfg.Network,
		Height:    reorg.CommonHeight,
		BlockHash: reorg.CommonAncestor,
	}
	s.cursor = &rewound
	s.metrics.SetScannedHeight(rewound.Height)
	s.logger.Warn("cursor rewound below fork point", zap.Uint32("height", rewound.Height))
	if err := s.repo.SaveCursor(context.Background(), rewound); err != nil {
		// The rewind is retried with the next scanned block's cursor write.
		s.logger.Error("failed to persist rewound cursor", zap.Error(err))
	}
}

func disconnectError(e p2p.DisconnectedEvent) error {
	if e.Reason != nil {
		return fmt.Errorf("%w: %v", errDisconnected, e.Reason)
	}
	return errDisconnected
}
