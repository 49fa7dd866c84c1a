// Package indexer sequences the sync phases: header download into the
// cache, then windowed block scanning that feeds the parser, the store and
// the notification bus.
package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"github.com/NCrashed/mutinynet-indexer/internal/clock"
	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/pkg/batcher"
)

// Config is the immutable service configuration derived from the CLI.
type Config struct {
	Network     model.Network
	StartHeight uint32
	BatchSize   uint32
	Rescan      bool
}

// Service owns the indexing loop. It is the single writer of the store and
// of the cursor.
type Service struct {
	cfg     Config
	logger  *zap.Logger
	cache   HeaderCache
	repo    Repository
	bus     Bus
	dial    Dialer
	metrics Metrics
	sleep   func(context.Context, time.Duration) error

	headerFlush *batcher.Batcher[model.HeaderRecord]

	// cursor mirrors the persisted scan position; nil until the first block
	// is persisted or the cursor row is loaded.
	cursor *model.Cursor
	// vaultIndex maps every known vault transaction to its vault id.
	vaultIndex map[chainhash.Hash]chainhash.Hash
	// vaultStates holds the latest materialized state per vault.
	vaultStates map[chainhash.Hash]*model.VaultState
}

// NewService builds a Service with the given collaborators.
func NewService(
	cfg Config,
	cache HeaderCache,
	repo Repository,
	bus Bus,
	dial Dialer,
	metrics Metrics,
	logger *zap.Logger,
) (*Service, error) {
	if metrics == nil {
		return nil, errors.New("indexer metrics is required")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	logger = logger.Named("indexer").With(zap.String("network", string(cfg.Network)))

	s := &Service{
		cfg:         cfg,
		logger:      logger,
		cache:       cache,
		repo:        repo,
		bus:         bus,
		dial:        dial,
		metrics:     metrics,
		sleep:       clock.SleepWithContext,
		vaultIndex:  make(map[chainhash.Hash]chainhash.Hash),
		vaultStates: make(map[chainhash.Hash]*model.VaultState),
	}
	s.headerFlush = batcher.New(logger, s.flushHeaders, headerFlushSize, headerFlushInterval, headerFlushRPS)
	return s, nil
}

// Run drives the service until the context is cancelled. It returns nil on
// clean shutdown and an error when persistence is beyond saving.
func (s *Service) Run(ctx context.Context) error {
	if err := s.boot(ctx); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	s.headerFlush.Start(ctx)
	defer s.headerFlush.Stop()

	backoff := reconnectBase
	for {
		if ctx.Err() != nil {
			return nil
		}

		session, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("peer connection failed, backing off",
				zap.Error(err), zap.Duration("backoff", backoff))
			if sleepErr := s.sleep(ctx, jitter(backoff)); sleepErr != nil {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = reconnectBase

		err = s.runSession(ctx, session)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, errPersistence):
			return err
		default:
			s.logger.Warn("session ended, reconnecting",
				zap.Error(err), zap.Duration("backoff", backoff))
			if sleepErr := s.sleep(ctx, jitter(backoff)); sleepErr != nil {
				return nil
			}
			backoff = nextBackoff(backoff)
		}
	}
}

// boot restores persisted state: cursor (honoring --rescan), the header
// arena, the vault index and the vault states.
func (s *Service) boot(ctx context.Context) error {
	cursor, err := s.repo.LoadCursor(ctx, s.cfg.Network)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	s.cursor = cursor

	if s.cfg.Rescan {
		// Reset scan progress only; downloaded headers stay.
		rewound := model.Cursor{Network: s.cfg.Network, Height: s.cfg.StartHeight - 1}
		if err := s.repo.SaveCursor(ctx, rewound); err != nil {
			return fmt.Errorf("reset cursor for rescan: %w", err)
		}
		s.cursor = &rewound
		s.logger.Info("rescan requested, cursor reset", zap.Uint32("height", rewound.Height))
	}
	if s.cursor != nil {
		s.metrics.SetScannedHeight(s.cursor.Height)
	}

	var loaded int
	err = s.repo.LoadHeaders(ctx, s.cfg.Network, func(row model.HeaderRecord) error {
		var header wire.BlockHeader
		if err := header.Deserialize(bytes.NewReader(row.Raw)); err != nil {
			return fmt.Errorf("decode stored header %s: %w", row.BlockHash, err)
		}
		s.cache.Insert(header)
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("load headers: %w", err)
	}
	s.metrics.SetChainHeight(s.cache.Height())

	index, err := s.repo.LoadVaultTxIndex(ctx, s.cfg.Network)
	if err != nil {
		return fmt.Errorf("load vault tx index: %w", err)
	}
	s.vaultIndex = index

	states, err := s.repo.LoadVaultStates(ctx, s.cfg.Network)
	if err != nil {
		return fmt.Errorf("load vault states: %w", err)
	}
	for i := range states {
		state := states[i]
		s.vaultStates[state.OpenTxID] = &state
	}

	s.logger.Info("state restored",
		zap.Int("headers", loaded),
		zap.Uint32("chain_height", s.cache.Height()),
		zap.Int("vaults", len(s.vaultStates)),
		zap.Int("indexed_txs", len(s.vaultIndex)))
	return nil
}

// runSession drives one connected session through header sync and block
// scanning until it disconnects or the context ends.
func (s *Service) runSession(ctx context.Context, session Session) error {
	defer session.Close()

	if err := s.syncHeaders(ctx, session); err != nil {
		return err
	}

	ticker := time.NewTicker(headerPollInterval)
	defer ticker.Stop()

	for {
		if err := s.scanBlocks(ctx, session); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-session.Events():
			if !ok {
				return errors.New("session event stream closed")
			}
			if err := s.applyEvent(session, event); err != nil {
				return err
			}
		case <-ticker.C:
			if err := session.RequestHeaders(s.cache.Locator(), chainhash.Hash{}); err != nil {
				return fmt.Errorf("request headers: %w", err)
			}
		}
	}
}

func (s *Service) flushHeaders(ctx context.Context, rows []model.HeaderRecord) error {
	if err := s.repo.InsertHeaders(ctx, rows); err != nil {
		return fmt.Errorf("flush headers: %w", err)
	}
	return nil
}

func jitter(d time.Duration) time.Duration {
	return clock.Jitter(d, 0.25)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > reconnectCap {
		return reconnectCap
	}
	return d
}
