package indexer

import (
	"context"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/NCrashed/mutinynet-indexer/internal/chain/headers"
	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/p2p"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// HeaderCache is the in-memory header index and reorg engine.
	HeaderCache interface {
		Insert(header wire.BlockHeader) headers.InsertResult
		BestTip() (chainhash.Hash, uint32, *big.Int)
		Height() uint32
		Header(hash chainhash.Hash) (wire.BlockHeader, uint32, bool)
		HeaderAt(height uint32) (chainhash.Hash, bool)
		MainChainHashes(from, to uint32) []chainhash.Hash
		Locator() []*chainhash.Hash
	}

	// Session is one live peer connection.
	Session interface {
		Events() <-chan p2p.Event
		RequestHeaders(locator []*chainhash.Hash, stop chainhash.Hash) error
		RequestBlocks(hashes []chainhash.Hash) error
		RemoteHeight() int32
		Close()
	}

	// Dialer opens a fresh session; the service redials with backoff.
	Dialer func(ctx context.Context) (Session, error)

	// Repository is the persistence contract consumed by the scan loop.
	Repository interface {
		InsertHeaders(ctx context.Context, headers []model.HeaderRecord) error
		LoadHeaders(ctx context.Context, network model.Network, visit func(model.HeaderRecord) error) error
		InsertVaultEvents(ctx context.Context, events []model.VaultEvent) error
		InsertUnitTxs(ctx context.Context, txs []model.UnitTx) error
		UpsertVaultStates(ctx context.Context, states []model.VaultState) error
		LoadVaultStates(ctx context.Context, network model.Network) ([]model.VaultState, error)
		LoadVaultTxIndex(ctx context.Context, network model.Network) (map[chainhash.Hash]chainhash.Hash, error)
		GetRawTransaction(ctx context.Context, network model.Network, txid chainhash.Hash) ([]byte, error)
		LoadCursor(ctx context.Context, network model.Network) (*model.Cursor, error)
		SaveCursor(ctx context.Context, cursor model.Cursor) error
	}

	// Bus publishes freshly persisted events to subscribers.
	Bus interface {
		Publish(event model.VaultEvent)
	}

	// Metrics observes the sync and scan progress.
	Metrics interface {
		ObserveHeaderInsert(status string)
		SetChainHeight(height uint32)
		SetScannedHeight(height uint32)
		ObserveBlockScan(err error, started time.Time)
		ObserveVaultEvent(action string)
		ObserveParseError(kind string)
		ObserveReorg(depth uint32)
	}
)
