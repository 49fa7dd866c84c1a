package clickhouse

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/golang/mock/gomock"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
)

func (s *RepositorySuite) expectMetrics() {
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Any()).AnyTimes()
}

func (s *RepositorySuite) TestInsertVaultEventsAndRangeHistory() {
	s.expectMetrics()

	event := newEvent(model.ActionBorrow, 0x02, 1731259950, 2988, 0)
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, []model.VaultEvent{event}))
	s.Equal(uint64(1), s.countRows("vault_transactions"))

	start := uint32(1731259900)
	end := uint32(1731260000)
	events, err := s.repo.RangeHistoryAll(s.testCtx, model.Mutinynet, &start, &end)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.TxID, events[0].TxID)
	s.Equal(event.VaultID, events[0].VaultID)
	s.Equal(event.Action, events[0].Action)
	s.Equal(event.UnitVolume, events[0].UnitVolume)
	s.Equal(event.OracleTimestamp, events[0].OracleTimestamp)

	// Outside the range: empty result.
	lateStart := uint32(1731260000)
	events, err = s.repo.RangeHistoryAll(s.testCtx, model.Mutinynet, &lateStart, nil)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *RepositorySuite) TestInsertVaultEventsReplacesOnRescan() {
	s.expectMetrics()

	event := newEvent(model.ActionOpen, 0x03, 1731259950, 100, 0)
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, []model.VaultEvent{event}))

	// A rewound scan re-extracts the same event; the row is replaced, not
	// duplicated.
	event.UnitVolume = 150
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, []model.VaultEvent{event}))

	events, err := s.repo.RangeHistoryAll(s.testCtx, model.Mutinynet, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(int64(150), events[0].UnitVolume)
}

func (s *RepositorySuite) TestVaultHistory() {
	s.expectMetrics()

	mine := newEvent(model.ActionOpen, 0x04, 1731259900, 100, 0)
	other := newEvent(model.ActionOpen, 0x05, 1731259900, 100, 0)
	other.VaultID = hashN(0x99)
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, []model.VaultEvent{mine, other}))

	events, err := s.repo.VaultHistory(s.testCtx, model.Mutinynet, mine.VaultID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(mine.TxID, events[0].TxID)
}

func (s *RepositorySuite) TestOverallVolume() {
	s.expectMetrics()

	events := []model.VaultEvent{
		newEvent(model.ActionBorrow, 0x10, 1731259910, 100, 1000),
		newEvent(model.ActionBorrow, 0x11, 1731259920, 50, 0),
		newEvent(model.ActionRepay, 0x12, 1731259930, -30, -200),
		newEvent(model.ActionBorrow, 0x13, 1731259940, 10, 0),
	}
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, events))

	volume, err := s.repo.OverallVolume(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Equal(int64(130), volume.UnitVolume)
	s.Equal(int64(800), volume.BTCVolume)
}

func (s *RepositorySuite) TestActionHistoryBuckets() {
	s.expectMetrics()

	events := []model.VaultEvent{
		newEvent(model.ActionBorrow, 0x20, 3600+10, 5, 0),
		newEvent(model.ActionBorrow, 0x21, 3600+20, 7, 0),
		newEvent(model.ActionBorrow, 0x22, 2*3600+5, 11, 0),
		newEvent(model.ActionRepay, 0x23, 3600+30, -3, 0),
	}
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, events))

	buckets, err := s.repo.ActionHistory(s.testCtx, model.Mutinynet, model.ActionBorrow, 3600)
	s.Require().NoError(err)
	s.Require().Len(buckets, 2)
	s.Equal(uint32(3600), buckets[0].TimestampStart)
	s.Equal(int64(12), buckets[0].UnitVolume)
	s.Equal(uint32(2*3600), buckets[1].TimestampStart)
	s.Equal(int64(11), buckets[1].UnitVolume)
}

func (s *RepositorySuite) TestCursorRoundTrip() {
	s.expectMetrics()

	cursor, err := s.repo.LoadCursor(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Nil(cursor)

	want := model.Cursor{Network: model.Mutinynet, Height: 1590395, BlockHash: hashN(0xb0)}
	s.Require().NoError(s.repo.SaveCursor(s.testCtx, want))

	got, err := s.repo.LoadCursor(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(want.Height, got.Height)
	s.Equal(want.BlockHash, got.BlockHash)

	// A rewound cursor (lower height, later write) wins.
	rewound := model.Cursor{Network: model.Mutinynet, Height: 1527650, BlockHash: hashN(0xb1)}
	s.Require().NoError(s.repo.SaveCursor(s.testCtx, rewound))

	got, err = s.repo.LoadCursor(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(rewound.Height, got.Height)
}

func (s *RepositorySuite) TestHeadersRoundTrip() {
	s.expectMetrics()

	rows := []model.HeaderRecord{
		{Network: model.Mutinynet, BlockHash: hashN(1).String(), Height: 0, PrevBlockHash: chainhash.Hash{}.String(), Raw: []byte{1}, InLongest: true},
		{Network: model.Mutinynet, BlockHash: hashN(2).String(), Height: 1, PrevBlockHash: hashN(1).String(), Raw: []byte{2}, InLongest: true},
	}
	s.Require().NoError(s.repo.InsertHeaders(s.testCtx, rows))

	var seen []model.HeaderRecord
	err := s.repo.LoadHeaders(s.testCtx, model.Mutinynet, func(row model.HeaderRecord) error {
		seen = append(seen, row)
		return nil
	})
	s.Require().NoError(err)
	s.Require().Len(seen, 2)
	s.Equal(uint32(0), seen[0].Height)
	s.Equal(uint32(1), seen[1].Height)
	s.Equal(rows[1].BlockHash, seen[1].BlockHash)
}

func (s *RepositorySuite) TestUnitTxsAndRawLookup() {
	s.expectMetrics()

	unit := model.UnitTx{
		Network:    model.Mutinynet,
		TxID:       hashN(0x30),
		UnitAmount: 10528,
		Height:     1590300,
		RawTx:      []byte{0xaa, 0xbb},
	}
	s.Require().NoError(s.repo.InsertUnitTxs(s.testCtx, []model.UnitTx{unit}))

	raw, err := s.repo.GetRawTransaction(s.testCtx, model.Mutinynet, unit.TxID)
	s.Require().NoError(err)
	s.Equal(unit.RawTx, raw)

	missing, err := s.repo.GetRawTransaction(s.testCtx, model.Mutinynet, hashN(0x31))
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *RepositorySuite) TestVaultTxIndex() {
	s.expectMetrics()

	open := newEvent(model.ActionOpen, 0x40, 1731259900, 100, 0)
	borrow := newEvent(model.ActionBorrow, 0x41, 1731259950, 50, 0)
	s.Require().NoError(s.repo.InsertVaultEvents(s.testCtx, []model.VaultEvent{open, borrow}))

	index, err := s.repo.LoadVaultTxIndex(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Require().Len(index, 2)
	s.Equal(open.VaultID, index[open.TxID])
	s.Equal(borrow.VaultID, index[borrow.TxID])
}

func (s *RepositorySuite) TestUpsertVaultStates() {
	s.expectMetrics()

	state := model.VaultState{
		Network:  model.Mutinynet,
		OpenTxID: hashN(0x50),
		Balance:  100,
		Custody:  1000000,
		LastTxID: hashN(0x50),
	}
	s.Require().NoError(s.repo.UpsertVaultStates(s.testCtx, []model.VaultState{state}))

	state.Balance = 300
	state.LastTxID = hashN(0x51)
	s.Require().NoError(s.repo.UpsertVaultStates(s.testCtx, []model.VaultState{state}))

	states, err := s.repo.LoadVaultStates(s.testCtx, model.Mutinynet)
	s.Require().NoError(err)
	s.Require().Len(states, 1)
	s.Equal(uint32(300), states[0].Balance)
	s.Equal(hashN(0x51), states[0].LastTxID)
}
