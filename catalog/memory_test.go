package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

func seedStore(t *testing.T) (*MemoryStore, []PairExchange) {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertPairs(ctx, []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "binance", []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "okx", []string{"BTC/USDT", "ETH/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "bybit", []string{"BTC/USDT"}))

	rows, err := s.SelectArbitrable(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, s.InitBatch(ctx, rows, "1h"))
	return s, rows
}

func TestUpsertPairs_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertPairs(ctx, []string{"BTC/USDT", "BTC/USDT"}))
	require.NoError(t, s.UpsertPairs(ctx, []string{"BTC/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "binance", []string{"BTC/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "binance", []string{"BTC/USDT"}))

	rows, err := s.SelectArbitrable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(rows), "duplicate upserts must collapse to one row")
}

func TestSelectArbitrable_Threshold(t *testing.T) {
	s, rows := seedStore(t)

	// BTC on 3 venues and ETH on 2 pass threshold 2; SOL (1 venue) does not.
	require.Equal(t, 5, len(rows))
	for _, r := range rows {
		assert.NotEqual(t, "SOL/USDT", r.PairName)
	}

	three, err := s.SelectArbitrable(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 3, len(three))
	for _, r := range three {
		assert.Equal(t, "BTC/USDT", r.PairName)
	}
}

func TestSelectArbitrable_DeterministicOrder(t *testing.T) {
	s, _ := seedStore(t)
	a, err := s.SelectArbitrable(context.Background(), 2)
	require.NoError(t, err)
	b, err := s.SelectArbitrable(context.Background(), 2)
	require.NoError(t, err)
	assert.DeepEqual(t, a, b)
	for i := 1; i < len(a); i++ {
		lessOrEq := a[i-1].PairID < a[i].PairID ||
			(a[i-1].PairID == a[i].PairID && a[i-1].ID < a[i].ID)
		assert.Equal(t, true, lessOrEq, "rows must be ordered by (pair_id, pe_id)")
	}
}

func TestScanReady_FullFanRequired(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	btc := peIDsForPair(rows, "BTC/USDT")
	require.Equal(t, 3, len(btc))

	// Only part of the fan cached: not ready yet.
	require.NoError(t, s.MarkCached(ctx, btc[:2]))
	ready, err := s.ScanReady(ctx, btc[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, len(ready), "pair with uncached PE must not be ready")

	// Remaining PE cached in a later chunk: now the pair shows up,
	// even though the chunk only carried one of its PE ids.
	require.NoError(t, s.MarkCached(ctx, btc[2:]))
	ready, err = s.ScanReady(ctx, btc[2:])
	require.NoError(t, err)
	require.Equal(t, 1, len(ready))
	assert.Equal(t, rows[0].PairID, ready[0])
}

func TestScanReady_ExcludesComputed(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	eth := peIDsForPair(rows, "ETH/USDT")
	require.NoError(t, s.MarkCached(ctx, eth))

	ready, err := s.ScanReady(ctx, eth)
	require.NoError(t, err)
	require.Equal(t, 1, len(ready))

	spread := SpreadMax{
		PairID:        ready[0],
		Time:          time.UnixMilli(1000).UTC(),
		HighPEID:      eth[0],
		LowPEID:       eth[1],
		SpreadPercent: 1.5,
	}
	require.NoError(t, s.SaveSpreadAndMark(ctx, spread))

	ready, err = s.ScanReady(ctx, eth)
	require.NoError(t, err)
	assert.Equal(t, 0, len(ready), "computed pair must never be returned again")
}

func TestSaveSpreadAndMark_UpsertAndFlagFlip(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	eth := peIDsForPair(rows, "ETH/USDT")
	pairID := pairIDForName(rows, "ETH/USDT")
	require.NoError(t, s.MarkCached(ctx, eth))

	first := SpreadMax{PairID: pairID, Time: time.UnixMilli(1000).UTC(), HighPEID: eth[0], LowPEID: eth[1], SpreadPercent: 1.0}
	require.NoError(t, s.SaveSpreadAndMark(ctx, first))

	// Re-run overwrites: last writer wins.
	second := first
	second.SpreadPercent = 2.5
	require.NoError(t, s.SaveSpreadAndMark(ctx, second))

	got, ok := s.SpreadFor(pairID)
	require.Equal(t, true, ok)
	assert.Equal(t, 2.5, got.SpreadPercent)

	// computed flips for every PE of the pair; computed implies cached.
	for _, peID := range eth {
		cached, computed, persisted, ok := s.TaskState(peID)
		require.Equal(t, true, ok)
		assert.Equal(t, true, cached)
		assert.Equal(t, true, computed)
		assert.Equal(t, true, persisted, "persisted tracks computed in lock step")
	}
}

func TestInitBatch_ResetsState(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	all := make([]int64, 0, len(rows))
	for _, r := range rows {
		all = append(all, r.ID)
	}
	require.NoError(t, s.MarkCached(ctx, all))

	st, err := s.BatchStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.Cached)

	require.NoError(t, s.InitBatch(ctx, rows, "1h"))
	st, err = s.BatchStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Cached, "init must reset cached count to zero")
	assert.Equal(t, int64(0), st.SpreadsComputed)
}

func TestBatchStatusCounts_Progress(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	eth := peIDsForPair(rows, "ETH/USDT")
	pairID := pairIDForName(rows, "ETH/USDT")
	require.NoError(t, s.MarkCached(ctx, eth))
	require.NoError(t, s.SaveSpreadAndMark(ctx, SpreadMax{
		PairID: pairID, Time: time.UnixMilli(2000).UTC(),
		HighPEID: eth[0], LowPEID: eth[1], SpreadPercent: 0.7,
	}))

	st, err := s.BatchStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalPairs)
	assert.Equal(t, int64(5), st.TotalTasks)
	assert.Equal(t, int64(2), st.Cached)
	assert.Equal(t, int64(1), st.SpreadsComputed)
	assert.Equal(t, 50.0, st.Progress)
}

func TestComputedSpreads_OrderedByPercentDesc(t *testing.T) {
	s, rows := seedStore(t)
	ctx := context.Background()

	btc := peIDsForPair(rows, "BTC/USDT")
	eth := peIDsForPair(rows, "ETH/USDT")
	require.NoError(t, s.SaveSpreadAndMark(ctx, SpreadMax{
		PairID: pairIDForName(rows, "BTC/USDT"), Time: time.UnixMilli(1000).UTC(),
		HighPEID: btc[0], LowPEID: btc[1], SpreadPercent: 0.4,
	}))
	require.NoError(t, s.SaveSpreadAndMark(ctx, SpreadMax{
		PairID: pairIDForName(rows, "ETH/USDT"), Time: time.UnixMilli(1000).UTC(),
		HighPEID: eth[1], LowPEID: eth[0], SpreadPercent: 3.2,
	}))

	spreads, err := s.ComputedSpreads(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, len(spreads))
	assert.Equal(t, "ETH/USDT", spreads[0].PairName)
	assert.Equal(t, 3.2, spreads[0].SpreadPercent)
	assert.Equal(t, "binance", spreads[1].HighExchange)
	assert.Equal(t, "okx", spreads[1].LowExchange)
}

func peIDsForPair(rows []PairExchange, name string) []int64 {
	out := make([]int64, 0)
	for _, r := range rows {
		if r.PairName == name {
			out = append(out, r.ID)
		}
	}
	return out
}

func pairIDForName(rows []PairExchange, name string) int64 {
	for _, r := range rows {
		if r.PairName == name {
			return r.PairID
		}
	}
	return 0
}
