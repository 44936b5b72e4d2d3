package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

// Postgres contract tests run only when a live database is provided, e.g.
//
//	SPREADSCAN_TEST_POSTGRES=1 POSTGRES_HOST=localhost go test ./catalog/...
func pgStore(t *testing.T) *PGStore {
	t.Helper()
	if os.Getenv("SPREADSCAN_TEST_POSTGRES") == "" {
		t.Skip("set SPREADSCAN_TEST_POSTGRES to run postgres catalog tests")
	}
	s, err := NewPGStore(context.Background(), config.PostgresSettingsFromEnv())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPGStore_EndToEnd(t *testing.T) {
	s := pgStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPairs(ctx, []string{"BTC/USDT", "ETH/USDT"}))
	require.NoError(t, s.UpsertPairs(ctx, []string{"BTC/USDT"}), "duplicate pair upsert must be benign")
	require.NoError(t, s.UpsertPairExchanges(ctx, "binance", []string{"BTC/USDT", "ETH/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "okx", []string{"BTC/USDT", "ETH/USDT"}))
	require.NoError(t, s.UpsertPairExchanges(ctx, "okx", []string{"BTC/USDT"}), "duplicate tuple upsert must be benign")

	rows, err := s.SelectArbitrable(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, true, len(rows) >= 4)

	require.NoError(t, s.InitBatch(ctx, rows, "1h"))
	st, err := s.BatchStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Cached)

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	require.NoError(t, s.MarkCached(ctx, ids))

	ready, err := s.ScanReady(ctx, ids[:1])
	require.NoError(t, err)
	require.Equal(t, true, len(ready) >= 1)

	fan, err := s.PairExchangesByPair(ctx, ready[0])
	require.NoError(t, err)
	require.Equal(t, true, len(fan) >= 2)

	require.NoError(t, s.SaveSpreadAndMark(ctx, SpreadMax{
		PairID:        ready[0],
		Time:          time.Now().UTC().Truncate(time.Millisecond),
		HighPEID:      fan[0].ID,
		LowPEID:       fan[1].ID,
		SpreadPercent: 1.23,
	}))

	again, err := s.ScanReady(ctx, ids[:1])
	require.NoError(t, err)
	for _, pairID := range again {
		assert.NotEqual(t, ready[0], pairID, "computed pair must not re-scan as ready")
	}

	spreads, err := s.ComputedSpreads(ctx)
	require.NoError(t, err)
	require.Equal(t, true, len(spreads) >= 1)
}
