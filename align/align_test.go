package align

import (
	"testing"

	"github.com/cexline/spreadscan/ohlcv"
	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

func TestAlign_CommonTimestampsOnly(t *testing.T) {
	a := Labeled{PEID: 1, Exchange: "binance", Series: ohlcv.Series{
		{1000, 1, 1, 1, 100, 10},
		{2000, 1, 1, 1, 110, 10},
		{3000, 1, 1, 1, 120, 10},
	}}
	b := Labeled{PEID: 2, Exchange: "okx", Series: ohlcv.Series{
		{2000, 1, 1, 1, 108, 10},
		{3000, 1, 1, 1, 118, 10},
		{4000, 1, 1, 1, 130, 10},
	}}

	out := Align([]Labeled{a, b})
	require.Equal(t, 2, len(out))
	assert.DeepEqual(t, []int64{2000, 3000}, out[0].Series.Timestamps())
	assert.DeepEqual(t, []int64{2000, 3000}, out[1].Series.Timestamps())
	assert.Equal(t, int64(1), out[0].PEID)
	assert.Equal(t, 108.0, ohlcv.Close(out[1].Series[0]))
}

func TestAlign_EmptyIntersection(t *testing.T) {
	a := Labeled{PEID: 1, Series: ohlcv.Series{{1000, 1, 1, 1, 1, 1}}}
	b := Labeled{PEID: 2, Series: ohlcv.Series{{2000, 1, 1, 1, 1, 1}}}
	assert.Equal(t, 0, len(Align([]Labeled{a, b})))
}

func TestAlign_ExcludesMalformedSeries(t *testing.T) {
	good1 := Labeled{PEID: 1, Exchange: "binance", Series: ohlcv.Series{
		{1000, 1, 1, 1, 100, 10},
		{2000, 1, 1, 1, 110, 10},
	}}
	// One row has only four fields; the whole series is dropped.
	corrupt := Labeled{PEID: 2, Exchange: "okx", Series: ohlcv.Series{
		{1000, 1, 1, 1, 102, 10},
		{2000, 1, 1, 108},
	}}
	good2 := Labeled{PEID: 3, Exchange: "bybit", Series: ohlcv.Series{
		{1000, 1, 1, 1, 101, 10},
		{2000, 1, 1, 1, 111, 10},
	}}

	out := Align([]Labeled{good1, corrupt, good2})
	require.Equal(t, 2, len(out))
	assert.Equal(t, int64(1), out[0].PEID)
	assert.Equal(t, int64(3), out[1].PEID)
}

func TestAlign_FewerThanTwoUsable(t *testing.T) {
	solo := Labeled{PEID: 1, Series: ohlcv.Series{{1000, 1, 1, 1, 1, 1}}}
	assert.Equal(t, 0, len(Align([]Labeled{solo})))

	empty := Labeled{PEID: 2, Series: ohlcv.Series{}}
	assert.Equal(t, 0, len(Align([]Labeled{solo, empty})))
	assert.Equal(t, 0, len(Align(nil)))
}

func TestAlign_SortedAscending(t *testing.T) {
	a := Labeled{PEID: 1, Series: ohlcv.Series{
		{3000, 1, 1, 1, 3, 1},
		{1000, 1, 1, 1, 1, 1},
		{2000, 1, 1, 1, 2, 1},
	}}
	b := Labeled{PEID: 2, Series: ohlcv.Series{
		{2000, 1, 1, 1, 2, 1},
		{3000, 1, 1, 1, 3, 1},
		{1000, 1, 1, 1, 1, 1},
	}}
	out := Align([]Labeled{a, b})
	require.Equal(t, 2, len(out))
	assert.DeepEqual(t, []int64{1000, 2000, 3000}, out[0].Series.Timestamps())
	assert.DeepEqual(t, []int64{1000, 2000, 3000}, out[1].Series.Timestamps())
}
