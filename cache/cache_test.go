package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/cexline/spreadscan/ohlcv"
	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

type fakeKV struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failing bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.failing {
		return errors.New("connection refused")
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.failing {
		return nil, errors.New("connection refused")
	}
	val, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (f *fakeKV) Ping(context.Context) error {
	if f.failing {
		return errors.New("connection refused")
	}
	return nil
}

func TestKey(t *testing.T) {
	assert.Equal(t, "OHLC:42", Key(42))
	assert.Equal(t, "OHLC:BTC/USDT:binance:4h", CompareKey("BTC/USDT", "binance", "4h"))
}

func TestSetGetSeries_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	c := newWithClient(kv)
	ctx := context.Background()

	series := ohlcv.Series{
		{1000, 1, 2, 0.5, 1.5, 100},
		{2000, 1.5, 2.5, 1, 2, 200},
	}
	require.Equal(t, true, c.SetSeries(ctx, Key(7), series, time.Hour))
	assert.Equal(t, time.Hour, kv.ttls[Key(7)])

	got, ok := c.GetSeries(ctx, Key(7))
	require.Equal(t, true, ok)
	assert.DeepEqual(t, series, got)
}

func TestGetSeries_Miss(t *testing.T) {
	c := newWithClient(newFakeKV())
	got, ok := c.GetSeries(context.Background(), Key(404))
	assert.Equal(t, false, ok)
	assert.Equal(t, 0, len(got))
}

func TestGetSeries_CorruptPayload(t *testing.T) {
	kv := newFakeKV()
	c := newWithClient(kv)
	kv.data[Key(1)] = []byte("{not json")

	_, ok := c.GetSeries(context.Background(), Key(1))
	assert.Equal(t, false, ok)
}

func TestStoreErrors_DegradeToMiss(t *testing.T) {
	kv := newFakeKV()
	kv.failing = true
	c := newWithClient(kv)
	ctx := context.Background()

	assert.Equal(t, false, c.SetSeries(ctx, Key(1), ohlcv.Series{{1000, 1, 1, 1, 1, 1}}, time.Minute))
	_, ok := c.GetSeries(ctx, Key(1))
	assert.Equal(t, false, ok)
}

func TestUnavailableCache_AlwaysMisses(t *testing.T) {
	kv := newFakeKV()
	c := newWithClient(kv)
	c.available = false
	ctx := context.Background()

	assert.Equal(t, false, c.SetSeries(ctx, Key(1), ohlcv.Series{{1000, 1, 1, 1, 1, 1}}, time.Minute))
	_, ok := c.GetSeries(ctx, Key(1))
	assert.Equal(t, false, ok)
	assert.Equal(t, 0, len(kv.data), "degraded cache must not touch the store")
}
