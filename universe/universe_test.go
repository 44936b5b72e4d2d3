package universe

import (
	"testing"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/exchange"
	"github.com/cexline/spreadscan/testutil/assert"
	"github.com/cexline/spreadscan/testutil/require"
)

func listings() []exchange.SymbolList {
	return []exchange.SymbolList{
		{Exchange: config.Binance, Symbols: []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}},
		{Exchange: config.Okx, Symbols: []string{"BTC/USDT", "ETH/USDT"}},
		{Exchange: config.Bybit, Symbols: []string{"BTC/USDT", "XRP/USDT"}},
	}
}

func TestBuild_AppliesThreshold(t *testing.T) {
	matrix := NewBuilder(2).Build(listings())

	require.Equal(t, 2, len(matrix))
	assert.DeepEqual(t, []config.Exchange{config.Binance, config.Okx, config.Bybit}, matrix["BTC/USDT"])
	assert.DeepEqual(t, []config.Exchange{config.Binance, config.Okx}, matrix["ETH/USDT"])
	_, ok := matrix["SOL/USDT"]
	assert.Equal(t, false, ok, "single-exchange pair must be dropped")
	_, ok = matrix["XRP/USDT"]
	assert.Equal(t, false, ok)
}

func TestBuild_ThresholdThree(t *testing.T) {
	matrix := NewBuilder(3).Build(listings())
	require.Equal(t, 1, len(matrix))
	assert.Equal(t, 3, len(matrix["BTC/USDT"]))
}

func TestBuild_Deterministic(t *testing.T) {
	a := NewBuilder(2).Build(listings())
	b := NewBuilder(2).Build(listings())
	assert.DeepEqual(t, a, b)
	assert.DeepEqual(t, Pairs(a), Pairs(b))
	assert.DeepEqual(t, []string{"BTC/USDT", "ETH/USDT"}, Pairs(a))
}

func TestBuild_DuplicateSymbolsCountedOnce(t *testing.T) {
	matrix := NewBuilder(2).Build([]exchange.SymbolList{
		{Exchange: config.Binance, Symbols: []string{"BTC/USDT", "BTC/USDT"}},
		{Exchange: config.Okx, Symbols: []string{"BTC/USDT"}},
	})
	require.Equal(t, 1, len(matrix))
	assert.Equal(t, 2, len(matrix["BTC/USDT"]), "duplicate listing must not double count")
}

func TestBuild_Empty(t *testing.T) {
	matrix := NewBuilder(2).Build(nil)
	assert.Equal(t, 0, len(matrix))
	assert.Equal(t, 0, len(Pairs(matrix)))
}

func TestNewBuilder_InvalidThreshold(t *testing.T) {
	matrix := NewBuilder(0).Build(listings())
	// falls back to the default threshold of two
	assert.Equal(t, 2, len(matrix))
}
