// Package testing provides gateway doubles for pipeline tests.
package testing

import (
	"context"
	"sync"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/exchange"
	"github.com/cexline/spreadscan/ohlcv"
)

// FakeGateway serves canned symbol lists and candle series keyed by
// pair and exchange. Safe for concurrent use.
type FakeGateway struct {
	mu sync.Mutex
	// Symbols maps exchange -> quoted symbols.
	Symbols map[config.Exchange][]string
	// Series maps "pair|exchange" -> canned series. Missing entries
	// behave like a venue outage: FetchOHLCV returns nil.
	Series map[string]ohlcv.Series
	// FetchCalls records every FetchOHLCV invocation.
	FetchCalls []string
	Closed     bool
}

// NewFakeGateway returns an empty fake ready for seeding.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Symbols: make(map[config.Exchange][]string),
		Series:  make(map[string]ohlcv.Series),
	}
}

// SeriesKey builds the lookup key used by Seed and FetchOHLCV.
func SeriesKey(pair string, exch config.Exchange) string {
	return pair + "|" + string(exch)
}

// Seed registers a canned series for a pair on an exchange.
func (f *FakeGateway) Seed(pair string, exch config.Exchange, s ohlcv.Series) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Series[SeriesKey(pair, exch)] = s
}

// ListExchangesWithSymbols implements exchange.Gateway.
func (f *FakeGateway) ListExchangesWithSymbols(_ context.Context, exchanges []config.Exchange) []exchange.SymbolList {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]exchange.SymbolList, 0, len(exchanges))
	for _, exch := range exchanges {
		symbols, ok := f.Symbols[exch]
		if !ok {
			continue
		}
		out = append(out, exchange.SymbolList{Exchange: exch, Symbols: symbols})
	}
	return out
}

// FetchOHLCV implements exchange.Gateway.
func (f *FakeGateway) FetchOHLCV(_ context.Context, pair string, exch config.Exchange, _ string) ohlcv.Series {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls = append(f.FetchCalls, SeriesKey(pair, exch))
	return f.Series[SeriesKey(pair, exch)]
}

// Close implements exchange.Gateway.
func (f *FakeGateway) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
