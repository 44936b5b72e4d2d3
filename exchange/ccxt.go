package exchange

import (
	"context"
	"sort"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/ohlcv"
)

const (
	// ccxtTimeoutMs is handed to the exchange SDK; fetches exceeding it
	// surface as errors and collapse to a nil series.
	ccxtTimeoutMs = 30000

	// Market catalogs are near-static; memoize them so the universe
	// endpoints do not hammer the venues.
	marketCacheTTL     = 10 * time.Minute
	marketCacheCleanup = 30 * time.Minute
)

// CCXTGateway implements Gateway on top of the ccxt exchange bindings.
// Exchange handles are per-process singletons, created lazily and closed
// on shutdown.
type CCXTGateway struct {
	mu      sync.Mutex
	handles map[config.Exchange]ccxt.IExchange
	markets *gocache.Cache
}

// NewCCXTGateway constructs a gateway with no handles open yet.
func NewCCXTGateway() *CCXTGateway {
	return &CCXTGateway{
		handles: make(map[config.Exchange]ccxt.IExchange),
		markets: gocache.New(marketCacheTTL, marketCacheCleanup),
	}
}

// handle returns the singleton ccxt instance for an exchange, creating it
// on first use.
func (g *CCXTGateway) handle(exch config.Exchange) (ccxt.IExchange, error) {
	if !config.IsSupportedExchange(string(exch)) {
		return nil, errors.Errorf("unsupported exchange %q", exch)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.handles[exch]; ok {
		return h, nil
	}

	h := ccxt.CreateExchange(string(exch), map[string]interface{}{
		"enableRateLimit": true,
		"timeout":         ccxtTimeoutMs,
	})
	if h == nil {
		return nil, errors.Errorf("could not create exchange instance for %q", exch)
	}
	g.handles[exch] = h
	return h, nil
}

// ListExchangesWithSymbols loads market catalogs concurrently. A venue
// that errors is logged and dropped from the result.
func (g *CCXTGateway) ListExchangesWithSymbols(ctx context.Context, exchanges []config.Exchange) []SymbolList {
	var wg sync.WaitGroup
	results := make([]*SymbolList, len(exchanges))

	for i, exch := range exchanges {
		wg.Add(1)
		go func(i int, exch config.Exchange) {
			defer wg.Done()
			symbols, err := g.symbols(exch)
			if err != nil {
				log.WithError(err).WithField("exchange", exch).Error("Could not load market catalog")
				return
			}
			results[i] = &SymbolList{Exchange: exch, Symbols: symbols}
		}(i, exch)
	}
	wg.Wait()

	out := make([]SymbolList, 0, len(exchanges))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (g *CCXTGateway) symbols(exch config.Exchange) ([]string, error) {
	if cached, ok := g.markets.Get(string(exch)); ok {
		return cached.([]string), nil
	}

	h, err := g.handle(exch)
	if err != nil {
		return nil, err
	}
	if _, err := h.LoadMarkets(); err != nil {
		return nil, errors.Wrapf(err, "load markets for %s", exch)
	}

	raw := h.GetSymbols()
	symbols := make([]string, 0, len(raw))
	for _, s := range raw {
		symbols = append(symbols, NormalizeSymbol(s))
	}
	sort.Strings(symbols)

	g.markets.Set(string(exch), symbols, gocache.DefaultExpiration)
	return symbols, nil
}

// FetchOHLCV downloads one candle series. All failures are logged and
// swallowed to nil per the gateway contract.
func (g *CCXTGateway) FetchOHLCV(ctx context.Context, pair string, exch config.Exchange, interval string) ohlcv.Series {
	h, err := g.handle(exch)
	if err != nil {
		log.WithError(err).WithField("exchange", exch).Error("No exchange handle")
		return nil
	}

	bars, err := h.FetchOHLCV(
		NormalizeSymbol(pair),
		ccxt.WithFetchOHLCVTimeframe(interval),
	)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"exchange": exch,
			"pair":     pair,
			"interval": interval,
		}).Warn("OHLCV fetch failed")
		return nil
	}

	series := make(ohlcv.Series, 0, len(bars))
	for _, bar := range bars {
		series = append(series, []float64{
			float64(bar.Timestamp),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		})
	}
	return series
}

// Close releases every exchange handle opened by this process.
func (g *CCXTGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for exch, h := range g.handles {
		if errs := h.Close(); len(errs) > 0 && firstErr == nil {
			firstErr = errors.Errorf("closing %s: %v", exch, errs)
		}
		delete(g.handles, exch)
	}
	return firstErr
}
