// Package exchange provides a unified read interface over the supported
// trading venues: market listings and OHLCV candle downloads.
package exchange

import (
	"context"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/ohlcv"
)

// SymbolList pairs an exchange with the symbols it quotes.
type SymbolList struct {
	Exchange config.Exchange `json:"id"`
	Symbols  []string        `json:"symbols"`
}

// Gateway is the unified read interface to the supported exchanges.
//
// FetchOHLCV never returns an error: gateway, network and symbol failures
// are logged and collapse to a nil series so a single venue outage cannot
// stall a batch. Retry is the next run's job, not this layer's.
type Gateway interface {
	// ListExchangesWithSymbols loads the market catalog of every
	// requested exchange concurrently. Venues that fail to respond are
	// omitted from the result.
	ListExchangesWithSymbols(ctx context.Context, exchanges []config.Exchange) []SymbolList
	// FetchOHLCV downloads one candle series. Timestamps are epoch
	// milliseconds UTC. Returns nil when the venue cannot serve the
	// request.
	FetchOHLCV(ctx context.Context, pair string, exch config.Exchange, interval string) ohlcv.Series
	// Close releases all exchange handles.
	Close() error
}
