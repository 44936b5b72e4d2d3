// Package universe computes the cross-exchange symbol matrix and applies
// the arbitrability threshold to it.
package universe

import (
	"sort"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/exchange"
)

// DefaultThreshold is the minimum number of exchanges quoting a pair for
// it to be considered arbitrable.
const DefaultThreshold = 2

// Builder turns per-exchange symbol listings into the arbitrable pair
// universe. Pure CPU, no I/O.
type Builder struct {
	threshold int
}

// NewBuilder constructs a builder; threshold values below one fall back
// to the default.
func NewBuilder(threshold int) *Builder {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Builder{threshold: threshold}
}

// Build returns the pairs quoted on at least threshold exchanges together
// with their supporting venues. Pair order is deterministic (sorted by
// name); exchange order per pair follows the input listing order.
func (b *Builder) Build(listings []exchange.SymbolList) map[string][]config.Exchange {
	// Sparse presence matrix: pair -> supporting exchanges in listing order.
	presence := make(map[string][]config.Exchange)
	for _, listing := range listings {
		seen := make(map[string]bool, len(listing.Symbols))
		for _, symbol := range listing.Symbols {
			if seen[symbol] {
				continue
			}
			seen[symbol] = true
			presence[symbol] = append(presence[symbol], listing.Exchange)
		}
	}

	out := make(map[string][]config.Exchange)
	for pair, exchanges := range presence {
		if len(exchanges) >= b.threshold {
			out[pair] = exchanges
		}
	}
	return out
}

// Pairs returns the arbitrable pair names in deterministic order.
func Pairs(matrix map[string][]config.Exchange) []string {
	names := make([]string, 0, len(matrix))
	for pair := range matrix {
		names = append(names, pair)
	}
	sort.Strings(names)
	return names
}
