package exchange

import "strings"

// NormalizeSymbol maps venue-specific symbol spellings onto the canonical
// BASE/QUOTE form used as pair identity across the catalog, e.g.
// BTC-USDT -> BTC/USDT. Symbols already in canonical form pass through.
func NormalizeSymbol(symbol string) string {
	if strings.Contains(symbol, "/") {
		return symbol
	}
	return strings.ReplaceAll(symbol, "-", "/")
}
