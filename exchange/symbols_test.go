package exchange

import (
	"testing"

	"github.com/cexline/spreadscan/testutil/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{"BTC/USDT", "BTC/USDT"},
		{"BTC-USDT", "BTC/USDT"},
		{"DOGE-USDT", "DOGE/USDT"},
		{"ETH/BTC", "ETH/BTC"},
		{"SOLUSDT", "SOLUSDT"},
	}
	for _, tt := range testCases {
		assert.Equal(t, tt.out, NormalizeSymbol(tt.in))
	}
}
