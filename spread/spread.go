// Package spread computes the maximum cross-venue close-price spread
// over aligned candle series.
package spread

import (
	"github.com/cexline/spreadscan/align"
	"github.com/cexline/spreadscan/ohlcv"
)

// Max is the widest relative spread found across a set of aligned series.
type Max struct {
	// Time is the bucket timestamp, epoch milliseconds.
	Time int64
	// HighPEID / LowPEID identify the venues quoting the extreme closes.
	HighPEID     int64
	LowPEID      int64
	HighExchange string
	LowExchange  string
	// SpreadPercent is (max-min) relative to the midpoint, in percent.
	SpreadPercent float64
}

// Percent computes the relative spread between two closes against their
// midpoint. Degenerate inputs (both closes zero) yield zero.
func Percent(high, low float64) float64 {
	mid := (high + low) / 2
	if mid == 0 {
		return 0
	}
	return (high - low) / mid * 100
}

// Compute scans every shared bucket of the aligned inputs and returns the
// one with the widest relative close spread. All inputs must carry the
// same timestamps in the same order, which is what align.Align produces.
// Ties on spread go to the earliest bucket; ties on price within a bucket
// go to the first series in input order. The second return is false when
// fewer than two series or no buckets are available.
func Compute(inputs []align.Labeled) (Max, bool) {
	if len(inputs) < 2 || len(inputs[0].Series) == 0 {
		return Max{}, false
	}

	var best Max
	found := false
	for bucket := range inputs[0].Series {
		hi, lo := 0, 0
		for i := 1; i < len(inputs); i++ {
			c := ohlcv.Close(inputs[i].Series[bucket])
			if c > ohlcv.Close(inputs[hi].Series[bucket]) {
				hi = i
			}
			if c < ohlcv.Close(inputs[lo].Series[bucket]) {
				lo = i
			}
		}
		pct := Percent(ohlcv.Close(inputs[hi].Series[bucket]), ohlcv.Close(inputs[lo].Series[bucket]))
		if !found || pct > best.SpreadPercent {
			found = true
			best = Max{
				Time:          ohlcv.Time(inputs[hi].Series[bucket]),
				HighPEID:      inputs[hi].PEID,
				LowPEID:       inputs[lo].PEID,
				HighExchange:  inputs[hi].Exchange,
				LowExchange:   inputs[lo].Exchange,
				SpreadPercent: pct,
			}
		}
	}
	return best, found
}
