// Package ohlcv defines the candle series representation shared by the
// exchange gateway, the cache layer and the spread pipeline.
package ohlcv

import "math"

// Columns is the fixed arity of a candle row:
// time(ms), open, high, low, close, volume.
const Columns = 6

// Column indices into a candle row.
const (
	ColTime = iota
	ColOpen
	ColHigh
	ColLow
	ColClose
	ColVolume
)

// Series is an ordered list of candle rows as produced by an exchange.
// Timestamps are epoch milliseconds, strictly increasing. The row layout
// mirrors the exchange wire format so payloads round-trip through JSON
// without a schema.
type Series [][]float64

// Time returns the row timestamp as integer milliseconds.
func Time(row []float64) int64 {
	return int64(row[ColTime])
}

// Close returns the row close price.
func Close(row []float64) float64 {
	return row[ColClose]
}

// ValidRow reports whether a row has the expected arity and only finite
// numeric values.
func ValidRow(row []float64) bool {
	if len(row) != Columns {
		return false
	}
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Valid reports whether every row of the series is well formed. An empty
// series is valid: it carries no information but corrupts nothing.
func (s Series) Valid() bool {
	for _, row := range s {
		if !ValidRow(row) {
			return false
		}
	}
	return true
}

// Timestamps projects the series onto its time column.
func (s Series) Timestamps() []int64 {
	ts := make([]int64, len(s))
	for i, row := range s {
		ts[i] = Time(row)
	}
	return ts
}

// At returns the row carrying the given timestamp, or nil.
func (s Series) At(t int64) []float64 {
	for _, row := range s {
		if Time(row) == t {
			return row
		}
	}
	return nil
}
