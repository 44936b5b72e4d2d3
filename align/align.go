// Package align synchronizes candle series from different venues onto
// their common timestamps so per-bucket prices compare like for like.
package align

import (
	"github.com/sirupsen/logrus"

	"github.com/cexline/spreadscan/container/sliceutil"
	"github.com/cexline/spreadscan/ohlcv"
)

var log = logrus.WithField("prefix", "align")

// Labeled ties a candle series to the pair-exchange row it was fetched
// for. Labels survive alignment so downstream attribution works.
type Labeled struct {
	PEID     int64
	Exchange string
	Series   ohlcv.Series
}

// Align drops malformed series, intersects the timestamps of the
// survivors and returns each survivor restricted to the shared buckets in
// ascending time order. Fewer than two usable series, or an empty
// intersection, yields nil.
func Align(inputs []Labeled) []Labeled {
	usable := make([]Labeled, 0, len(inputs))
	for _, in := range inputs {
		if !in.Series.Valid() {
			log.WithFields(logrus.Fields{
				"peID":     in.PEID,
				"exchange": in.Exchange,
			}).Error("Excluding malformed candle series")
			continue
		}
		if len(in.Series) == 0 {
			continue
		}
		usable = append(usable, in)
	}
	if len(usable) < 2 {
		return nil
	}

	stamps := make([][]int64, len(usable))
	for i, in := range usable {
		stamps[i] = in.Series.Timestamps()
	}
	shared := sliceutil.IntersectionInt64(stamps...)
	if len(shared) == 0 {
		return nil
	}

	out := make([]Labeled, len(usable))
	for i, in := range usable {
		rows := make(ohlcv.Series, 0, len(shared))
		for _, t := range shared {
			rows = append(rows, in.Series.At(t))
		}
		out[i] = Labeled{PEID: in.PEID, Exchange: in.Exchange, Series: rows}
	}
	return out
}
