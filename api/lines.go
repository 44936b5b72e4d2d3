package api

import (
	"github.com/cexline/spreadscan/align"
	"github.com/cexline/spreadscan/ohlcv"
)

type labeledSeries struct {
	exchange string
	series   ohlcv.Series
}

// alignLines projects aligned series onto close-price lines keyed by
// exchange. False when fewer than two series share any bucket.
func alignLines(inputs []labeledSeries) (lineCompareResponse, bool) {
	labeled := make([]align.Labeled, len(inputs))
	for i, in := range inputs {
		labeled[i] = align.Labeled{PEID: int64(i), Exchange: in.exchange, Series: in.series}
	}
	aligned := align.Align(labeled)
	if len(aligned) == 0 {
		return lineCompareResponse{}, false
	}

	resp := lineCompareResponse{
		Time:   aligned[0].Series.Timestamps(),
		Series: make(map[string][]float64, len(aligned)),
	}
	for _, in := range aligned {
		closes := make([]float64, len(in.Series))
		for i, row := range in.Series {
			closes[i] = ohlcv.Close(row)
		}
		resp.Series[in.Exchange] = closes
	}
	return resp, true
}
