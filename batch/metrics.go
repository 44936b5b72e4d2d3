package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spreadscan_batch_running",
		Help: "1 while a discovery run is fetching candles, 0 otherwise.",
	})
	chunksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadscan_batch_chunks_processed_total",
		Help: "Count of fetch chunks fanned out to exchanges.",
	})
	seriesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadscan_series_fetched_total",
		Help: "Count of candle series successfully downloaded.",
	})
	seriesFetchFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadscan_series_fetch_failed_total",
		Help: "Count of candle downloads that produced no data.",
	})
	spreadsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadscan_spreads_computed_total",
		Help: "Count of per-pair max spreads computed and persisted.",
	})
	pairsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadscan_pairs_skipped_total",
		Help: "Count of pairs skipped for lack of comparable candle data.",
	})
)
