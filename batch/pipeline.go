// Package batch orchestrates one spread discovery run: chunked candle
// fetching into the cache, readiness scans over the catalog and per-pair
// spread computation.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cexline/spreadscan/align"
	"github.com/cexline/spreadscan/cache"
	"github.com/cexline/spreadscan/catalog"
	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/exchange"
	"github.com/cexline/spreadscan/ohlcv"
	"github.com/cexline/spreadscan/spread"
	"github.com/cexline/spreadscan/universe"
)

// SeriesCache is the payload store surface the pipeline needs.
type SeriesCache interface {
	SetSeries(ctx context.Context, key string, series ohlcv.Series, ttl time.Duration) bool
	GetSeries(ctx context.Context, key string) (ohlcv.Series, bool)
}

// Pipeline wires the catalog, the exchange gateway, the payload cache and
// the task runtime into the discovery workflow. All methods are safe for
// concurrent use by multiple workers.
type Pipeline struct {
	store    catalog.Store
	gateway  exchange.Gateway
	cache    SeriesCache
	enqueuer Enqueuer
	settings *config.BatchSettings
}

// New assembles a pipeline. A nil enqueuer degrades to NopEnqueuer so the
// pipeline can be driven inline.
func New(store catalog.Store, gw exchange.Gateway, c SeriesCache, enq Enqueuer, settings *config.BatchSettings) *Pipeline {
	if enq == nil {
		enq = NopEnqueuer{}
	}
	if settings == nil {
		settings = config.DefaultBatchSettings()
	}
	return &Pipeline{
		store:    store,
		gateway:  gw,
		cache:    c,
		enqueuer: enq,
		settings: settings,
	}
}

// SetEnqueuer replaces the task sink. Called once at startup after the
// task runtime, which itself depends on the pipeline, has been built.
func (p *Pipeline) SetEnqueuer(enq Enqueuer) {
	p.enqueuer = enq
}

// Settings exposes the run parameters to the HTTP layer.
func (p *Pipeline) Settings() *config.BatchSettings {
	return p.settings
}

// Store exposes the catalog to the HTTP layer.
func (p *Pipeline) Store() catalog.Store {
	return p.store
}

// InitUniverse refreshes the pair and pair-exchange catalog from live
// market listings. Returns the number of multi-venue pairs discovered.
func (p *Pipeline) InitUniverse(ctx context.Context) (int, error) {
	listings := p.gateway.ListExchangesWithSymbols(ctx, config.SupportedExchanges())
	if len(listings) == 0 {
		return 0, errors.New("no exchange responded with market listings")
	}

	builder := universe.NewBuilder(p.settings.Threshold)
	pairs := builder.Build(listings)
	names := universe.Pairs(pairs)
	if err := p.store.UpsertPairs(ctx, names); err != nil {
		return 0, err
	}

	byExchange := make(map[config.Exchange][]string)
	for name, venues := range pairs {
		for _, venue := range venues {
			byExchange[venue] = append(byExchange[venue], name)
		}
	}
	for venue, venueNames := range byExchange {
		if err := p.store.UpsertPairExchanges(ctx, string(venue), venueNames); err != nil {
			return 0, err
		}
	}

	log.WithFields(logrus.Fields{
		"exchanges": len(listings),
		"pairs":     len(names),
	}).Info("Universe initialized")
	return len(names), nil
}

// Run executes one full discovery batch: select arbitrable PE rows, reset
// batch state, then fetch candles in chunks. Each chunk is fanned out
// concurrently, cached payloads are marked in the catalog and a
// scan-then-dispatch chain is enqueued before moving on.
func (p *Pipeline) Run(ctx context.Context) error {
	batchRunning.Set(1)
	defer batchRunning.Set(0)

	rows, err := p.store.SelectArbitrable(ctx, p.settings.Threshold)
	if err != nil {
		return errors.Wrap(err, "could not select arbitrable pairs")
	}
	if len(rows) == 0 {
		log.Warn("No arbitrable pairs in catalog, run /spreads/init-pairs first")
		return nil
	}
	if err := p.store.InitBatch(ctx, rows, p.settings.Interval); err != nil {
		return errors.Wrap(err, "could not initialize batch state")
	}
	log.WithFields(logrus.Fields{
		"tasks":    len(rows),
		"interval": p.settings.Interval,
	}).Info("Starting discovery run")

	for start := 0; start < len(rows); start += p.settings.ChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + p.settings.ChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.runChunk(ctx, rows[start:end]); err != nil {
			return err
		}
		if end < len(rows) {
			sleepCtx(ctx, p.settings.ChunkSleep)
		}
	}
	return nil
}

func (p *Pipeline) runChunk(ctx context.Context, chunk []catalog.PairExchange) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		cached = make([]int64, 0, len(chunk))
	)
	for _, row := range chunk {
		wg.Add(1)
		go func(row catalog.PairExchange) {
			defer wg.Done()
			series := p.gateway.FetchOHLCV(ctx, row.PairName, config.Exchange(row.Exchange), p.settings.Interval)
			if len(series) == 0 {
				seriesFetchFailed.Inc()
				return
			}
			if !p.cache.SetSeries(ctx, cache.Key(row.ID), series, p.settings.OHLCTTL) {
				return
			}
			seriesFetched.Inc()
			mu.Lock()
			cached = append(cached, row.ID)
			mu.Unlock()
		}(row)
	}
	wg.Wait()
	chunksProcessed.Inc()

	if err := p.store.MarkCached(ctx, cached); err != nil {
		return errors.Wrap(err, "could not mark cached tasks")
	}

	peIDs := make([]int64, len(chunk))
	for i, row := range chunk {
		peIDs[i] = row.ID
	}
	if err := p.enqueuer.ChainScanDispatch(ctx, peIDs); err != nil {
		return errors.Wrap(err, "could not enqueue scan chain")
	}
	log.WithFields(logrus.Fields{
		"chunk":  len(chunk),
		"cached": len(cached),
	}).Debug("Chunk processed")
	return nil
}

// ScanReady returns the pairs, among those touched by the given PE ids,
// whose full venue fan is cached and not yet computed.
func (p *Pipeline) ScanReady(ctx context.Context, peIDs []int64) ([]int64, error) {
	ready, err := p.store.ScanReady(ctx, peIDs)
	if err != nil {
		return nil, errors.Wrap(err, "readiness scan failed")
	}
	return ready, nil
}

// Dispatch fans out one compute task per ready pair.
func (p *Pipeline) Dispatch(ctx context.Context, pairIDs []int64) error {
	if len(pairIDs) == 0 {
		return nil
	}
	if err := p.enqueuer.GroupCompute(ctx, pairIDs); err != nil {
		return errors.Wrap(err, "could not dispatch compute group")
	}
	log.WithField("pairs", len(pairIDs)).Debug("Dispatched compute tasks")
	return nil
}

// ComputePair aligns the pair's cached candle series, computes the max
// close spread and persists it. Payloads evicted from the cache are
// refetched from the venue. A pair with no comparable buckets is skipped
// and stays uncomputed.
func (p *Pipeline) ComputePair(ctx context.Context, pairID int64) error {
	fan, err := p.store.PairExchangesByPair(ctx, pairID)
	if err != nil {
		return errors.Wrapf(err, "could not load venue fan for pair %d", pairID)
	}

	inputs := make([]align.Labeled, 0, len(fan))
	for _, pe := range fan {
		series, ok := p.cache.GetSeries(ctx, cache.Key(pe.ID))
		if !ok {
			series = p.gateway.FetchOHLCV(ctx, pe.PairName, config.Exchange(pe.Exchange), p.settings.Interval)
		}
		if len(series) == 0 {
			continue
		}
		inputs = append(inputs, align.Labeled{PEID: pe.ID, Exchange: pe.Exchange, Series: series})
	}

	max, ok := spread.Compute(align.Align(inputs))
	if !ok {
		pairsSkipped.Inc()
		log.WithField("pairID", pairID).Warn("No comparable candle data, skipping pair")
		return nil
	}

	row := catalog.SpreadMax{
		PairID:        pairID,
		Time:          time.UnixMilli(max.Time).UTC(),
		HighPEID:      max.HighPEID,
		LowPEID:       max.LowPEID,
		SpreadPercent: max.SpreadPercent,
	}
	if err := p.store.SaveSpreadAndMark(ctx, row); err != nil {
		return errors.Wrapf(err, "could not persist spread for pair %d", pairID)
	}
	spreadsComputed.Inc()
	log.WithFields(logrus.Fields{
		"pairID": pairID,
		"spread": max.SpreadPercent,
		"high":   max.HighExchange,
		"low":    max.LowExchange,
	}).Info("Spread computed")
	return nil
}

// EnqueueRun schedules a full discovery batch on the task runtime.
func (p *Pipeline) EnqueueRun(ctx context.Context) error {
	return p.enqueuer.EnqueueBatchRun(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
