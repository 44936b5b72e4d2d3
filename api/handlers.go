package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cexline/spreadscan/cache"
	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/ohlcv"
	"github.com/cexline/spreadscan/universe"
)

const displayTimeLayout = "2006-01-02 15:04"

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Could not encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// initPairsHandler refreshes the pair universe from live market listings.
func (s *Service) initPairsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.cfg.Pipeline.InitUniverse(r.Context())
	if err != nil {
		log.WithError(err).Error("Universe init failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.WithField("pairs", n).Info("Universe refreshed via API")
	writeJSON(w, http.StatusOK, true)
}

// computeAllHandler enqueues a full discovery run on the task runtime.
func (s *Service) computeAllHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Pipeline.EnqueueRun(r.Context()); err != nil {
		log.WithError(err).Error("Could not enqueue discovery run")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "spread discovery run started",
	})
}

func (s *Service) batchStatusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := s.cfg.Store.BatchStatusCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type computedSpreadResponse struct {
	PairName      string  `json:"pair_name"`
	Time          string  `json:"time"`
	HighExchange  string  `json:"high_exchange"`
	LowExchange   string  `json:"low_exchange"`
	SpreadPercent float64 `json:"spread_percent"`
}

func (s *Service) computedHandler(w http.ResponseWriter, r *http.Request) {
	spreads, err := s.cfg.Store.ComputedSpreads(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	loc := config.DisplayLocation()
	out := make([]computedSpreadResponse, len(spreads))
	for i, sp := range spreads {
		out[i] = computedSpreadResponse{
			PairName:      sp.PairName,
			Time:          sp.Time.In(loc).Format(displayTimeLayout),
			HighExchange:  sp.HighExchange,
			LowExchange:   sp.LowExchange,
			SpreadPercent: sp.SpreadPercent,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) staticConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["type"] {
	case "exchanges":
		writeJSON(w, http.StatusOK, config.ExchangeNames())
	case "intervals":
		writeJSON(w, http.StatusOK, config.Intervals())
	case "timeranges":
		writeJSON(w, http.StatusOK, config.TimeRanges())
	default:
		writeError(w, http.StatusBadRequest, "unknown config type")
	}
}

// pairsExchangesHandler serves the live multi-venue universe map.
func (s *Service) pairsExchangesHandler(w http.ResponseWriter, r *http.Request) {
	listings := s.cfg.Gateway.ListExchangesWithSymbols(r.Context(), config.SupportedExchanges())
	if len(listings) == 0 {
		writeError(w, http.StatusInternalServerError, "no exchange responded")
		return
	}
	matrix := universe.NewBuilder(s.cfg.Pipeline.Settings().Threshold).Build(listings)
	writeJSON(w, http.StatusOK, matrix)
}

// fetchSeries reads one candle series through the compare cache, falling
// back to a live download on miss.
func (s *Service) fetchSeries(ctx context.Context, pair string, exch config.Exchange, interval string) ohlcv.Series {
	key := cache.CompareKey(pair, string(exch), interval)
	if series, ok := s.cfg.Cache.GetSeries(ctx, key); ok {
		return series
	}
	series := s.cfg.Gateway.FetchOHLCV(ctx, pair, exch, interval)
	if len(series) > 0 {
		s.cfg.Cache.SetSeries(ctx, key, series, config.CacheTTLForInterval(interval))
	}
	return series
}

func validateCompareQuery(r *http.Request) (pair, interval string, ok bool, msg string) {
	pair = r.URL.Query().Get("pair")
	interval = r.URL.Query().Get("interval")
	if pair == "" {
		return "", "", false, "pair is required"
	}
	if !config.IsValidInterval(interval) {
		return "", "", false, "unknown interval"
	}
	return pair, interval, true, ""
}

func (s *Service) ohlcHandler(w http.ResponseWriter, r *http.Request) {
	pair, interval, ok, msg := validateCompareQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	exch := r.URL.Query().Get("exchange")
	if !config.IsSupportedExchange(exch) {
		writeError(w, http.StatusBadRequest, "unknown exchange")
		return
	}

	series := s.fetchSeries(r.Context(), pair, config.Exchange(exch), interval)
	if len(series) == 0 {
		writeError(w, http.StatusInternalServerError, "no candle data available")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

type lineCompareResponse struct {
	Time   []int64              `json:"time"`
	Series map[string][]float64 `json:"series"`
}

// lineCompareHandler returns close-price lines for one pair on several
// exchanges, restricted to their shared candle buckets.
func (s *Service) lineCompareHandler(w http.ResponseWriter, r *http.Request) {
	pair, interval, ok, msg := validateCompareQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	names := strings.Split(r.URL.Query().Get("exchanges"), ",")
	if len(names) < 2 {
		writeError(w, http.StatusBadRequest, "at least two exchanges are required")
		return
	}
	for _, name := range names {
		if !config.IsSupportedExchange(name) {
			writeError(w, http.StatusBadRequest, "unknown exchange")
			return
		}
	}

	inputs := make([]labeledSeries, 0, len(names))
	for _, name := range names {
		series := s.fetchSeries(r.Context(), pair, config.Exchange(name), interval)
		if len(series) == 0 {
			continue
		}
		inputs = append(inputs, labeledSeries{exchange: name, series: series})
	}

	resp, ok := alignLines(inputs)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no comparable candle data")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
