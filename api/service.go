// Package api exposes the discovery pipeline over HTTP: batch control,
// status reads and on-demand candle comparisons.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/cexline/spreadscan/batch"
	"github.com/cexline/spreadscan/catalog"
	"github.com/cexline/spreadscan/exchange"
)

var log = logrus.WithField("prefix", "api")

// Config parameterizes the HTTP service.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
	Pipeline       *batch.Pipeline
	Store          catalog.Store
	Gateway        exchange.Gateway
	Cache          batch.SeriesCache
}

// Service serves the JSON API. It satisfies the runtime service registry
// contract.
type Service struct {
	cfg          *Config
	server       *http.Server
	startFailure error
}

// New builds the HTTP service with CORS wrapping the route set.
func New(cfg *Config) *Service {
	s := &Service{cfg: cfg}
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.Router())
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: handler,
	}
	return s
}

// Router registers every route on a fresh mux router.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/spreads/init-pairs", s.initPairsHandler).Methods(http.MethodPost)
	r.HandleFunc("/spreads/compute-all", s.computeAllHandler).Methods(http.MethodPost)
	r.HandleFunc("/spreads/batch-status", s.batchStatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/spreads/computed", s.computedHandler).Methods(http.MethodGet)
	r.HandleFunc("/static/config/{type}", s.staticConfigHandler).Methods(http.MethodGet)
	r.HandleFunc("/static/pairs-exchanges", s.pairsExchangesHandler).Methods(http.MethodGet)
	r.HandleFunc("/crypto/ohlc", s.ohlcHandler).Methods(http.MethodGet)
	r.HandleFunc("/crypto/line-compare", s.lineCompareHandler).Methods(http.MethodGet)
	return r
}

// Start begins listening in the background.
func (s *Service) Start() {
	log.WithField("address", s.server.Addr).Info("Starting JSON API")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP listener failed")
			s.startFailure = err
		}
	}()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Wrap(s.server.Shutdown(ctx), "could not shut down HTTP server")
}

// Status surfaces a listener failure.
func (s *Service) Status() error {
	return s.startFailure
}
