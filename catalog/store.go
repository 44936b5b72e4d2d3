// Package catalog is the relational store of pair names, (pair, exchange)
// tuples, per-task batch status and computed spreads. It is the single
// coordination point of a discovery run: every status mutation goes
// through it transactionally.
package catalog

import (
	"context"
	"time"
)

// PairExchange is one pair as quoted on one specific exchange.
type PairExchange struct {
	ID       int64  `json:"pe_id"`
	PairID   int64  `json:"pair_id"`
	PairName string `json:"pair_name"`
	Exchange string `json:"exchange"`
}

// SpreadMax is the per-pair global maximum spread row.
type SpreadMax struct {
	PairID        int64     `json:"pair_id"`
	Time          time.Time `json:"time"`
	HighPEID      int64     `json:"high_pe_id"`
	LowPEID       int64     `json:"low_pe_id"`
	SpreadPercent float64   `json:"spread_percent"`
}

// ComputedSpread is a SpreadMax row joined with pair and exchange names
// for the read API.
type ComputedSpread struct {
	PairID        int64     `json:"pair_id"`
	PairName      string    `json:"pair_name"`
	Time          time.Time `json:"time"`
	HighExchange  string    `json:"high_exchange"`
	LowExchange   string    `json:"low_exchange"`
	SpreadPercent float64   `json:"spread_percent"`
}

// BatchStatus aggregates run progress for the status endpoint.
type BatchStatus struct {
	TotalPairs      int64   `json:"total_pairs"`
	TotalTasks      int64   `json:"total_tasks"`
	Cached          int64   `json:"cached"`
	SpreadsComputed int64   `json:"spreads_computed"`
	Progress        float64 `json:"processing_progress"`
}

// Store is the catalog contract shared by the Postgres implementation and
// the in-memory one used in tests.
type Store interface {
	// UpsertPairs inserts pair names, ignoring conflicts on the unique
	// name column. Deterministic and idempotent.
	UpsertPairs(ctx context.Context, names []string) error
	// UpsertPairExchanges joins names against the pair table and inserts
	// (pair_id, exchange) tuples, ignoring duplicates.
	UpsertPairExchanges(ctx context.Context, exchange string, names []string) error
	// SelectArbitrable returns the PE rows of every pair quoted on at
	// least threshold exchanges, ordered by (pair_id, pe_id).
	SelectArbitrable(ctx context.Context, threshold int) ([]PairExchange, error)
	// InitBatch truncates batch state and spread results, then creates
	// one all-false task row per PE. This clears prior runs' progress.
	InitBatch(ctx context.Context, rows []PairExchange, interval string) error
	// MarkCached flips cached=true for the given PE ids.
	MarkCached(ctx context.Context, peIDs []int64) error
	// ScanReady returns the pair ids, among pairs touched by the given
	// PE ids, whose complete PE fan is cached and not yet computed.
	ScanReady(ctx context.Context, peIDs []int64) ([]int64, error)
	// PairExchangesByPair returns the full PE fan of one pair ordered
	// by pe_id.
	PairExchangesByPair(ctx context.Context, pairID int64) ([]PairExchange, error)
	// SaveSpreadAndMark transactionally upserts the spread row and flips
	// computed (and persisted) for every task row of the pair.
	SaveSpreadAndMark(ctx context.Context, row SpreadMax) error
	// BatchStatusCounts aggregates progress for the status endpoint.
	BatchStatusCounts(ctx context.Context) (BatchStatus, error)
	// ComputedSpreads returns all spread rows joined with names, ordered
	// by spread_percent descending.
	ComputedSpreads(ctx context.Context) ([]ComputedSpread, error)
	// Close releases the underlying connections.
	Close()
}
