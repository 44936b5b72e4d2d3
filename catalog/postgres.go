package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/cexline/spreadscan/config"
)

// PGStore implements Store on a Postgres connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore connects to Postgres and bootstraps the schema.
func NewPGStore(ctx context.Context, settings *config.PostgresSettings) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, settings.URL())
	if err != nil {
		return nil, errors.Wrap(err, "could not create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "could not reach postgres")
	}
	s := &PGStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.WithField("database", settings.Database).Info("Connected to catalog database")
	return s, nil
}

// EnsureSchema applies the idempotent DDL bootstrap.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return errors.Wrap(err, "could not ensure schema")
	}
	return nil
}

// UpsertPairs inserts pair names with insert-ignore semantics.
func (s *PGStore) UpsertPairs(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pairs (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING`, names)
	return errors.Wrap(err, "upsert pairs")
}

// UpsertPairExchanges joins names against the pair table and inserts
// (pair_id, exchange) tuples, ignoring duplicates.
func (s *PGStore) UpsertPairExchanges(ctx context.Context, exchange string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pair_exchanges (pair_id, exchange)
		SELECT id, $1 FROM pairs WHERE name = ANY($2::text[])
		ON CONFLICT (pair_id, exchange) DO NOTHING`, exchange, names)
	return errors.Wrapf(err, "upsert pair exchanges for %s", exchange)
}

// SelectArbitrable returns PE rows of pairs quoted on >= threshold venues.
func (s *PGStore) SelectArbitrable(ctx context.Context, threshold int) ([]PairExchange, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pe.id, pe.pair_id, p.name, pe.exchange
		FROM pair_exchanges pe
		JOIN pairs p ON p.id = pe.pair_id
		WHERE pe.pair_id IN (
			SELECT pair_id FROM pair_exchanges
			GROUP BY pair_id
			HAVING COUNT(*) >= $1
		)
		ORDER BY pe.pair_id, pe.id`, threshold)
	if err != nil {
		return nil, errors.Wrap(err, "select arbitrable")
	}
	defer rows.Close()
	return scanPairExchanges(rows)
}

// InitBatch truncates run state and bulk-inserts fresh task rows.
func (s *PGStore) InitBatch(ctx context.Context, peRows []PairExchange, interval string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin init batch")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `TRUNCATE batch_task, spread_max`); err != nil {
		return errors.Wrap(err, "truncate batch state")
	}

	input := make([][]interface{}, len(peRows))
	for i, row := range peRows {
		input[i] = []interface{}{row.ID, row.PairID, interval}
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"batch_task"},
		[]string{"pe_id", "pair_id", "interval"},
		pgx.CopyFromRows(input),
	)
	if err != nil {
		return errors.Wrap(err, "bulk insert batch tasks")
	}
	return errors.Wrap(tx.Commit(ctx), "commit init batch")
}

// MarkCached flips cached=true for the given PE ids.
func (s *PGStore) MarkCached(ctx context.Context, peIDs []int64) error {
	if len(peIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE batch_task SET cached = TRUE WHERE pe_id = ANY($1::bigint[])`, peIDs)
	return errors.Wrap(err, "mark cached")
}

// ScanReady evaluates readiness over the complete fan of every pair
// touched by the given chunk. The full-fan AND is what makes pairs split
// across chunks come out exactly once.
func (s *PGStore) ScanReady(ctx context.Context, peIDs []int64) ([]int64, error) {
	if len(peIDs) == 0 {
		return []int64{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT pair_id FROM batch_task
		WHERE pair_id IN (
			SELECT DISTINCT pair_id FROM batch_task WHERE pe_id = ANY($1::bigint[])
		)
		GROUP BY pair_id
		HAVING bool_and(cached) AND NOT bool_or(computed)
		ORDER BY pair_id`, peIDs)
	if err != nil {
		return nil, errors.Wrap(err, "scan ready")
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan ready row")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "scan ready rows")
}

// PairExchangesByPair returns the full PE fan of one pair.
func (s *PGStore) PairExchangesByPair(ctx context.Context, pairID int64) ([]PairExchange, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pe.id, pe.pair_id, p.name, pe.exchange
		FROM pair_exchanges pe
		JOIN pairs p ON p.id = pe.pair_id
		WHERE pe.pair_id = $1
		ORDER BY pe.id`, pairID)
	if err != nil {
		return nil, errors.Wrap(err, "select pair exchanges")
	}
	defer rows.Close()
	return scanPairExchanges(rows)
}

// SaveSpreadAndMark upserts the spread row and flips the pair-wide
// computed flag in one transaction. ON CONFLICT DO UPDATE makes racing
// dispatchers converge on the last commit.
func (s *PGStore) SaveSpreadAndMark(ctx context.Context, row SpreadMax) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin save spread")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO spread_max (pair_id, time, high_pe_id, low_pe_id, spread_percent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pair_id) DO UPDATE SET
			time = EXCLUDED.time,
			high_pe_id = EXCLUDED.high_pe_id,
			low_pe_id = EXCLUDED.low_pe_id,
			spread_percent = EXCLUDED.spread_percent`,
		row.PairID, row.Time, row.HighPEID, row.LowPEID, row.SpreadPercent)
	if err != nil {
		return errors.Wrap(err, "upsert spread max")
	}

	_, err = tx.Exec(ctx, `
		UPDATE batch_task SET computed = TRUE, persisted = TRUE WHERE pair_id = $1`, row.PairID)
	if err != nil {
		return errors.Wrap(err, "mark computed")
	}
	return errors.Wrap(tx.Commit(ctx), "commit save spread")
}

// BatchStatusCounts aggregates run progress.
func (s *PGStore) BatchStatusCounts(ctx context.Context) (BatchStatus, error) {
	var st BatchStatus
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT pair_id) FROM batch_task),
			(SELECT COUNT(*) FROM batch_task),
			(SELECT COUNT(*) FROM batch_task WHERE cached),
			(SELECT COUNT(*) FROM spread_max)`).
		Scan(&st.TotalPairs, &st.TotalTasks, &st.Cached, &st.SpreadsComputed)
	if err != nil {
		return BatchStatus{}, errors.Wrap(err, "batch status counts")
	}
	if st.TotalPairs > 0 {
		st.Progress = float64(st.SpreadsComputed) / float64(st.TotalPairs) * 100
	}
	return st, nil
}

// ComputedSpreads returns all spread rows joined with names.
func (s *PGStore) ComputedSpreads(ctx context.Context) ([]ComputedSpread, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.pair_id, p.name, s.time, hp.exchange, lp.exchange, s.spread_percent
		FROM spread_max s
		JOIN pairs p ON p.id = s.pair_id
		JOIN pair_exchanges hp ON hp.id = s.high_pe_id
		JOIN pair_exchanges lp ON lp.id = s.low_pe_id
		ORDER BY s.spread_percent DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "select computed spreads")
	}
	defer rows.Close()

	out := make([]ComputedSpread, 0)
	for rows.Next() {
		var cs ComputedSpread
		if err := rows.Scan(&cs.PairID, &cs.PairName, &cs.Time, &cs.HighExchange, &cs.LowExchange, &cs.SpreadPercent); err != nil {
			return nil, errors.Wrap(err, "scan computed spread")
		}
		out = append(out, cs)
	}
	return out, errors.Wrap(rows.Err(), "computed spread rows")
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

func scanPairExchanges(rows pgx.Rows) ([]PairExchange, error) {
	out := make([]PairExchange, 0)
	for rows.Next() {
		var pe PairExchange
		if err := rows.Scan(&pe.ID, &pe.PairID, &pe.PairName, &pe.Exchange); err != nil {
			return nil, errors.Wrap(err, "scan pair exchange")
		}
		out = append(out, pe)
	}
	return out, errors.Wrap(rows.Err(), "pair exchange rows")
}
