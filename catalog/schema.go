package catalog

// Schema bootstrap. A dedicated migration driver is deliberately out of
// scope; the DDL below is idempotent and safe to run at every startup.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS pairs (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_pairs_name ON pairs (name);

CREATE TABLE IF NOT EXISTS pair_exchanges (
	id       BIGSERIAL PRIMARY KEY,
	pair_id  BIGINT NOT NULL REFERENCES pairs (id) ON DELETE CASCADE,
	exchange TEXT NOT NULL,
	CONSTRAINT uq_pair_exchange UNIQUE (pair_id, exchange)
);
CREATE INDEX IF NOT EXISTS idx_pair_exchanges_exchange ON pair_exchanges (exchange);

CREATE TABLE IF NOT EXISTS batch_task (
	pe_id     BIGINT PRIMARY KEY REFERENCES pair_exchanges (id),
	pair_id   BIGINT NOT NULL REFERENCES pairs (id),
	interval  TEXT NOT NULL,
	cached    BOOLEAN NOT NULL DEFAULT FALSE,
	computed  BOOLEAN NOT NULL DEFAULT FALSE,
	persisted BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_batch_task_pair ON batch_task (pair_id);

CREATE TABLE IF NOT EXISTS spread_max (
	pair_id        BIGINT PRIMARY KEY REFERENCES pairs (id),
	time           TIMESTAMPTZ NOT NULL,
	high_pe_id     BIGINT NOT NULL REFERENCES pair_exchanges (id),
	low_pe_id      BIGINT NOT NULL REFERENCES pair_exchanges (id),
	spread_percent DOUBLE PRECISION NOT NULL
);
`
