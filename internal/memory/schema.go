package memory

// Relational schema for the intelligence memory. Applied idempotently
// on startup.
const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id          SERIAL PRIMARY KEY,
	symbol      TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	asset_type  TEXT NOT NULL DEFAULT 'equity',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS asset_prices (
	id        SERIAL PRIMARY KEY,
	asset_id  INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	date      DATE NOT NULL,
	open      NUMERIC(18,6),
	high      NUMERIC(18,6),
	low       NUMERIC(18,6),
	close     NUMERIC(18,6),
	volume    BIGINT,
	UNIQUE (asset_id, date)
);

CREATE TABLE IF NOT EXISTS news_articles (
	id           SERIAL PRIMARY KEY,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (title, source)
);

CREATE TABLE IF NOT EXISTS narratives (
	id          SERIAL PRIMARY KEY,
	theme       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'emerging',
	strength    DOUBLE PRECISION NOT NULL DEFAULT 0,
	first_seen  TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS causal_relationships (
	id         SERIAL PRIMARY KEY,
	cause      TEXT NOT NULL,
	effect     TEXT NOT NULL,
	strength   TEXT NOT NULL DEFAULT 'moderate',
	confidence TEXT NOT NULL DEFAULT 'medium',
	conditions TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS risks (
	id            SERIAL PRIMARY KEY,
	description   TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT 'market',
	severity      DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_black_swan BOOLEAN NOT NULL DEFAULT FALSE,
	early_warning JSONB NOT NULL DEFAULT '[]'::jsonb,
	status        TEXT NOT NULL DEFAULT 'open',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS economic_indicators (
	id           SERIAL PRIMARY KEY,
	indicator_id TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	date         DATE NOT NULL,
	value        DOUBLE PRECISION NOT NULL,
	UNIQUE (indicator_id, date)
);

CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	directive   TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	report_type TEXT NOT NULL DEFAULT 'market_analysis',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS asset_news (
	asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	news_id  INTEGER NOT NULL REFERENCES news_articles(id) ON DELETE CASCADE,
	PRIMARY KEY (asset_id, news_id)
);

CREATE TABLE IF NOT EXISTS asset_narratives (
	asset_id     INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	narrative_id INTEGER NOT NULL REFERENCES narratives(id) ON DELETE CASCADE,
	PRIMARY KEY (asset_id, narrative_id)
);

CREATE TABLE IF NOT EXISTS narrative_news (
	narrative_id INTEGER NOT NULL REFERENCES narratives(id) ON DELETE CASCADE,
	news_id      INTEGER NOT NULL REFERENCES news_articles(id) ON DELETE CASCADE,
	PRIMARY KEY (narrative_id, news_id)
);

CREATE TABLE IF NOT EXISTS report_assets (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	asset_id  INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	PRIMARY KEY (report_id, asset_id)
);

CREATE INDEX IF NOT EXISTS idx_asset_prices_date ON asset_prices (date);
CREATE INDEX IF NOT EXISTS idx_news_published ON news_articles (published_at);
CREATE INDEX IF NOT EXISTS idx_narratives_status ON narratives (status);
CREATE INDEX IF NOT EXISTS idx_risks_black_swan ON risks (is_black_swan) WHERE is_black_swan;
CREATE INDEX IF NOT EXISTS idx_reports_created ON reports (created_at);
`
