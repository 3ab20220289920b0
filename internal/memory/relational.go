// Package memory persists what the agents learn: a relational store
// for structured market knowledge, a vector store for semantic recall
// and a session store for strategist conversations.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/models"
)

const queryTimeout = 10 * time.Second

// ErrReportNotFound marks a lookup for a report id with no row.
var ErrReportNotFound = errors.New("report not found")

// RelationalStore is the Postgres-backed structured memory.
type RelationalStore struct {
	db *sqlx.DB
}

// NewRelationalStore connects to Postgres and applies the schema.
func NewRelationalStore(dsn string) (*RelationalStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &RelationalStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewRelationalStoreFromDB wraps an existing connection, used by tests.
func NewRelationalStoreFromDB(db *sqlx.DB) (*RelationalStore, error) {
	store := &RelationalStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (rs *RelationalStore) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := rs.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (rs *RelationalStore) Close() error {
	return rs.db.Close()
}

// Ping verifies connectivity, used by the health endpoint.
func (rs *RelationalStore) Ping(ctx context.Context) error {
	return rs.db.PingContext(ctx)
}

// UpsertAsset inserts or finds an asset and returns its id.
func (rs *RelationalStore) UpsertAsset(ctx context.Context, symbol, name, assetType string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if assetType == "" {
		assetType = "equity"
	}

	var id int64
	err := rs.db.QueryRowContext(ctx, `
		INSERT INTO assets (symbol, name, asset_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE
			SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE assets.name END
		RETURNING id`,
		symbol, name, assetType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert asset %s: %w", symbol, err)
	}
	return id, nil
}

// SavePrices stores daily bars for an asset, ignoring duplicates.
func (rs *RelationalStore) SavePrices(ctx context.Context, assetID int64, bars []*models.MarketBar) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := rs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, bar := range bars {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO asset_prices (asset_id, date, open, high, low, close, volume)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (asset_id, date) DO NOTHING`,
			assetID, bar.Date.Format("2006-01-02"),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert price: %w", err)
		}
	}
	return tx.Commit()
}

// AssetRecord is one row of the assets table.
type AssetRecord struct {
	ID        int64  `db:"id"`
	Symbol    string `db:"symbol"`
	Name      string `db:"name"`
	AssetType string `db:"asset_type"`
}

// GetAssetBySymbol looks up an asset by its symbol.
func (rs *RelationalStore) GetAssetBySymbol(ctx context.Context, symbol string) (*AssetRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rec AssetRecord
	err := rs.db.GetContext(ctx, &rec, `
		SELECT id, symbol, name, asset_type FROM assets WHERE symbol = $1`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	return &rec, nil
}

// LatestPrice returns the newest stored bar for an asset, or nil when
// no prices exist.
func (rs *RelationalStore) LatestPrice(ctx context.Context, assetID int64) (*models.MarketBar, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := rs.db.QueryRowContext(ctx, `
		SELECT a.symbol, p.date, p.open, p.high, p.low, p.close, p.volume
		FROM asset_prices p JOIN assets a ON a.id = p.asset_id
		WHERE p.asset_id = $1
		ORDER BY p.date DESC LIMIT 1`, assetID)

	var bar models.MarketBar
	err := row.Scan(&bar.Symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}
	return &bar, nil
}

// RecentNews returns the most recently published articles.
func (rs *RelationalStore) RecentNews(ctx context.Context, limit int) ([]*models.NewsArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := rs.db.QueryContext(ctx, `
		SELECT title, url, source, summary, COALESCE(published_at, created_at)
		FROM news_articles
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	var out []*models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := rows.Scan(&a.Title, &a.URL, &a.Source, &a.Description, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// SaveNews stores an article and links it to the given assets. Returns
// the article id; duplicate title+source pairs reuse the existing row.
func (rs *RelationalStore) SaveNews(ctx context.Context, article *models.NewsArticle, assetIDs []int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var publishedAt interface{}
	if !article.PublishedAt.IsZero() {
		publishedAt = article.PublishedAt
	}

	var id int64
	err := rs.db.QueryRowContext(ctx, `
		INSERT INTO news_articles (title, url, source, summary, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title, source) DO UPDATE SET url = EXCLUDED.url
		RETURNING id`,
		article.Title, article.URL, article.Source, article.Description, publishedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save news: %w", err)
	}

	for _, assetID := range assetIDs {
		_, err := rs.db.ExecContext(ctx, `
			INSERT INTO asset_news (asset_id, news_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, assetID, id)
		if err != nil {
			return 0, fmt.Errorf("failed to link news to asset: %w", err)
		}
	}
	return id, nil
}

// NarrativeRecord is one stored narrative with its lifecycle state:
// emerging, dominant, competing or faded.
type NarrativeRecord struct {
	ID          int64     `db:"id"`
	Theme       string    `db:"theme"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Strength    float64   `db:"strength"`
	FirstSeen   time.Time `db:"first_seen"`
	LastSeen    time.Time `db:"last_seen"`
}

// SaveNarrative records (or refreshes) a narrative and returns its id.
// An existing narrative with the same theme has its status, strength
// and last_seen updated.
func (rs *RelationalStore) SaveNarrative(ctx context.Context, theme, description, status string, strength float64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if status == "" {
		status = "emerging"
	}

	var id int64
	err := rs.db.QueryRowContext(ctx, `
		SELECT id FROM narratives WHERE theme = $1`, theme).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		err = rs.db.QueryRowContext(ctx, `
			INSERT INTO narratives (theme, description, status, strength)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			theme, description, status, strength).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert narrative: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to look up narrative: %w", err)
	default:
		_, err = rs.db.ExecContext(ctx, `
			UPDATE narratives
			SET description = $2, status = $3, strength = $4, last_seen = now()
			WHERE id = $1`,
			id, description, status, strength)
		if err != nil {
			return 0, fmt.Errorf("failed to update narrative: %w", err)
		}
	}
	return id, nil
}

// RecentNarratives returns the most recently seen narratives.
func (rs *RelationalStore) RecentNarratives(ctx context.Context, limit int) ([]*NarrativeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	var rows []*NarrativeRecord
	err := rs.db.SelectContext(ctx, &rows, `
		SELECT id, theme, description, status, strength, first_seen, last_seen
		FROM narratives ORDER BY last_seen DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list narratives: %w", err)
	}
	return rows, nil
}

// LinkAssetNarrative ties a narrative to an asset.
func (rs *RelationalStore) LinkAssetNarrative(ctx context.Context, assetID, narrativeID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := rs.db.ExecContext(ctx, `
		INSERT INTO asset_narratives (asset_id, narrative_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, assetID, narrativeID)
	if err != nil {
		return fmt.Errorf("failed to link narrative: %w", err)
	}
	return nil
}

// NarrativesByAsset lists narratives linked to one asset, freshest
// first.
func (rs *RelationalStore) NarrativesByAsset(ctx context.Context, assetID int64, limit int) ([]*NarrativeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	var rows []*NarrativeRecord
	err := rs.db.SelectContext(ctx, &rows, `
		SELECT n.id, n.theme, n.description, n.status, n.strength, n.first_seen, n.last_seen
		FROM narratives n
		JOIN asset_narratives an ON an.narrative_id = n.id
		WHERE an.asset_id = $1
		ORDER BY n.last_seen DESC LIMIT $2`, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list narratives for asset: %w", err)
	}
	return rows, nil
}

// SaveCausalRelationship records one cause/effect edge.
func (rs *RelationalStore) SaveCausalRelationship(ctx context.Context, rel *models.CausalRelationship) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := rs.db.ExecContext(ctx, `
		INSERT INTO causal_relationships (cause, effect, strength, confidence, conditions)
		VALUES ($1, $2, $3, $4, $5)`,
		rel.Cause, rel.Effect, rel.Strength, rel.Confidence, rel.Conditions)
	if err != nil {
		return fmt.Errorf("failed to save causal relationship: %w", err)
	}
	return nil
}

// SaveRisk records a risk; blackSwan marks tail risks for the dedicated
// scan. warnings are the early-warning indicators to watch, may be nil.
func (rs *RelationalStore) SaveRisk(ctx context.Context, description, category string, severity float64, blackSwan bool, warnings []string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if warnings == nil {
		warnings = []string{}
	}
	encoded, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to encode early warnings: %w", err)
	}

	_, err = rs.db.ExecContext(ctx, `
		INSERT INTO risks (description, category, severity, is_black_swan, early_warning)
		VALUES ($1, $2, $3, $4, $5)`,
		description, category, severity, blackSwan, encoded)
	if err != nil {
		return fmt.Errorf("failed to save risk: %w", err)
	}
	return nil
}

// OpenBlackSwans lists open tail risks ordered by severity.
func (rs *RelationalStore) OpenBlackSwans(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var descriptions []string
	err := rs.db.SelectContext(ctx, &descriptions, `
		SELECT description FROM risks
		WHERE is_black_swan AND status = 'open'
		ORDER BY severity DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list black swans: %w", err)
	}
	return descriptions, nil
}

// RiskRecord is one row of the risks table.
type RiskRecord struct {
	ID           int64          `db:"id"`
	Description  string         `db:"description"`
	Category     string         `db:"category"`
	Severity     float64        `db:"severity"`
	IsBlackSwan  bool           `db:"is_black_swan"`
	EarlyWarning types.JSONText `db:"early_warning"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Warnings decodes the early-warning indicator list.
func (r *RiskRecord) Warnings() []string {
	var out []string
	if err := json.Unmarshal(r.EarlyWarning, &out); err != nil {
		return nil
	}
	return out
}

// OpenRisksByCategory lists open risks of one category, most severe
// first.
func (rs *RelationalStore) OpenRisksByCategory(ctx context.Context, category string) ([]*RiskRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var risks []*RiskRecord
	err := rs.db.SelectContext(ctx, &risks, `
		SELECT id, description, category, severity, is_black_swan, early_warning, status, created_at
		FROM risks
		WHERE category = $1 AND status = 'open'
		ORDER BY severity DESC`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list risks for %s: %w", category, err)
	}
	return risks, nil
}

// SaveEconomicSeries stores FRED observations, ignoring duplicates.
func (rs *RelationalStore) SaveEconomicSeries(ctx context.Context, series *models.EconomicSeries) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := rs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, point := range series.Points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO economic_indicators (indicator_id, title, date, value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (indicator_id, date) DO UPDATE SET value = EXCLUDED.value`,
			series.IndicatorID, series.Title, point.Date.Format("2006-01-02"), point.Value)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}
	return tx.Commit()
}

// IndicatorHistory returns stored observations for one series, oldest
// first.
func (rs *RelationalStore) IndicatorHistory(ctx context.Context, indicatorID string, limit int) ([]*models.EconomicPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 || limit > 1000 {
		limit = 250
	}
	rows, err := rs.db.QueryContext(ctx, `
		SELECT date, value FROM (
			SELECT date, value FROM economic_indicators
			WHERE indicator_id = $1
			ORDER BY date DESC LIMIT $2
		) recent ORDER BY date ASC`, indicatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", indicatorID, err)
	}
	defer rows.Close()

	var points []*models.EconomicPoint
	for rows.Next() {
		var p models.EconomicPoint
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}

// reportRow maps the reports table.
type reportRow struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Directive  string    `db:"directive"`
	Content    string    `db:"content"`
	ReportType string    `db:"report_type"`
	CreatedAt  time.Time `db:"created_at"`
}

// SaveReport persists a finished report, generating an id when absent,
// and links it to the given assets.
func (rs *RelationalStore) SaveReport(ctx context.Context, report *models.Report, assetIDs []int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.ReportType == "" {
		report.ReportType = "market_analysis"
	}

	_, err := rs.db.ExecContext(ctx, `
		INSERT INTO reports (id, title, directive, content, report_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.Title, report.Directive, report.Content, report.ReportType, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	for _, assetID := range assetIDs {
		_, err := rs.db.ExecContext(ctx, `
			INSERT INTO report_assets (report_id, asset_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, report.ID, assetID)
		if err != nil {
			log.Warn().Err(err).Str("report_id", report.ID).Msg("failed to link report asset")
		}
	}
	return nil
}

// GetReport fetches one report by id.
func (rs *RelationalStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row reportRow
	err := rs.db.GetContext(ctx, &row, `
		SELECT id, title, directive, content, report_type, created_at
		FROM reports WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, ErrReportNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return reportFromRow(row), nil
}

// ListReports returns the newest reports first.
func (rs *RelationalStore) ListReports(ctx context.Context, limit int) ([]*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []reportRow
	err := rs.db.SelectContext(ctx, &rows, `
		SELECT id, title, directive, content, report_type, created_at
		FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]*models.Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportFromRow(row))
	}
	return out, nil
}

func reportFromRow(row reportRow) *models.Report {
	return &models.Report{
		ID:         row.ID,
		Title:      row.Title,
		Directive:  row.Directive,
		Content:    row.Content,
		ReportType: row.ReportType,
		CreatedAt:  row.CreatedAt,
	}
}
