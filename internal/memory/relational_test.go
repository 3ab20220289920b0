package memory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/models"
)

// newTestStore connects to the Postgres named by ALETHEIA_TEST_PG_DSN,
// skipping when none is configured.
func newTestStore(t *testing.T) *RelationalStore {
	t.Helper()
	dsn := os.Getenv("ALETHEIA_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("ALETHEIA_TEST_PG_DSN not set")
	}
	store, err := NewRelationalStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAssetPricesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assetID, err := store.UpsertAsset(ctx, "TEST_RT", "Round Trip Inc", "equity")
	require.NoError(t, err)

	again, err := store.UpsertAsset(ctx, "TEST_RT", "", "equity")
	require.NoError(t, err)
	assert.Equal(t, assetID, again)

	bars := []*models.MarketBar{
		{
			Date:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			Open:   decimal.NewFromFloat(10),
			High:   decimal.NewFromFloat(11),
			Low:    decimal.NewFromFloat(9.5),
			Close:  decimal.NewFromFloat(10.5),
			Volume: 1000,
		},
	}
	require.NoError(t, store.SavePrices(ctx, assetID, bars))
	// Duplicate dates are ignored.
	require.NoError(t, store.SavePrices(ctx, assetID, bars))

	rec, err := store.GetAssetBySymbol(ctx, "TEST_RT")
	require.NoError(t, err)
	assert.Equal(t, assetID, rec.ID)
	assert.Equal(t, "Round Trip Inc", rec.Name)

	latest, err := store.LatestPrice(ctx, assetID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "TEST_RT", latest.Symbol)
	assert.True(t, latest.Close.Equal(decimal.NewFromFloat(10.5)))
}

func TestNarrativeLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveNarrative(ctx, "test soft landing", "inflation cools without recession", "emerging", 0.4)
	require.NoError(t, err)

	updated, err := store.SaveNarrative(ctx, "test soft landing", "consensus is building", "dominant", 0.8)
	require.NoError(t, err)
	assert.Equal(t, id, updated)

	recent, err := store.RecentNarratives(ctx, 50)
	require.NoError(t, err)

	found := false
	for _, n := range recent {
		if n.ID == id {
			found = true
			assert.Equal(t, "dominant", n.Status)
			assert.InDelta(t, 0.8, n.Strength, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestReportPersistence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := &models.Report{
		Title:     "Test Report",
		Directive: "analyze the test market",
		Content:   "# Findings\nnothing unusual",
	}
	require.NoError(t, store.SaveReport(ctx, report, nil))
	require.NotEmpty(t, report.ID)

	got, err := store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Title, got.Title)
	assert.Equal(t, "market_analysis", got.ReportType)

	list, err := store.ListReports(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	_, err = store.GetReport(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestRiskQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRisk(ctx, "test hidden leverage in private credit", "credit", 8.5, true, []string{"spread widening", "redemption gates"}))
	require.NoError(t, store.SaveRisk(ctx, "test export control escalation", "geopolitical", 6.0, false, nil))

	swans, err := store.OpenBlackSwans(ctx)
	require.NoError(t, err)
	assert.Contains(t, swans, "test hidden leverage in private credit")

	credit, err := store.OpenRisksByCategory(ctx, "credit")
	require.NoError(t, err)
	for _, r := range credit {
		if r.Description == "test hidden leverage in private credit" {
			assert.Contains(t, r.Warnings(), "spread widening")
		}
	}

	geo, err := store.OpenRisksByCategory(ctx, "geopolitical")
	require.NoError(t, err)
	found := false
	for _, r := range geo {
		if r.Description == "test export control escalation" {
			found = true
			assert.InDelta(t, 6.0, r.Severity, 1e-9)
			assert.False(t, r.IsBlackSwan)
		}
	}
	assert.True(t, found)
}

func TestIndicatorHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	series := &models.EconomicSeries{
		IndicatorID: "TEST_SERIES",
		Title:       "Test Series",
		Points: []*models.EconomicPoint{
			{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1.0},
			{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Value: 2.0},
		},
	}
	require.NoError(t, store.SaveEconomicSeries(ctx, series))

	points, err := store.IndicatorHistory(ctx, "TEST_SERIES", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(points), 2)
	assert.True(t, points[0].Date.Before(points[len(points)-1].Date))
}
