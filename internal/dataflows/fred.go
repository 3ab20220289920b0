package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/models"
)

// FREDClient fetches economic series from the St. Louis Fed API.
type FREDClient struct {
	client *resty.Client
	apiKey string
	cache  *CacheManager
	guard  *ProviderGuard
}

// NewFREDClient creates a FRED client.
func NewFREDClient(cfg *config.Config) *FREDClient {
	client := resty.New()
	client.SetBaseURL("https://api.stlouisfed.org/fred")
	client.SetTimeout(30 * time.Second)

	cacheDir := filepath.Join(cfg.DataCacheDir, "fred")
	return &FREDClient{
		client: client,
		apiKey: cfg.FredAPIKey,
		// Economic series revise slowly, so a long TTL is safe.
		cache: NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		guard: NewProviderGuard("fred", 2, 4),
	}
}

type fredSeriesResponse struct {
	Seriess []struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Units     string `json:"units"`
		Frequency string `json:"frequency"`
	} `json:"seriess"`
}

type fredObservationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetSeries retrieves an indicator series with observations between
// start and end.
func (fr *FREDClient) GetSeries(ctx context.Context, seriesID string, start, end time.Time) (*models.EconomicSeries, error) {
	if fr.apiKey == "" {
		return nil, fmt.Errorf("FRED API key not configured")
	}
	seriesID = strings.ToUpper(strings.TrimSpace(seriesID))
	if seriesID == "" {
		return nil, fmt.Errorf("series id cannot be empty")
	}

	cacheKey := fmt.Sprintf("%s_%s_%s", seriesID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	var cached models.EconomicSeries
	if fr.cache.Get("fred", "series", cacheKey, &cached) {
		return &cached, nil
	}

	series := &models.EconomicSeries{
		IndicatorID: seriesID,
		StartDate:   start,
		EndDate:     end,
		Source:      "fred",
	}

	var meta fredSeriesResponse
	var obs fredObservationsResponse
	err := WithRetry(DefaultRetryConfig(), func() error {
		return fr.guard.Do(ctx, func() error {
			resp, err := fr.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"series_id": seriesID,
					"api_key":   fr.apiKey,
					"file_type": "json",
				}).
				SetResult(&meta).
				Get("/series")
			if err != nil {
				return fmt.Errorf("failed to fetch series metadata: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("FRED HTTP %d for series %s", resp.StatusCode(), seriesID)
			}

			resp, err = fr.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"series_id":         seriesID,
					"api_key":           fr.apiKey,
					"file_type":         "json",
					"observation_start": start.Format("2006-01-02"),
					"observation_end":   end.Format("2006-01-02"),
				}).
				SetResult(&obs).
				Get("/series/observations")
			if err != nil {
				return fmt.Errorf("failed to fetch observations: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("FRED HTTP %d for observations %s", resp.StatusCode(), seriesID)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(meta.Seriess) > 0 {
		series.Title = meta.Seriess[0].Title
		series.Units = meta.Seriess[0].Units
		series.Frequency = meta.Seriess[0].Frequency
	}

	for _, o := range obs.Observations {
		// FRED marks missing observations with ".".
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		series.Points = append(series.Points, &models.EconomicPoint{Date: date, Value: value})
	}
	if len(series.Points) > 0 {
		series.LatestValue = series.Points[len(series.Points)-1].Value
	}

	fr.cache.Set("fred", "series", cacheKey, series)
	return series, nil
}

// GetIndicators fetches several series over a trailing window of days.
// Series that fail are skipped rather than failing the whole batch.
func (fr *FREDClient) GetIndicators(ctx context.Context, seriesIDs []string, days int) ([]*models.EconomicSeries, error) {
	if days <= 0 {
		days = 365
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	out := make([]*models.EconomicSeries, 0, len(seriesIDs))
	var lastErr error
	for _, id := range seriesIDs {
		series, err := fr.GetSeries(ctx, id, start, end)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, series)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
