package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"energy-trading/internal/config"
	"energy-trading/internal/model"
)

// GridStatusClient provides methods to fetch data from the Grid Status API.
type GridStatusClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewGridStatusClient creates a new Grid Status API client.
// If baseURL is empty, defaults to "https://api.gridstatus.io".
func NewGridStatusClient(apiKey string, baseURL string) *GridStatusClient {
	if baseURL == "" {
		baseURL = "https://api.gridstatus.io"
	}
	return &GridStatusClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// QueryDatasetParams defines parameters for querying a dataset.
type QueryDatasetParams struct {
	DatasetID    string    // e.g., "pjm_lmp_day_ahead_hourly"
	StartTime    time.Time // Start of time range (inclusive)
	EndTime      time.Time // End of time range (exclusive)
	Timezone     string    // e.g., "market", "UTC" (default: "market")
	LocationType string    // optional filter, e.g., "HUB"
	Limit        int       // optional row limit
}

// GridStatusError represents an error from the Grid Status API.
type GridStatusError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *GridStatusError) Error() string {
	return e.Message
}

// QueryDataset fetches LMP rows for a dataset from the Grid Status API.
//
// WARNING: If caching is enabled (ENABLE_GRIDSTATUS_CACHE=true), responses may
// be cached. Caching is ONLY for LOCAL DEVELOPMENT. Check Grid Status Terms of
// Use before enabling in any production-like environment.
func (c *GridStatusClient) QueryDataset(ctx context.Context, params QueryDatasetParams) (*model.GridStatusLMPResponse, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}

	// Check cache first (only if enabled for development).
	cache := GetCache()
	if cache != nil {
		cacheKey := GenerateCacheKey(params)
		if cached, found := cache.Get(cacheKey); found {
			slog.Info("gridstatus cache hit",
				"dataset", params.DatasetID,
				"start", params.StartTime.Format("2006-01-02"),
				"end", params.EndTime.Format("2006-01-02"),
				"rows", len(cached.Data))
			return cached, nil
		}
	}
	if params.DatasetID == "" {
		return nil, fmt.Errorf("dataset_id is required")
	}
	if params.StartTime.IsZero() || params.EndTime.IsZero() {
		return nil, fmt.Errorf("start_time and end_time are required")
	}
	if params.StartTime.After(params.EndTime) {
		return nil, fmt.Errorf("start_time must be before end_time")
	}

	// Build URL: /v1/datasets/{dataset_id}/query
	path := fmt.Sprintf("/v1/datasets/%s/query", params.DatasetID)
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("start_time", params.StartTime.Format(time.RFC3339))
	q.Set("end_time", params.EndTime.Format(time.RFC3339))
	if params.Timezone != "" {
		q.Set("timezone", params.Timezone)
	} else {
		q.Set("timezone", "market")
	}
	if params.LocationType != "" {
		q.Set("filter_column", "location_type")
		q.Set("filter_value", params.LocationType)
	}
	if params.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", params.Limit))
	}
	u.RawQuery = q.Encode()

	slog.Info("gridstatus request",
		"path", u.Path,
		"dataset", params.DatasetID,
		"start", params.StartTime.Format(time.RFC3339),
		"end", params.EndTime.Format(time.RFC3339),
		"timezone", q.Get("timezone"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.Error("gridstatus request failed", "err", err, "duration", duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("gridstatus response",
		"status", resp.StatusCode,
		"duration", duration,
		"dataset", params.DatasetID)

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, continue
	case http.StatusForbidden:
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_API_KEY",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	case http.StatusUnauthorized:
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: Invalid API key",
		}
	default:
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var result model.GridStatusLMPResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("gridstatus decode failed", "err", err, "dataset", params.DatasetID)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	slog.Info("gridstatus success", "rows", len(result.Data), "dataset", params.DatasetID)

	if cache := GetCache(); cache != nil {
		cache.Set(GenerateCacheKey(params), &result)
	}

	return &result, nil
}

// validateAPIKey validates that the API key is present and not obviously invalid.
func (c *GridStatusClient) validateAPIKey() error {
	if c.APIKey == "" {
		return &GridStatusError{
			Code:    "MISSING_API_KEY",
			Message: "API key is required",
		}
	}
	// Grid Status API keys are long opaque strings; reject obviously bad ones.
	if len(c.APIKey) < 10 {
		return &GridStatusError{
			Code:    "INVALID_API_KEY_FORMAT",
			Message: "API key appears to be invalid (too short)",
		}
	}
	return nil
}

// GridStatusProvider adapts GridStatusClient to the Provider interface using
// the configured dataset IDs.
type GridStatusProvider struct {
	Client *GridStatusClient
	Market config.MarketConfig
}

// NewGridStatusProvider creates a provider for the configured market.
func NewGridStatusProvider(client *GridStatusClient, market config.MarketConfig) *GridStatusProvider {
	return &GridStatusProvider{Client: client, Market: market}
}

func (p *GridStatusProvider) FetchDayAhead(ctx context.Context, market string, date time.Time) ([]model.PricePoint, error) {
	return p.fetchSeries(ctx, p.Market.DayAheadDataset, date, 24)
}

func (p *GridStatusProvider) FetchRealTime(ctx context.Context, market string, date time.Time) ([]model.PricePoint, error) {
	// One day of 5-minute intervals is 288 rows; ask for a little headroom.
	return p.fetchSeries(ctx, p.Market.RealTimeDataset, date, 320)
}

func (p *GridStatusProvider) fetchSeries(ctx context.Context, dataset string, date time.Time, limit int) ([]model.PricePoint, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	resp, err := p.Client.QueryDataset(ctx, QueryDatasetParams{
		DatasetID:    dataset,
		StartTime:    day,
		EndTime:      day.AddDate(0, 0, 1),
		Timezone:     "market",
		LocationType: p.Market.LocationType,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return model.PricePointsFromResponse(filterFirstLocation(resp)), nil
}

// filterFirstLocation keeps only the first location present in the response.
// Hub datasets can return several hubs for the same interval; a clean single
// series is needed for hour-of-day lookups.
func filterFirstLocation(resp *model.GridStatusLMPResponse) *model.GridStatusLMPResponse {
	if resp == nil || len(resp.Data) == 0 {
		return resp
	}
	first := resp.Data[0].Location
	if first == "" {
		return resp
	}
	filtered := &model.GridStatusLMPResponse{StatusCode: resp.StatusCode}
	for _, it := range resp.Data {
		if it.Location == first {
			filtered.Data = append(filtered.Data, it)
		}
	}
	return filtered
}
