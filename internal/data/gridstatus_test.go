package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"energy-trading/internal/config"
	"energy-trading/internal/model"
)

const testAPIKey = "test-api-key-0123456789"

func TestQueryDatasetBuildsRequest(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status_code":200,"data":[
			{"interval_start_utc":"2025-01-15T14:00:00Z","location":"WESTERN HUB","location_type":"HUB","lmp":50.0}
		]}`))
	}))
	defer srv.Close()

	client := NewGridStatusClient(testAPIKey, srv.URL)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	resp, err := client.QueryDataset(context.Background(), QueryDatasetParams{
		DatasetID:    "pjm_lmp_day_ahead_hourly",
		StartTime:    start,
		EndTime:      start.AddDate(0, 0, 1),
		LocationType: "HUB",
		Limit:        24,
	})
	if err != nil {
		t.Fatalf("QueryDataset: %v", err)
	}

	if gotPath != "/v1/datasets/pjm_lmp_day_ahead_hourly/query" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != testAPIKey {
		t.Errorf("x-api-key = %q", gotKey)
	}
	for _, want := range []string{"filter_column=location_type", "filter_value=HUB", "limit=24", "timezone=market"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(resp.Data) != 1 || resp.Data[0].LMP == nil || *resp.Data[0].LMP != 50.0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestQueryDatasetErrorCodes(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusForbidden, "INVALID_API_KEY"},
		{http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusInternalServerError, "API_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewGridStatusClient(testAPIKey, srv.URL)
			start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
			_, err := client.QueryDataset(context.Background(), QueryDatasetParams{
				DatasetID: "pjm_lmp_day_ahead_hourly",
				StartTime: start,
				EndTime:   start.AddDate(0, 0, 1),
			})
			var gse *GridStatusError
			if !errors.As(err, &gse) {
				t.Fatalf("err = %v, want *GridStatusError", err)
			}
			if gse.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", gse.Code, tt.wantCode)
			}
			if gse.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", gse.StatusCode, tt.status)
			}
		})
	}
}

func TestQueryDatasetValidatesAPIKey(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	params := QueryDatasetParams{
		DatasetID: "pjm_lmp_day_ahead_hourly",
		StartTime: start,
		EndTime:   start.AddDate(0, 0, 1),
	}

	for _, tt := range []struct {
		name, key, wantCode string
	}{
		{"missing", "", "MISSING_API_KEY"},
		{"too short", "abc", "INVALID_API_KEY_FORMAT"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			client := NewGridStatusClient(tt.key, "http://unused.invalid")
			_, err := client.QueryDataset(context.Background(), params)
			var gse *GridStatusError
			if !errors.As(err, &gse) || gse.Code != tt.wantCode {
				t.Fatalf("err = %v, want GridStatusError %s", err, tt.wantCode)
			}
		})
	}
}

func TestProviderFiltersToFirstLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Two hubs interleaved for the same intervals.
		w.Write([]byte(`{"status_code":200,"data":[
			{"interval_start_utc":"2025-01-15T10:00:00Z","location":"WESTERN HUB","lmp":42.0},
			{"interval_start_utc":"2025-01-15T10:00:00Z","location":"EASTERN HUB","lmp":44.0},
			{"interval_start_utc":"2025-01-15T11:00:00Z","location":"WESTERN HUB","lmp":43.0},
			{"interval_start_utc":"2025-01-15T11:00:00Z","location":"EASTERN HUB","lmp":45.0}
		]}`))
	}))
	defer srv.Close()

	provider := NewGridStatusProvider(NewGridStatusClient(testAPIKey, srv.URL), config.Default().Market)
	points, err := provider.FetchDayAhead(context.Background(), "PJM", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDayAhead: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (one hub only)", len(points))
	}
	if points[0].Price != 42.0 || points[1].Price != 43.0 {
		t.Fatalf("prices = %v, %v, want western hub 42.0, 43.0", points[0].Price, points[1].Price)
	}
}

func TestFilterFirstLocation(t *testing.T) {
	if got := filterFirstLocation(nil); got != nil {
		t.Fatalf("nil response -> %+v, want nil", got)
	}

	price := 42.0
	resp := &model.GridStatusLMPResponse{
		StatusCode: 200,
		Data: []model.LMPInterval{
			{Location: "", LMP: &price},
			{Location: "B", LMP: &price},
		},
	}
	// Empty first location disables filtering entirely.
	if got := filterFirstLocation(resp); len(got.Data) != 2 {
		t.Fatalf("filtered %d rows, want all 2 when first location is empty", len(got.Data))
	}
}
