package model

import (
	"testing"
	"time"
)

func TestPricePointsFromResponseSkipsNilPrices(t *testing.T) {
	price1, price2 := 42.5, 55.0
	start := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	resp := &GridStatusLMPResponse{
		StatusCode: 200,
		Data: []LMPInterval{
			{IntervalStartUTC: start, LMP: &price1},
			{IntervalStartUTC: start.Add(5 * time.Minute), LMP: nil},
			{IntervalStartUTC: start.Add(10 * time.Minute), LMP: &price2},
		},
	}

	points := PricePointsFromResponse(resp)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (nil LMP rows skipped)", len(points))
	}
	if points[0].Price != 42.5 || points[1].Price != 55.0 {
		t.Fatalf("prices = %v, %v, want 42.5, 55.0", points[0].Price, points[1].Price)
	}
	if !points[0].Timestamp.Equal(start) {
		t.Fatalf("timestamp = %v, want %v", points[0].Timestamp, start)
	}

	if got := PricePointsFromResponse(nil); got != nil {
		t.Fatalf("nil response -> %v, want nil", got)
	}
}

func TestIntervalTimestampPrefersUTC(t *testing.T) {
	local := time.Date(2025, 1, 15, 9, 0, 0, 0, time.FixedZone("EST", -5*3600))
	utc := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)

	it := LMPInterval{IntervalStartLocal: local, IntervalStartUTC: utc}
	if got := it.Timestamp(); !got.Equal(utc) {
		t.Fatalf("Timestamp() = %v, want UTC field %v", got, utc)
	}

	it = LMPInterval{IntervalStartLocal: local}
	if got := it.Timestamp(); !got.Equal(local) {
		t.Fatalf("Timestamp() without UTC = %v, want local fallback %v", got, local)
	}
}
