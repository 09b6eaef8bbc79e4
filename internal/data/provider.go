package data

import (
	"context"
	"time"

	"energy-trading/internal/model"
)

// Provider supplies the two immutable price series for a reference date.
// An empty series means "unavailable for that date", not an error; errors
// are reserved for transport and API failures.
type Provider interface {
	// FetchDayAhead returns the hourly day-ahead clearing prices for the
	// given reference date, ordered by timestamp.
	FetchDayAhead(ctx context.Context, market string, date time.Time) ([]model.PricePoint, error)

	// FetchRealTime returns the sub-hourly real-time prices for the given
	// reference date, ordered by timestamp.
	FetchRealTime(ctx context.Context, market string, date time.Time) ([]model.PricePoint, error)
}
