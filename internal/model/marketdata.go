package model

import "time"

// GridStatusLMPResponse matches the JSON shape returned by the Grid Status
// dataset query endpoints (and by on-disk fixtures).
//
// Example:
// {
//   "status_code": 200,
//   "data": [ ... ]
// }
type GridStatusLMPResponse struct {
	StatusCode int           `json:"status_code"`
	Data       []LMPInterval `json:"data"`
}

// LMPInterval represents one interval row from a Grid Status LMP dataset.
// All timestamps are provided in the JSON as RFC3339 strings (with offsets).
type LMPInterval struct {
	IntervalStartLocal time.Time `json:"interval_start_local"`
	IntervalStartUTC   time.Time `json:"interval_start_utc"`
	IntervalEndLocal   time.Time `json:"interval_end_local"`
	IntervalEndUTC     time.Time `json:"interval_end_utc"`

	Market       string `json:"market"`
	Location     string `json:"location"`
	LocationType string `json:"location_type"`

	// Price in $/MWh. A nil LMP means the row carried no usable price and
	// is skipped during conversion.
	LMP *float64 `json:"lmp"`
}

// Timestamp returns the interval start, preferring the UTC field because
// it is unambiguous and always populated by the API.
func (i LMPInterval) Timestamp() time.Time {
	if !i.IntervalStartUTC.IsZero() {
		return i.IntervalStartUTC
	}
	return i.IntervalStartLocal
}

// PricePoint is one observation in a price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PricePointsFromResponse converts a Grid Status response into an ordered
// price series. Rows without a price are skipped rather than failing the
// whole series.
func PricePointsFromResponse(resp *GridStatusLMPResponse) []PricePoint {
	if resp == nil {
		return nil
	}
	points := make([]PricePoint, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.LMP == nil {
			continue
		}
		points = append(points, PricePoint{
			Timestamp: it.Timestamp(),
			Price:     *it.LMP,
		})
	}
	return points
}
