package data

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"energy-trading/internal/model"
)

func LoadGridStatusJSON(path string) (*model.GridStatusLMPResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp model.GridStatusLMPResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FileProvider serves price series from on-disk Grid Status JSON fixtures.
// Used by the CLI and tests; the market and date arguments are ignored
// because the fixture already pins them.
type FileProvider struct {
	DayAheadPath string
	RealTimePath string
}

func (p *FileProvider) FetchDayAhead(_ context.Context, _ string, _ time.Time) ([]model.PricePoint, error) {
	resp, err := LoadGridStatusJSON(p.DayAheadPath)
	if err != nil {
		return nil, err
	}
	return model.PricePointsFromResponse(resp), nil
}

func (p *FileProvider) FetchRealTime(_ context.Context, _ string, _ time.Time) ([]model.PricePoint, error) {
	resp, err := LoadGridStatusJSON(p.RealTimePath)
	if err != nil {
		return nil, err
	}
	return model.PricePointsFromResponse(resp), nil
}
