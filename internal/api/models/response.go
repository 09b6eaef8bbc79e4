package models

import (
	"energy-trading/internal/data"
	"energy-trading/internal/model"
	"energy-trading/internal/sim"
)

// PlaceBidResponse confirms an accepted bid.
type PlaceBidResponse struct {
	Status string     `json:"status"`
	Bid    *model.Bid `json:"bid"`
}

// BidListResponse wraps an owner's bids.
type BidListResponse struct {
	Bids  []model.Bid `json:"bids"`
	Count int         `json:"count"`
	Owner string      `json:"owner"`
}

// TradeListResponse wraps an owner's trades with live-computed P&L.
type TradeListResponse struct {
	Trades   []sim.TradeWithPnL `json:"trades"`
	Count    int                `json:"count"`
	TotalPnL float64            `json:"total_pnl"`
	Owner    string             `json:"owner"`
}

// TimeSeriesResponse is the chart payload for the current phase.
type TimeSeriesResponse struct {
	sim.TimeSeries
	Phase                 model.Phase `json:"phase"`
	CurrentSimulationTime string      `json:"current_simulation_time"` // HH:MM
	SimulationMode        bool        `json:"simulation_mode"`
}

// PriceSnapshot is one side of the market summary.
type PriceSnapshot struct {
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Timestamp  string  `json:"timestamp"`
	DataPoints int     `json:"data_points"`
}

// SummaryResponse reports the latest cached prices and their spread.
type SummaryResponse struct {
	DayAhead       *PriceSnapshot `json:"day_ahead"`
	RealTime       *PriceSnapshot `json:"real_time"`
	Spread         float64        `json:"spread"`
	ReferenceDate  string         `json:"reference_date"`
	SimulationMode bool           `json:"simulation_mode"`
}

// AdvanceResponse reports the batch clearing outcome of a phase advance.
type AdvanceResponse struct {
	Status   string              `json:"status"`
	Phase    model.Phase         `json:"phase"`
	Clearing sim.ClearingSummary `json:"clearing"`
}

// PhaseResponse confirms a phase or clock change.
type PhaseResponse struct {
	Status string      `json:"status"`
	Phase  model.Phase `json:"phase"`
}

// MarketListResponse lists the markets available for simulation.
type MarketListResponse struct {
	Markets []data.MarketInfo `json:"markets"`
	Count   int               `json:"count"`
	Primary string            `json:"primary"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
