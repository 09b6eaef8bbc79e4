package models

// PlaceBidRequest is the request body for placing a bid.
type PlaceBidRequest struct {
	Hour     int     `json:"hour"` // 0-23, validated by the engine
	Price    float64 `json:"price" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
	Side     string  `json:"side" binding:"required"` // BUY or SELL
	Owner    string  `json:"owner,omitempty"`         // default: "demo_user"
}

// SetTimeRequest pins the simulated clock. Out-of-range values are clamped.
type SetTimeRequest struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}
