package model

import "time"

// Side is the direction of a bid.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is a recognized side.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// BidStatus is the lifecycle state of a bid. A bid starts PENDING and is
// resolved exactly once to EXECUTED or REJECTED by clearing.
type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidExecuted BidStatus = "EXECUTED"
	BidRejected BidStatus = "REJECTED"
)

// Bid is a request to buy or sell energy for a single delivery hour.
// Prices are $/MWh, quantities MWh. Immutable after creation except for
// Status and ClearingPrice, which the clearing step sets exactly once.
type Bid struct {
	ID          string    `json:"id"`
	Hour        int       `json:"hour"` // 0-23
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	Side        Side      `json:"side"`
	Owner       string    `json:"owner"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      BidStatus `json:"status"`

	// ClearingPrice is the day-ahead price observed when the bid was
	// resolved. It is recorded on rejection as well as execution so the
	// caller can always see the price that decided the bid's fate.
	ClearingPrice *float64 `json:"clearing_price"`
}

// Trade is the result of a successfully cleared bid. Quantity and Hour are
// copied from the originating bid at creation time and never recomputed.
type Trade struct {
	ID            string    `json:"id"`
	BidID         string    `json:"bid_id"`
	ExecutedPrice float64   `json:"executed_price"`
	Quantity      float64   `json:"quantity"`
	Hour          int       `json:"hour"`
	CreatedAt     time.Time `json:"created_at"`
}
