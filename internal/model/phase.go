package model

// Phase is the global simulation phase. BIDDING maps to the bidding
// reference date (D-1), TRADING to the delivery date (D0). Exactly one
// phase is active process-wide.
type Phase string

const (
	PhaseBidding Phase = "BIDDING"
	PhaseTrading Phase = "TRADING"
)
