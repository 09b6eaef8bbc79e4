package sim

import (
	"context"
	"fmt"

	"energy-trading/internal/model"
	"energy-trading/internal/store"
)

// PnLResult is the realized profit/loss of one trade, marked against the
// average real-time price of its delivery hour.
type PnLResult struct {
	TradeID          string     `json:"trade_id"`
	Side             model.Side `json:"side"`
	DayAheadPrice    float64    `json:"day_ahead_price"`
	AvgRealTimePrice float64    `json:"real_time_avg_price"`
	Quantity         float64    `json:"quantity"`
	PnL              float64    `json:"pnl"`
	RealTimePoints   int        `json:"real_time_data_points"`
}

// PnLCalculator derives trade P&L from the market data cache. P&L is never
// stored on the trade; it is recomputed on every read so it always reflects
// the current cache state.
type PnLCalculator struct {
	cache *MarketCache
	book  store.Store
}

// NewPnLCalculator creates a calculator over the given cache and book.
func NewPnLCalculator(cache *MarketCache, book store.Store) *PnLCalculator {
	return &PnLCalculator{cache: cache, book: book}
}

// ComputePnL marks a trade against the average real-time price for its hour
// in the given phase's snapshot. A BUY position profits when real-time rises
// above the day-ahead execution price; a SELL position profits when it falls
// below. Returns a DataUnavailableError when the hour has no real-time
// points.
func (p *PnLCalculator) ComputePnL(ctx context.Context, phase model.Phase, trade *model.Trade) (PnLResult, error) {
	bid, err := p.book.GetBid(ctx, trade.BidID)
	if err != nil {
		return PnLResult{}, fmt.Errorf("originating bid for trade %s: %w", trade.ID, err)
	}

	avgRT, points, err := p.cache.AverageRealTimePrice(phase, trade.Hour)
	if err != nil {
		return PnLResult{}, err
	}

	var pnl float64
	switch bid.Side {
	case model.SideSell:
		pnl = (trade.ExecutedPrice - avgRT) * trade.Quantity
	default:
		pnl = (avgRT - trade.ExecutedPrice) * trade.Quantity
	}

	return PnLResult{
		TradeID:          trade.ID,
		Side:             bid.Side,
		DayAheadPrice:    trade.ExecutedPrice,
		AvgRealTimePrice: avgRT,
		Quantity:         trade.Quantity,
		PnL:              pnl,
		RealTimePoints:   points,
	}, nil
}

// TradeWithPnL is a trade annotated with its live-computed P&L. PnL fields
// are nil when real-time data for the trade's hour is unavailable.
type TradeWithPnL struct {
	model.Trade
	Side             model.Side `json:"side"`
	PnL              *float64   `json:"pnl"`
	AvgRealTimePrice *float64   `json:"real_time_avg_price"`
	RealTimePoints   int        `json:"real_time_data_points"`
}

// ListTrades returns an owner's trades, each annotated with P&L computed
// from the current phase's real-time series.
func (e *Engine) ListTrades(ctx context.Context, owner string) ([]TradeWithPnL, error) {
	e.mu.Lock()
	phase := e.phase
	e.mu.Unlock()

	trades, err := e.book.ListTradesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	calc := NewPnLCalculator(e.cache, e.book)
	out := make([]TradeWithPnL, 0, len(trades))
	for i := range trades {
		t := trades[i]
		annotated := TradeWithPnL{Trade: t}
		if bid, err := e.book.GetBid(ctx, t.BidID); err == nil {
			annotated.Side = bid.Side
		}
		if res, err := calc.ComputePnL(ctx, phase, &t); err == nil {
			pnl := res.PnL
			avg := res.AvgRealTimePrice
			annotated.PnL = &pnl
			annotated.AvgRealTimePrice = &avg
			annotated.RealTimePoints = res.RealTimePoints
		}
		out = append(out, annotated)
	}
	return out, nil
}
