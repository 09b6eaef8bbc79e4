package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"energy-trading/internal/metrics"
	"energy-trading/internal/model"
	"energy-trading/internal/store"
)

// Engine is the phase state machine: it admits bids during BIDDING, clears
// them in batch on the transition to TRADING, and owns the simulation clock.
// All mutations of the order book, phase, and clock are serialized behind a
// single mutex; concurrent bid placement and batch clearing never interleave.
type Engine struct {
	mu    sync.Mutex
	phase model.Phase

	clock *Clock
	cache *MarketCache
	book  store.Store

	cutoffHour  int
	defaultHour int

	biddingDate  time.Time
	deliveryDate time.Time
}

// Options configures an Engine.
type Options struct {
	CutoffHour   int // bidding closes at this clock hour (default 11)
	DefaultHour  int // clock lands here on transitions with no better target
	BiddingDate  time.Time
	DeliveryDate time.Time
}

// NewEngine creates an engine in BIDDING phase with the clock on the
// bidding reference date.
func NewEngine(book store.Store, cache *MarketCache, opts Options) *Engine {
	if opts.CutoffHour == 0 {
		opts.CutoffHour = 11
	}
	return &Engine{
		phase:        model.PhaseBidding,
		clock:        NewClock(opts.BiddingDate),
		cache:        cache,
		book:         book,
		cutoffHour:   opts.CutoffHour,
		defaultHour:  opts.DefaultHour,
		biddingDate:  midnight(opts.BiddingDate),
		deliveryDate: midnight(opts.DeliveryDate),
	}
}

// Phase returns the current simulation phase.
func (e *Engine) Phase() model.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Clock exposes the simulation clock for read-only use (status, charts).
func (e *Engine) Clock() *Clock { return e.clock }

// Cache exposes the market data cache.
func (e *Engine) Cache() *MarketCache { return e.cache }

// Initialize loads both market data snapshots. This is the engine's only
// suspension point; it honors ctx cancellation and never retries a failed
// fetch on its own.
func (e *Engine) Initialize(ctx context.Context) (LoadResult, error) {
	result, err := e.cache.EnsureLoaded(ctx)
	if err != nil {
		metrics.CacheLoads.WithLabelValues("error").Inc()
		return result, err
	}
	metrics.CacheLoads.WithLabelValues(string(result.Status)).Inc()
	return result, nil
}

// PlaceBidParams are the caller-supplied fields of a new bid.
type PlaceBidParams struct {
	Hour     int
	Price    float64
	Quantity float64
	Side     model.Side
	Owner    string
}

// PlaceBid validates and records a new PENDING bid. It is refused without
// creating a record when the phase is not BIDDING, the clock has reached
// the cutoff hour, or the parameters fail domain validation. Execution is
// always deferred to the batch transition.
func (e *Engine) PlaceBid(ctx context.Context, p PlaceBidParams) (*model.Bid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseBidding {
		metrics.BidsRefused.WithLabelValues("phase").Inc()
		return nil, phaseViolationf("bids can only be placed during BIDDING phase (current: %s)", e.phase)
	}
	now := e.clock.Now()
	if now.Hour() >= e.cutoffHour {
		metrics.BidsRefused.WithLabelValues("cutoff").Inc()
		return nil, phaseViolationf("bidding closed at %02d:00 (current simulated time %02d:%02d)",
			e.cutoffHour, now.Hour(), now.Minute())
	}
	if err := validateBidParams(p); err != nil {
		metrics.BidsRefused.WithLabelValues("validation").Inc()
		return nil, err
	}

	owner := p.Owner
	if owner == "" {
		owner = "demo_user"
	}
	bid := &model.Bid{
		ID:          uuid.NewString(),
		Hour:        p.Hour,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Side:        p.Side,
		Owner:       owner,
		SubmittedAt: now,
		Status:      model.BidPending,
	}
	if err := e.book.InsertBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("store bid: %w", err)
	}

	metrics.BidsPlaced.WithLabelValues(string(bid.Side)).Inc()
	slog.Info("bid placed",
		"bid_id", bid.ID,
		"hour", bid.Hour,
		"side", bid.Side,
		"price", bid.Price,
		"quantity", bid.Quantity,
		"owner", bid.Owner)
	return bid, nil
}

func validateBidParams(p PlaceBidParams) error {
	if p.Hour < 0 || p.Hour > 23 {
		return validationErrorf("hour must be between 0 and 23, got %d", p.Hour)
	}
	if p.Price <= 0 {
		return validationErrorf("price must be positive, got %v", p.Price)
	}
	if p.Quantity <= 0 {
		return validationErrorf("quantity must be positive, got %v", p.Quantity)
	}
	if !p.Side.Valid() {
		return validationErrorf("side must be BUY or SELL, got %q", p.Side)
	}
	return nil
}

// ExecutionOutcome classifies the result of a single bid clearing attempt.
type ExecutionOutcome string

const (
	OutcomeExecuted ExecutionOutcome = "executed"
	OutcomeRejected ExecutionOutcome = "rejected"
	OutcomePending  ExecutionOutcome = "pending"
)

// ExecutionResult reports what happened to one bid.
type ExecutionResult struct {
	Outcome       ExecutionOutcome `json:"outcome"`
	BidID         string           `json:"bid_id"`
	ClearingPrice float64          `json:"clearing_price,omitempty"`
	Trade         *model.Trade     `json:"trade,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// ExecuteBid clears a single PENDING bid against the current phase's
// day-ahead series. With ignoreTimeGate false, a bid whose hour the clock
// has not reached yet stays PENDING ("not yet due"). A missing clearing
// price is a data-availability error, not a market rejection.
func (e *Engine) ExecuteBid(ctx context.Context, bidID string, ignoreTimeGate bool) (ExecutionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeBidLocked(ctx, bidID, ignoreTimeGate)
}

func (e *Engine) executeBidLocked(ctx context.Context, bidID string, ignoreTimeGate bool) (ExecutionResult, error) {
	bid, err := e.book.GetBid(ctx, bidID)
	if err != nil {
		return ExecutionResult{}, validationErrorf("bid %s not found", bidID)
	}
	if bid.Status != model.BidPending {
		return ExecutionResult{}, validationErrorf("bid %s already resolved (%s)", bidID, bid.Status)
	}

	if !ignoreTimeGate {
		now := e.clock.Now()
		if now.Hour() < bid.Hour {
			return ExecutionResult{
				Outcome: OutcomePending,
				BidID:   bid.ID,
				Message: fmt.Sprintf("waiting for hour %d (current hour %d)", bid.Hour, now.Hour()),
			}, nil
		}
	}

	clearingPrice, err := e.cache.ClearingPriceForHour(e.phase, bid.Hour)
	if err != nil {
		return ExecutionResult{}, err
	}

	// BUY executes when the bidder is willing to pay at least the clearing
	// price; SELL when willing to accept at most the clearing price.
	executes := false
	switch bid.Side {
	case model.SideBuy:
		executes = bid.Price >= clearingPrice
	case model.SideSell:
		executes = bid.Price <= clearingPrice
	}

	if !executes {
		// Rejection still records the observed clearing price so the
		// bidder can see what the market cleared at.
		if err := e.book.ResolveBid(ctx, bid.ID, model.BidRejected, clearingPrice); err != nil {
			return ExecutionResult{}, fmt.Errorf("resolve bid: %w", err)
		}
		metrics.BidsCleared.WithLabelValues(string(OutcomeRejected)).Inc()
		slog.Info("bid rejected",
			"bid_id", bid.ID,
			"side", bid.Side,
			"bid_price", bid.Price,
			"clearing_price", clearingPrice)
		return ExecutionResult{
			Outcome:       OutcomeRejected,
			BidID:         bid.ID,
			ClearingPrice: clearingPrice,
		}, nil
	}

	trade := &model.Trade{
		ID:            uuid.NewString(),
		BidID:         bid.ID,
		ExecutedPrice: clearingPrice,
		Quantity:      bid.Quantity,
		Hour:          bid.Hour,
		CreatedAt:     e.clock.Now(),
	}
	if err := e.book.ResolveBid(ctx, bid.ID, model.BidExecuted, clearingPrice); err != nil {
		return ExecutionResult{}, fmt.Errorf("resolve bid: %w", err)
	}
	if err := e.book.InsertTrade(ctx, trade); err != nil {
		return ExecutionResult{}, fmt.Errorf("store trade: %w", err)
	}

	metrics.BidsCleared.WithLabelValues(string(OutcomeExecuted)).Inc()
	slog.Info("bid executed",
		"bid_id", bid.ID,
		"trade_id", trade.ID,
		"side", bid.Side,
		"bid_price", bid.Price,
		"clearing_price", clearingPrice,
		"quantity", bid.Quantity)
	return ExecutionResult{
		Outcome:       OutcomeExecuted,
		BidID:         bid.ID,
		ClearingPrice: clearingPrice,
		Trade:         trade,
	}, nil
}

// ClearingSummary reports the result of a batch clearing.
type ClearingSummary struct {
	Executed int `json:"executed"`
	Rejected int `json:"rejected"`
	// Skipped counts bids left PENDING because no clearing price existed
	// for their hour. Normally zero when the snapshot covers all 24 hours.
	Skipped int `json:"skipped"`
}

// AdvanceToTradingDay transitions BIDDING -> TRADING and clears every
// PENDING bid against the delivery day's day-ahead prices. The clock jumps
// to the delivery date at the latest bid hour (or the default hour when the
// book is empty), so the user lands at the most relevant moment of the day.
func (e *Engine) AdvanceToTradingDay(ctx context.Context) (ClearingSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseBidding {
		return ClearingSummary{}, phaseViolationf("already in TRADING phase")
	}
	if !e.cache.Loaded(model.PhaseTrading) {
		return ClearingSummary{}, dataUnavailablef("delivery day market data not initialized")
	}

	e.phase = model.PhaseTrading
	e.clock.SetReferenceDate(e.deliveryDate)

	bids, err := e.book.ListBids(ctx, "")
	if err != nil {
		return ClearingSummary{}, fmt.Errorf("list bids: %w", err)
	}
	hour := e.defaultHour
	for _, b := range bids {
		if b.Hour > hour {
			hour = b.Hour
		}
	}
	e.clock.SetTime(hour, 0)

	metrics.PhaseTransitions.WithLabelValues("advance").Inc()
	slog.Info("phase transition",
		"from", model.PhaseBidding,
		"to", model.PhaseTrading,
		"clock_hour", hour,
		"delivery_date", e.deliveryDate.Format("2006-01-02"))

	pending, err := e.book.PendingBids(ctx)
	if err != nil {
		return ClearingSummary{}, fmt.Errorf("list pending bids: %w", err)
	}

	var summary ClearingSummary
	for _, bid := range pending {
		res, err := e.executeBidLocked(ctx, bid.ID, true)
		if err != nil {
			if IsDataUnavailable(err) {
				summary.Skipped++
				slog.Warn("bid skipped during batch clearing", "bid_id", bid.ID, "hour", bid.Hour, "err", err)
				continue
			}
			return summary, err
		}
		switch res.Outcome {
		case OutcomeExecuted:
			summary.Executed++
		case OutcomeRejected:
			summary.Rejected++
		}
	}

	slog.Info("batch clearing complete",
		"executed", summary.Executed,
		"rejected", summary.Rejected,
		"skipped", summary.Skipped)
	return summary, nil
}

// BackToBiddingDay transitions TRADING -> BIDDING. Existing bids and trades
// are untouched; already-cleared bids are not reopened. Only the active data
// snapshot, cutoff rules, and clock change.
func (e *Engine) BackToBiddingDay() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != model.PhaseTrading {
		return phaseViolationf("already in BIDDING phase")
	}

	e.phase = model.PhaseBidding
	e.clock.SetReferenceDate(e.biddingDate)
	e.clock.SetTime(e.defaultHour, 0)

	metrics.PhaseTransitions.WithLabelValues("back").Inc()
	slog.Info("phase transition",
		"from", model.PhaseTrading,
		"to", model.PhaseBidding,
		"clock_hour", e.defaultHour,
		"bidding_date", e.biddingDate.Format("2006-01-02"))
	return nil
}

// ResetOrderBook clears all bids and trades. Phase and clock are untouched.
func (e *Engine) ResetOrderBook(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.book.Reset(ctx); err != nil {
		return fmt.Errorf("reset order book: %w", err)
	}
	slog.Info("order book reset", "phase", e.phase)
	return nil
}

// SetSimulatedTime pins the clock to hour:minute on the current phase's
// reference date. Out-of-range values are clamped, never rejected.
func (e *Engine) SetSimulatedTime(hour, minute int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.SetTime(hour, minute)
	now := e.clock.Now()
	slog.Info("simulated time set", "hour", now.Hour(), "minute", now.Minute(), "phase", e.phase)
}

// ListBids returns an owner's bids as a consistent snapshot.
func (e *Engine) ListBids(ctx context.Context, owner string) ([]model.Bid, error) {
	return e.book.ListBids(ctx, owner)
}

// Status summarizes the simulation for dashboards.
type Status struct {
	Phase              model.Phase `json:"phase"`
	SimulatedTime      string      `json:"simulated_time"` // HH:MM
	ReferenceDate      string      `json:"reference_date"`
	CutoffHour         int         `json:"cutoff_hour"`
	MinutesUntilCutoff *int        `json:"minutes_until_cutoff,omitempty"`
	BidCount           int         `json:"bid_count"`
	TradeCount         int         `json:"trade_count"`
	DataInitialized    bool        `json:"data_initialized"`
	DayAheadPoints     int         `json:"day_ahead_points"`
	RealTimePoints     int         `json:"real_time_points"`
}

// Status reports phase, simulated time, cutoff countdown, and book counts.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	e.mu.Lock()
	phase := e.phase
	now := e.clock.Now()
	refDate := e.clock.ReferenceDate()
	e.mu.Unlock()

	bids, trades, err := e.book.Counts(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("count order book: %w", err)
	}

	da, rt := e.cache.PointCounts(phase)
	st := Status{
		Phase:           phase,
		SimulatedTime:   fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()),
		ReferenceDate:   refDate.Format("2006-01-02"),
		CutoffHour:      e.cutoffHour,
		BidCount:        bids,
		TradeCount:      trades,
		DataInitialized: e.cache.Loaded(phase),
		DayAheadPoints:  da,
		RealTimePoints:  rt,
	}
	if phase == model.PhaseBidding {
		mins := (e.cutoffHour*60 - (now.Hour()*60 + now.Minute()))
		if mins < 0 {
			mins = 0
		}
		st.MinutesUntilCutoff = &mins
	}
	return st, nil
}

// TimeSeries returns the current phase's chart data as of the simulated
// time: day-ahead in full, real-time progressively revealed.
func (e *Engine) TimeSeries(ctx context.Context) (TimeSeries, string, error) {
	e.mu.Lock()
	phase := e.phase
	now := e.clock.Now()
	e.mu.Unlock()

	ts, err := e.cache.TimeSeriesAsOf(phase, now)
	if err != nil {
		return TimeSeries{}, "", err
	}
	return ts, fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()), nil
}
