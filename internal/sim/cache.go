package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"energy-trading/internal/data"
	"energy-trading/internal/model"
)

// LoadStatus describes the outcome of an EnsureLoaded call.
type LoadStatus string

const (
	LoadInitialized LoadStatus = "initialized"
	LoadCached      LoadStatus = "cached"
	LoadPartial     LoadStatus = "partial"
)

// LoadResult reports what the cache holds after an EnsureLoaded call.
type LoadResult struct {
	Status                 LoadStatus `json:"status"`
	BiddingDate            string     `json:"bidding_date"`
	DeliveryDate           string     `json:"delivery_date"`
	BiddingDayAheadPoints  int        `json:"bidding_day_ahead_points"`
	BiddingRealTimePoints  int        `json:"bidding_real_time_points"`
	DeliveryDayAheadPoints int        `json:"delivery_day_ahead_points"`
	DeliveryRealTimePoints int        `json:"delivery_real_time_points"`
}

// snapshot holds the two immutable price series for one reference date.
type snapshot struct {
	loaded   bool
	dayAhead []model.PricePoint
	realTime []model.PricePoint
}

// MarketCache holds the bidding-day and delivery-day market data snapshots.
// Each snapshot is fetched at most once per session and is immutable
// afterward; concurrent first-time loads are coalesced behind a single
// mutex so the provider is hit exactly once per snapshot.
type MarketCache struct {
	mu       sync.Mutex
	provider data.Provider
	market   string

	biddingDate  time.Time
	deliveryDate time.Time

	bidding  snapshot
	delivery snapshot
}

// NewMarketCache creates an empty cache for the two fixed reference dates.
func NewMarketCache(provider data.Provider, market string, biddingDate, deliveryDate time.Time) *MarketCache {
	return &MarketCache{
		provider:     provider,
		market:       market,
		biddingDate:  midnight(biddingDate),
		deliveryDate: midnight(deliveryDate),
	}
}

// EnsureLoaded fetches any snapshot not already present. It is idempotent:
// when both snapshots are present it reports "cached" without touching the
// provider. A fetch failure leaves already-loaded snapshots intact and is
// returned as a ProviderFailureError naming the failed leg, alongside a
// partial LoadResult, so the caller can decide whether to proceed.
func (c *MarketCache) EnsureLoaded(ctx context.Context) (LoadResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bidding.loaded && c.delivery.loaded {
		return c.lockedResult(LoadCached), nil
	}

	if !c.bidding.loaded {
		snap, err := c.fetchSnapshot(ctx, c.biddingDate)
		if err != nil {
			slog.Error("market data load failed", "leg", "bidding", "err", err)
			return c.lockedResult(LoadPartial), &ProviderFailureError{Leg: "bidding", Err: err}
		}
		c.bidding = snap
		slog.Info("market data loaded",
			"leg", "bidding",
			"date", c.biddingDate.Format("2006-01-02"),
			"day_ahead_points", len(snap.dayAhead),
			"real_time_points", len(snap.realTime))
	}

	if !c.delivery.loaded {
		snap, err := c.fetchSnapshot(ctx, c.deliveryDate)
		if err != nil {
			slog.Error("market data load failed", "leg", "delivery", "err", err)
			return c.lockedResult(LoadPartial), &ProviderFailureError{Leg: "delivery", Err: err}
		}
		c.delivery = snap
		slog.Info("market data loaded",
			"leg", "delivery",
			"date", c.deliveryDate.Format("2006-01-02"),
			"day_ahead_points", len(snap.dayAhead),
			"real_time_points", len(snap.realTime))
	}

	return c.lockedResult(LoadInitialized), nil
}

// Invalidate drops both snapshots so the next EnsureLoaded refetches.
func (c *MarketCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bidding = snapshot{}
	c.delivery = snapshot{}
}

func (c *MarketCache) fetchSnapshot(ctx context.Context, date time.Time) (snapshot, error) {
	da, err := c.provider.FetchDayAhead(ctx, c.market, date)
	if err != nil {
		return snapshot{}, err
	}
	rt, err := c.provider.FetchRealTime(ctx, c.market, date)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{loaded: true, dayAhead: da, realTime: rt}, nil
}

func (c *MarketCache) lockedResult(status LoadStatus) LoadResult {
	return LoadResult{
		Status:                 status,
		BiddingDate:            c.biddingDate.Format("2006-01-02"),
		DeliveryDate:           c.deliveryDate.Format("2006-01-02"),
		BiddingDayAheadPoints:  len(c.bidding.dayAhead),
		BiddingRealTimePoints:  len(c.bidding.realTime),
		DeliveryDayAheadPoints: len(c.delivery.dayAhead),
		DeliveryRealTimePoints: len(c.delivery.realTime),
	}
}

// snapshotFor selects the snapshot for a phase: BIDDING reads the
// bidding-day data, TRADING the delivery-day data.
func (c *MarketCache) snapshotFor(phase model.Phase) (snapshot, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if phase == model.PhaseTrading {
		return c.delivery, c.deliveryDate
	}
	return c.bidding, c.biddingDate
}

// Loaded reports whether the snapshot for a phase is present.
func (c *MarketCache) Loaded(phase model.Phase) bool {
	snap, _ := c.snapshotFor(phase)
	return snap.loaded
}

// ClearingPriceForHour returns the day-ahead clearing price for the given
// hour of day in the phase-appropriate series. Day-ahead data carries one
// point per hour, so this matches on the hour component of the timestamp,
// not the exact instant.
func (c *MarketCache) ClearingPriceForHour(phase model.Phase, hour int) (float64, error) {
	snap, _ := c.snapshotFor(phase)
	if !snap.loaded {
		return 0, dataUnavailablef("market data not initialized")
	}
	for _, p := range snap.dayAhead {
		if p.Timestamp.Hour() == hour {
			return p.Price, nil
		}
	}
	return 0, dataUnavailablef("no clearing price found for hour %d", hour)
}

// AverageRealTimePrice returns the arithmetic mean of all real-time points
// in the given hour of day, and the number of points averaged. All points
// in the hour weigh equally regardless of sub-hour duration.
func (c *MarketCache) AverageRealTimePrice(phase model.Phase, hour int) (float64, int, error) {
	snap, _ := c.snapshotFor(phase)
	if !snap.loaded {
		return 0, 0, dataUnavailablef("market data not initialized")
	}
	var sum float64
	var n int
	for _, p := range snap.realTime {
		if p.Timestamp.Hour() == hour {
			sum += p.Price
			n++
		}
	}
	if n == 0 {
		return 0, 0, dataUnavailablef("no real-time prices found for hour %d", hour)
	}
	return sum / float64(n), n, nil
}

// TimeSeries is the chart payload for one phase's reference day.
type TimeSeries struct {
	ReferenceDate string             `json:"reference_date"`
	DayAhead      []model.PricePoint `json:"day_ahead"`
	RealTime      []model.PricePoint `json:"real_time"`
}

// TimeSeriesAsOf returns the day-ahead series in full (it is known in
// advance) and the real-time series cut off at asOf's time of day. The
// cutoff compares hour*60+minute only, ignoring the calendar date: the
// snapshots hold a past day's data replayed as "today", and progressive
// revelation is what downstream charts rely on. Do not "fix" this to a
// timestamp comparison.
func (c *MarketCache) TimeSeriesAsOf(phase model.Phase, asOf time.Time) (TimeSeries, error) {
	snap, date := c.snapshotFor(phase)
	if !snap.loaded {
		return TimeSeries{}, dataUnavailablef("market data not initialized")
	}

	cutoff := asOf.Hour()*60 + asOf.Minute()
	rt := make([]model.PricePoint, 0, len(snap.realTime))
	for _, p := range snap.realTime {
		if p.Timestamp.Hour()*60+p.Timestamp.Minute() <= cutoff {
			rt = append(rt, p)
		}
	}

	da := make([]model.PricePoint, len(snap.dayAhead))
	copy(da, snap.dayAhead)

	return TimeSeries{
		ReferenceDate: date.Format("2006-01-02"),
		DayAhead:      da,
		RealTime:      rt,
	}, nil
}

// LatestPrices returns the last day-ahead and real-time points of the
// phase-appropriate snapshot, for market summaries. Either may be nil when
// the series is empty.
func (c *MarketCache) LatestPrices(phase model.Phase) (dayAhead, realTime *model.PricePoint, err error) {
	snap, _ := c.snapshotFor(phase)
	if !snap.loaded {
		return nil, nil, dataUnavailablef("market data not initialized")
	}
	if n := len(snap.dayAhead); n > 0 {
		p := snap.dayAhead[n-1]
		dayAhead = &p
	}
	if n := len(snap.realTime); n > 0 {
		p := snap.realTime[n-1]
		realTime = &p
	}
	return dayAhead, realTime, nil
}

// PointCounts reports the series sizes for a phase's snapshot.
func (c *MarketCache) PointCounts(phase model.Phase) (dayAhead, realTime int) {
	snap, _ := c.snapshotFor(phase)
	return len(snap.dayAhead), len(snap.realTime)
}
