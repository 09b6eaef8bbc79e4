package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"energy-trading/internal/model"
)

// fakeProvider serves canned series keyed by date and counts fetches.
type fakeProvider struct {
	dayAhead map[string][]model.PricePoint
	realTime map[string][]model.PricePoint
	fail     map[string]error // date -> error for both series

	daCalls int
	rtCalls int
}

func (f *fakeProvider) FetchDayAhead(_ context.Context, _ string, date time.Time) ([]model.PricePoint, error) {
	f.daCalls++
	key := date.Format("2006-01-02")
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	return f.dayAhead[key], nil
}

func (f *fakeProvider) FetchRealTime(_ context.Context, _ string, date time.Time) ([]model.PricePoint, error) {
	f.rtCalls++
	key := date.Format("2006-01-02")
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	return f.realTime[key], nil
}

var (
	biddingDay  = time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	deliveryDay = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
)

func pt(day time.Time, hour, minute int, price float64) model.PricePoint {
	return model.PricePoint{
		Timestamp: day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
		Price:     price,
	}
}

func newTestProvider() *fakeProvider {
	bd := biddingDay.Format("2006-01-02")
	dd := deliveryDay.Format("2006-01-02")
	return &fakeProvider{
		dayAhead: map[string][]model.PricePoint{
			bd: {pt(biddingDay, 10, 0, 40.0), pt(biddingDay, 14, 0, 48.0)},
			dd: {pt(deliveryDay, 10, 0, 42.0), pt(deliveryDay, 14, 0, 50.0)},
		},
		realTime: map[string][]model.PricePoint{
			bd: {pt(biddingDay, 14, 0, 45.0), pt(biddingDay, 14, 30, 47.0)},
			dd: {pt(deliveryDay, 14, 5, 55.0), pt(deliveryDay, 14, 35, 65.0), pt(deliveryDay, 15, 0, 70.0)},
		},
		fail: map[string]error{},
	}
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	provider := newTestProvider()
	cache := NewMarketCache(provider, "PJM", biddingDay, deliveryDay)

	first, err := cache.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("first EnsureLoaded: %v", err)
	}
	if first.Status != LoadInitialized {
		t.Fatalf("first load status = %q, want %q", first.Status, LoadInitialized)
	}

	second, err := cache.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("second EnsureLoaded: %v", err)
	}
	if second.Status != LoadCached {
		t.Fatalf("second load status = %q, want %q", second.Status, LoadCached)
	}
	if provider.daCalls != 2 || provider.rtCalls != 2 {
		t.Fatalf("provider fetched %d DA / %d RT times, want 2 / 2 (one per reference date)",
			provider.daCalls, provider.rtCalls)
	}
	if second.DeliveryRealTimePoints != 3 {
		t.Fatalf("delivery RT points = %d, want 3", second.DeliveryRealTimePoints)
	}
}

func TestEnsureLoadedPartialFailure(t *testing.T) {
	provider := newTestProvider()
	provider.fail[deliveryDay.Format("2006-01-02")] = errors.New("upstream 502")
	cache := NewMarketCache(provider, "PJM", biddingDay, deliveryDay)

	result, err := cache.EnsureLoaded(context.Background())
	if err == nil {
		t.Fatal("EnsureLoaded succeeded, want provider failure")
	}
	var pf *ProviderFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("error = %T, want *ProviderFailureError", err)
	}
	if pf.Leg != "delivery" {
		t.Fatalf("failed leg = %q, want %q", pf.Leg, "delivery")
	}
	if result.Status != LoadPartial {
		t.Fatalf("status = %q, want %q", result.Status, LoadPartial)
	}
	// The bidding snapshot survived and serves lookups.
	if !cache.Loaded(model.PhaseBidding) {
		t.Fatal("bidding snapshot should be loaded after partial failure")
	}
	if cache.Loaded(model.PhaseTrading) {
		t.Fatal("delivery snapshot should not be loaded after its fetch failed")
	}

	// A retry after the upstream recovers fetches only the missing leg.
	delete(provider.fail, deliveryDay.Format("2006-01-02"))
	daCalls := provider.daCalls
	retry, err := cache.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("retry EnsureLoaded: %v", err)
	}
	if retry.Status != LoadInitialized {
		t.Fatalf("retry status = %q, want %q", retry.Status, LoadInitialized)
	}
	if provider.daCalls != daCalls+1 {
		t.Fatalf("retry refetched %d DA series, want 1", provider.daCalls-daCalls)
	}
}

func TestClearingPriceForHour(t *testing.T) {
	cache := NewMarketCache(newTestProvider(), "PJM", biddingDay, deliveryDay)

	if _, err := cache.ClearingPriceForHour(model.PhaseBidding, 14); !IsDataUnavailable(err) {
		t.Fatalf("lookup before load: err = %v, want DataUnavailableError", err)
	}

	if _, err := cache.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	// Phase selects the snapshot: same hour, different reference day.
	price, err := cache.ClearingPriceForHour(model.PhaseBidding, 14)
	if err != nil {
		t.Fatalf("bidding lookup: %v", err)
	}
	if price != 48.0 {
		t.Fatalf("bidding clearing price = %v, want 48.0", price)
	}

	price, err = cache.ClearingPriceForHour(model.PhaseTrading, 14)
	if err != nil {
		t.Fatalf("trading lookup: %v", err)
	}
	if price != 50.0 {
		t.Fatalf("trading clearing price = %v, want 50.0", price)
	}

	if _, err := cache.ClearingPriceForHour(model.PhaseTrading, 3); !IsDataUnavailable(err) {
		t.Fatalf("missing hour: err = %v, want DataUnavailableError", err)
	}
}

func TestAverageRealTimePrice(t *testing.T) {
	cache := NewMarketCache(newTestProvider(), "PJM", biddingDay, deliveryDay)
	if _, err := cache.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	avg, n, err := cache.AverageRealTimePrice(model.PhaseTrading, 14)
	if err != nil {
		t.Fatalf("AverageRealTimePrice: %v", err)
	}
	if avg != 60.0 {
		t.Fatalf("avg = %v, want 60.0 (mean of 55 and 65)", avg)
	}
	if n != 2 {
		t.Fatalf("points = %d, want 2", n)
	}

	if _, _, err := cache.AverageRealTimePrice(model.PhaseTrading, 2); !IsDataUnavailable(err) {
		t.Fatalf("empty hour: err = %v, want DataUnavailableError", err)
	}
}

func TestTimeSeriesAsOfRevealsByTimeOfDay(t *testing.T) {
	cache := NewMarketCache(newTestProvider(), "PJM", biddingDay, deliveryDay)
	if _, err := cache.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	// asOf is on a completely different calendar day: only its time of day
	// matters for the reveal cutoff.
	asOf := time.Date(2030, 6, 1, 14, 10, 0, 0, time.UTC)
	ts, err := cache.TimeSeriesAsOf(model.PhaseTrading, asOf)
	if err != nil {
		t.Fatalf("TimeSeriesAsOf: %v", err)
	}

	if len(ts.DayAhead) != 2 {
		t.Fatalf("day-ahead series has %d points, want all 2 (known in advance)", len(ts.DayAhead))
	}
	// RT points at 14:05 revealed, 14:35 and 15:00 still hidden.
	if len(ts.RealTime) != 1 {
		t.Fatalf("real-time series has %d points at 14:10, want 1", len(ts.RealTime))
	}
	if ts.RealTime[0].Price != 55.0 {
		t.Fatalf("revealed RT price = %v, want 55.0", ts.RealTime[0].Price)
	}

	// End of day reveals everything.
	ts, err = cache.TimeSeriesAsOf(model.PhaseTrading, time.Date(2030, 6, 1, 23, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TimeSeriesAsOf: %v", err)
	}
	if len(ts.RealTime) != 3 {
		t.Fatalf("real-time series has %d points at 23:59, want 3", len(ts.RealTime))
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	provider := newTestProvider()
	cache := NewMarketCache(provider, "PJM", biddingDay, deliveryDay)

	if _, err := cache.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	cache.Invalidate()

	result, err := cache.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("EnsureLoaded after Invalidate: %v", err)
	}
	if result.Status != LoadInitialized {
		t.Fatalf("status = %q, want %q after invalidation", result.Status, LoadInitialized)
	}
	if provider.daCalls != 4 {
		t.Fatalf("DA fetches = %d, want 4 (two dates, twice)", provider.daCalls)
	}
}
