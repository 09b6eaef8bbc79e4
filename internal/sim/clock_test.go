package sim

import (
	"testing"
	"time"
)

func TestClockDefaultTracksWallClock(t *testing.T) {
	wall := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	c := NewClock(time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC))
	c.nowFn = func() time.Time { return wall }

	if got := c.Now(); !got.Equal(wall) {
		t.Fatalf("Now() = %v, want wall clock %v", got, wall)
	}
}

func TestClockSetTimeResumesFromAnchor(t *testing.T) {
	wall := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	refDate := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	c := NewClock(refDate)
	c.nowFn = func() time.Time { return wall }

	c.SetTime(14, 45)
	want := time.Date(2025, 1, 14, 14, 45, 0, 0, time.UTC)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() right after SetTime = %v, want %v", got, want)
	}

	// Virtual time advances as real time passes: resumed, not frozen.
	wall = wall.Add(10 * time.Minute)
	want = want.Add(10 * time.Minute)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() after 10m = %v, want %v", got, want)
	}
}

func TestClockSetTimeClampsInputs(t *testing.T) {
	wall := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	refDate := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		hour, minute int
		wantH, wantM int
	}{
		{"hour too high", 30, 10, 23, 10},
		{"hour negative", -3, 10, 0, 10},
		{"minute too high", 10, 75, 10, 59},
		{"minute negative", 10, -1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(refDate)
			c.nowFn = func() time.Time { return wall }
			c.SetTime(tt.hour, tt.minute)
			now := c.Now()
			if now.Hour() != tt.wantH || now.Minute() != tt.wantM {
				t.Fatalf("Now() = %02d:%02d, want %02d:%02d", now.Hour(), now.Minute(), tt.wantH, tt.wantM)
			}
		})
	}
}

func TestClockSetReferenceDateKeepsTimeOfDay(t *testing.T) {
	wall := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	biddingDate := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	deliveryDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	c := NewClock(biddingDate)
	c.nowFn = func() time.Time { return wall }
	c.SetTime(13, 20)

	c.SetReferenceDate(deliveryDate)
	want := time.Date(2025, 1, 15, 13, 20, 0, 0, time.UTC)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() after date change = %v, want %v", got, want)
	}
	if got := c.ReferenceDate(); !got.Equal(deliveryDate) {
		t.Fatalf("ReferenceDate() = %v, want %v", got, deliveryDate)
	}
}
