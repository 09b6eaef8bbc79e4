package sim

import (
	"sync"
	"time"
)

// Clock owns the simulation's virtual "now". By default it tracks the real
// wall clock. SetTime pins the virtual time to a specific hour/minute on the
// current reference date and establishes an anchor; from then on Now()
// advances in real time from that anchor, so time is resumed rather than
// frozen. Re-anchoring happens on every SetTime and on every reference-date
// change (phase transitions).
type Clock struct {
	mu sync.Mutex

	// refDate is midnight of the reference day implied by the current phase.
	refDate time.Time

	anchored      bool
	anchorVirtual time.Time // virtual time at the anchor point
	anchorReal    time.Time // wall time at the anchor point

	// nowFn is the wall clock, injectable for tests.
	nowFn func() time.Time
}

// NewClock creates a clock for the given reference date, tracking the real
// wall clock until SetTime is called.
func NewClock(refDate time.Time) *Clock {
	return &Clock{
		refDate: midnight(refDate),
		nowFn:   time.Now,
	}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.anchored {
		return c.nowFn().UTC()
	}
	return c.anchorVirtual.Add(c.nowFn().Sub(c.anchorReal))
}

// SetTime pins the virtual time to hour:minute on the current reference
// date. Inputs outside the valid ranges are clamped, not rejected.
func (c *Clock) SetTime(hour, minute int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor(clampInt(hour, 0, 23), clampInt(minute, 0, 59))
}

// SetReferenceDate moves the clock onto a new reference day, keeping the
// current virtual hour and minute. Called on phase transitions; the engine
// follows up with SetTime when the transition dictates a specific hour.
func (c *Clock) SetReferenceDate(refDate time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.lockedNow()
	c.refDate = midnight(refDate)
	c.anchor(now.Hour(), now.Minute())
}

// ReferenceDate returns the reference day the clock is currently on.
func (c *Clock) ReferenceDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refDate
}

// anchor must be called with c.mu held.
func (c *Clock) anchor(hour, minute int) {
	c.anchorVirtual = c.refDate.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	c.anchorReal = c.nowFn()
	c.anchored = true
}

// lockedNow is Now without re-locking, for internal use with c.mu held.
func (c *Clock) lockedNow() time.Time {
	if !c.anchored {
		return c.nowFn().UTC()
	}
	return c.anchorVirtual.Add(c.nowFn().Sub(c.anchorReal))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
