// Package tick provides the scheduler's monotonic tick counter and the
// Lifetime helper used by blacklist rules to expire after a bounded number
// of ticks.
package tick

import "time"

// Tick is a monotonically non-decreasing integer advanced by the built-in
// tick-incrementor system. Delta between ticks is not guaranteed to be 1 —
// user systems may advance it further during PreProcessing.
type Tick uint64

// CurrentTick is the scheduler's built-in bookkeeping resource: the tick
// counter plus the wall-clock delta and timestamp of the last increment.
// The built-in tick-incrementor system (registered against PreProcessing)
// writes to it; the default blacklist forbids Unique access to it during
// Processing and PostProcessing.
type CurrentTick struct {
	Tick Tick
	Dt   time.Duration
	Time time.Time
}

// NewCurrentTick creates a zero CurrentTick stamped with the current time,
// so the first Increment call reports a sensible Dt rather than a delta
// against the zero time.Time.
func NewCurrentTick() *CurrentTick {
	return &CurrentTick{Time: time.Now()}
}

// Increment advances Tick by one and refreshes Dt/Time against now.
func (c *CurrentTick) Increment() {
	now := time.Now()
	c.Dt = now.Sub(c.Time)
	c.Time = now
	c.Tick++
}

// Lifetime ages one unit per tick and expires once age exceeds Expected.
// A nil Expected means the lifetime is perpetual.
type Lifetime struct {
	Start    Tick
	Age      Tick
	Expected *Tick
}

// NewLifetime creates a bounded lifetime starting at start, expiring after
// expected ticks.
func NewLifetime(start Tick, expected Tick) Lifetime {
	return Lifetime{Start: start, Expected: &expected}
}

// NewPerpetual creates a lifetime that never expires.
func NewPerpetual(start Tick) Lifetime {
	return Lifetime{Start: start}
}

// Advance ages the lifetime by one tick and reports whether it is still
// alive (false means it has just expired and should be reaped).
func (l *Lifetime) Advance() bool {
	l.Age++
	return l.Alive()
}

// Alive reports whether the lifetime has not yet expired.
func (l *Lifetime) Alive() bool {
	if l.Expected == nil {
		return true
	}
	return l.Age <= *l.Expected
}
