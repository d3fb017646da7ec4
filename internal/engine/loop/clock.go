// Package loop drives per-frame updates: controls, rendering and components.
package loop

import "time"

// Clock measures elapsed time between ticks on a monotonic source.
type Clock struct {
	now  func() time.Time
	last time.Time
}

// NewClock creates a clock started now.
func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource creates a clock reading time from now. time.Now
// readings carry a monotonic component, so wall clock jumps do not affect deltas.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now, last: now()}
}

// Delta returns the seconds since the previous call, or since construction
// for the first call.
func (c *Clock) Delta() float64 {
	t := c.now()
	d := t.Sub(c.last).Seconds()
	c.last = t
	return d
}
