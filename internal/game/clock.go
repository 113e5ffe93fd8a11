package game

import (
	"sync"
	"time"
)

// Clock provides monotonic simulation time in seconds. The engine derives
// per-tick deltas from consecutive readings.
type Clock interface {
	Elapsed() float64
}

// RealClock measures seconds since it was created.
type RealClock struct {
	start time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

func (c *RealClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  float64
}

func NewFakeClock(start float64) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t float64) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d float64) {
	c.mu.Lock()
	c.t += d
	c.mu.Unlock()
}
