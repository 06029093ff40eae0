// Package sim provides simulated collaborators for a controller: a virtual
// clock, scripted and random sensors, and recording lamps.
package sim

import (
	"sync"
	"time"
)

// Clock is a core.Delay that advances virtual time. With a speed set it
// also sleeps for the wait divided by the speed.
type Clock struct {
	mu    sync.Mutex
	now   time.Duration
	speed float64
	sleep func(time.Duration)
}

// NewClock returns a clock that never sleeps
func NewClock() *Clock {
	return &Clock{}
}

// NewScaledClock returns a clock that sleeps in real time, speed times
// faster than the virtual time it reports
func NewScaledClock(speed float64) *Clock {
	return &Clock{speed: speed, sleep: time.Sleep}
}

// Wait advances the clock by d
func (c *Clock) Wait(d time.Duration) {
	c.mu.Lock()
	c.now += d
	sleep, speed := c.sleep, c.speed
	c.mu.Unlock()

	if sleep != nil && speed > 0 {
		sleep(time.Duration(float64(d) / speed))
	}
}

// Now returns the virtual time elapsed since the clock was created
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
