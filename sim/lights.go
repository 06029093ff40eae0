package sim

import (
	"fmt"
	"sync"
	"time"

	"trafficlight/core"
)

// Change is one recorded lamp update
type Change struct {
	At     time.Duration
	Output core.OutputVector
	Lights core.Lights
}

// Lights records every vector written and rejects combinations that do
// not decode to one aspect per signal head
type Lights struct {
	mu      sync.Mutex
	clock   *Clock
	history []Change
}

// NewLights records against clock; a nil clock records zero times
func NewLights(clock *Clock) *Lights {
	return &Lights{clock: clock}
}

// WriteOutputs implements core.OutputWriter
func (l *Lights) WriteOutputs(v core.OutputVector) error {
	lights, err := core.Unpack(v)
	if err != nil {
		return fmt.Errorf("lamp conflict: %w", err)
	}
	var at time.Duration
	if l.clock != nil {
		at = l.clock.Now()
	}

	l.mu.Lock()
	l.history = append(l.history, Change{At: at, Output: v, Lights: lights})
	l.mu.Unlock()
	return nil
}

// Current returns the last lights written
func (l *Lights) Current() (core.Lights, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.history) == 0 {
		return core.Lights{}, false
	}
	return l.history[len(l.history)-1].Lights, true
}

// History returns a copy of every recorded write
func (l *Lights) History() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Change(nil), l.history...)
}

// Reset clears the history
func (l *Lights) Reset() {
	l.mu.Lock()
	l.history = nil
	l.mu.Unlock()
}
