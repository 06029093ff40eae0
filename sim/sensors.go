package sim

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"trafficlight/core"
)

// Sensors is a manually operated sensor bank
type Sensors struct {
	mu    sync.Mutex
	state core.InputVector
}

// Set replaces the sensor state
func (s *Sensors) Set(in core.Input) {
	s.mu.Lock()
	s.state = in.Vector()
	s.mu.Unlock()
}

// Press activates the sensors in in, leaving the others unchanged
func (s *Sensors) Press(in core.Input) {
	s.mu.Lock()
	s.state |= in.Vector()
	s.mu.Unlock()
}

// Release deactivates the sensors in in
func (s *Sensors) Release(in core.Input) {
	s.mu.Lock()
	s.state &^= in.Vector()
	s.mu.Unlock()
}

// State returns the current sensor state
func (s *Sensors) State() core.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Input()
}

// ReadInputs implements core.InputReader
func (s *Sensors) ReadInputs() (core.InputVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// Event sets the sensor state from a point in virtual time on
type Event struct {
	At    time.Duration
	Input core.Input
}

// Script replays timed sensor events against a clock. Before the first
// event no sensor is active.
type Script struct {
	clock  *Clock
	events []Event
}

// NewScript sorts events by time
func NewScript(clock *Clock, events ...Event) *Script {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At < sorted[j].At
	})
	return &Script{clock: clock, events: sorted}
}

// ReadInputs returns the state set by the latest event not after now
func (s *Script) ReadInputs() (core.InputVector, error) {
	now := s.clock.Now()
	var v core.InputVector
	for _, e := range s.events {
		if e.At > now {
			break
		}
		v = e.Input.Vector()
	}
	return v, nil
}

// Rates are per-sample probabilities that each sensor is active
type Rates struct {
	EastWest   float64
	NorthSouth float64
	Pedestrian float64
}

// DefaultRates is moderate traffic with occasional pedestrians
var DefaultRates = Rates{EastWest: 0.4, NorthSouth: 0.4, Pedestrian: 0.15}

// Traffic draws independent random sensor samples. A given seed always
// produces the same sequence.
type Traffic struct {
	mu    sync.Mutex
	rng   *rand.Rand
	rates Rates
}

// NewTraffic creates a generator
func NewTraffic(seed uint64, rates Rates) *Traffic {
	return &Traffic{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		rates: rates,
	}
}

// ReadInputs implements core.InputReader
func (t *Traffic) ReadInputs() (core.InputVector, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	in := core.Input{
		CarEastWest:   t.rng.Float64() < t.rates.EastWest,
		CarNorthSouth: t.rng.Float64() < t.rates.NorthSouth,
		Pedestrian:    t.rng.Float64() < t.rates.Pedestrian,
	}
	return in.Vector(), nil
}
