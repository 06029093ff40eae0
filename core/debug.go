package core

import (
	"fmt"
	"sync"
	"time"
)

// DebugWriter is a function type for writing debug messages.
// Boards point it at a UART or USB console, hosts at their logger.
type DebugWriter func(string)

// Transition records one completed driver-loop cycle
type Transition struct {
	Cycle  uint64
	From   StateID
	To     StateID
	Input  InputVector
	Output OutputVector
	Dwell  time.Duration
}

func (t Transition) String() string {
	return fmt.Sprintf("cycle=%d %d->%d in=%s out=%08b dwell=%s",
		t.Cycle, t.From, t.To, t.Input, uint8(t.Output), t.Dwell)
}

// Observer is notified after every driver-loop cycle, on the loop's
// goroutine. It must not block.
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Transition)

func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}

// TraceRingSize is the default number of transitions a TraceRing keeps
const TraceRingSize = 32

// TraceRing keeps the last transitions for post-mortem analysis.
// Recording never blocks on a reader for longer than a copy.
type TraceRing struct {
	mu    sync.Mutex
	ring  []Transition
	head  int
	count uint64
}

// NewTraceRing creates a ring holding size transitions
func NewTraceRing(size int) *TraceRing {
	if size <= 0 {
		size = TraceRingSize
	}
	return &TraceRing{ring: make([]Transition, size)}
}

// OnTransition records t
func (r *TraceRing) OnTransition(t Transition) {
	r.mu.Lock()
	r.ring[r.head] = t
	r.head = (r.head + 1) % len(r.ring)
	r.count++
	r.mu.Unlock()
}

// Recorded returns how many transitions were ever recorded
func (r *TraceRing) Recorded() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Snapshot returns the retained transitions, oldest first
func (r *TraceRing) Snapshot() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.ring)
	if r.count < uint64(n) {
		n = int(r.count)
	}
	out := make([]Transition, 0, n)
	start := (r.head - n + len(r.ring)) % len(r.ring)
	for i := 0; i < n; i++ {
		out = append(out, r.ring[(start+i)%len(r.ring)])
	}
	return out
}

// Dump writes the retained transitions through w
func (r *TraceRing) Dump(w DebugWriter) {
	if w == nil {
		return
	}
	for _, t := range r.Snapshot() {
		w(t.String())
	}
}
