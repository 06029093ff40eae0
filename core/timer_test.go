package core

import (
	"testing"
	"time"
)

func TestTickConversions(t *testing.T) {
	if got := TicksFromDuration(2*time.Second, TimerFreq); got != 2000000 {
		t.Errorf("Expected 2000000 ticks, got %d", got)
	}
	if got := TicksFromDuration(50*DwellUnit, 80000000); got != 40000000 {
		t.Errorf("Expected 40000000 ticks at 80MHz, got %d", got)
	}
	if got := DurationFromTicks(1500, TimerFreq); got != 1500*time.Microsecond {
		t.Errorf("Expected 1.5ms, got %s", got)
	}
	if got := DwellUnits(3 * time.Second); got != 300 {
		t.Errorf("Expected 300 units, got %d", got)
	}
	if got := TicksFromDuration(-time.Second, TimerFreq); got != 0 {
		t.Errorf("Expected 0 ticks for a negative duration, got %d", got)
	}
}

func TestTicksFromLongDurations(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		freq uint32
		want uint64
	}{
		{6 * time.Hour, TimerFreq, 21600000000},
		{10 * time.Minute, 80000000, 48000000000},
		{time.Duration(1<<63 - 1), TimerFreq, 9223372036854775},
		{90*time.Second + 1500*time.Microsecond, TimerFreq, 90001500},
	}
	for _, tc := range testCases {
		if got := TicksFromDuration(tc.d, tc.freq); got != tc.want {
			t.Errorf("TicksFromDuration(%s, %d) = %d, expected %d", tc.d, tc.freq, got, tc.want)
		}
	}
}

// fakeCounter advances by step on every read
type fakeCounter struct {
	now   uint32
	step  uint32
	polls int
}

func (c *fakeCounter) read() uint32 {
	v := c.now
	c.now += c.step
	c.polls++
	return v
}

func TestTickDelayWaitsFullDuration(t *testing.T) {
	c := &fakeCounter{step: 100}
	d := TickDelay{Now: c.read, Freq: TimerFreq}

	d.Wait(10 * time.Millisecond)

	// 10001 ticks at 100 per poll, plus the start read
	if c.polls != 102 {
		t.Errorf("Expected 102 polls, got %d", c.polls)
	}
}

func TestTickDelayCountsPartialFirstTick(t *testing.T) {
	c := &fakeCounter{step: 1}
	d := TickDelay{Now: c.read, Freq: TimerFreq}

	d.Wait(10 * time.Microsecond)

	// the start read may be a fraction of a tick from the next edge, so
	// 10 whole ticks need 11 counted ones
	last := c.now - c.step
	if last < 11 {
		t.Errorf("Returned after %d counted ticks, expected at least 11", last)
	}
}

func TestTickDelayHandlesWraparound(t *testing.T) {
	c := &fakeCounter{now: 0xFFFFFF00, step: 0x40}
	idle := 0
	d := TickDelay{Now: c.read, Idle: func() { idle++ }}

	d.Wait(time.Millisecond)

	elapsed := c.now - 0x40 - 0xFFFFFF00
	if elapsed < 1000 {
		t.Errorf("Returned after %d ticks, expected at least 1000", elapsed)
	}
	if idle == 0 {
		t.Error("Expected idle hook to run while spinning")
	}
}

func TestTickDelayZeroDuration(t *testing.T) {
	c := &fakeCounter{step: 1}
	TickDelay{Now: c.read}.Wait(0)
	if c.polls != 0 {
		t.Errorf("Expected no polls for zero wait, got %d", c.polls)
	}
}
