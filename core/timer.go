package core

import "time"

// DwellUnit is the granularity table dwell values are written in. It
// matches the 10ms SysTick step the intersection was first timed with.
const DwellUnit = 10 * time.Millisecond

// TimerFreq is the default tick frequency for TickDelay (1MHz, the
// RP2040 system timer)
const TimerFreq = 1000000

// DwellUnits converts a duration to whole dwell units, rounding down
func DwellUnits(d time.Duration) int {
	return int(d / DwellUnit)
}

// TicksFromDuration converts a non-negative duration to timer ticks at freq
// Hz, rounding down. Whole seconds and the remainder are scaled separately
// to keep the intermediate product in range.
func TicksFromDuration(d time.Duration, freq uint32) uint64 {
	if d <= 0 {
		return 0
	}
	secs, frac := uint64(d/time.Second), uint64(d%time.Second)
	return secs*uint64(freq) + frac*uint64(freq)/uint64(time.Second)
}

// DurationFromTicks converts timer ticks at freq Hz to a duration
func DurationFromTicks(ticks uint64, freq uint32) time.Duration {
	return time.Duration(ticks * uint64(time.Second) / uint64(freq))
}

// SleepDelay blocks with time.Sleep
type SleepDelay struct{}

// Wait blocks for at least d
func (SleepDelay) Wait(d time.Duration) {
	time.Sleep(d)
}

// TickDelay busy-waits on a free-running 32-bit tick counter, the way a
// SysTick countdown loop does. Now must be safe to call in a tight loop.
// Counter wraparound is handled; a single wait longer than one full counter
// period is split into chunks.
type TickDelay struct {
	Now  func() uint32
	Freq uint32

	// Idle, if set, is called on every poll (e.g. to feed a watchdog)
	Idle func()
}

// Wait spins until at least d has elapsed on the tick counter. The first
// read may land just before a tick edge, so one extra tick is counted.
func (t TickDelay) Wait(d time.Duration) {
	freq := t.Freq
	if freq == 0 {
		freq = TimerFreq
	}
	remaining := TicksFromDuration(d, freq)
	if remaining == 0 {
		return
	}
	remaining++
	const chunk = 1 << 31

	for remaining > 0 {
		step := remaining
		if step > chunk {
			step = chunk
		}
		start := t.Now()
		for uint64(t.Now()-start) < step {
			if t.Idle != nil {
				t.Idle()
			}
		}
		remaining -= step
	}
}
