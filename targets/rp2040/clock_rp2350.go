//go:build rp2350

package main

// RP2350 TIMER0 peripheral memory map
const (
	timerBase     = 0x400B0000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
)
