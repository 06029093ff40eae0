//go:build rp2040

package main

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)
