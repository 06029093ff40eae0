//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"trafficlight/core"
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime returns the low 32 bits of the 1MHz microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// NewDwellDelay returns a delay that spins on the hardware timer. The
// counter wraps every ~71 minutes; TickDelay handles that.
func NewDwellDelay() core.TickDelay {
	return core.TickDelay{
		Now:  GetHardwareTime,
		Freq: core.TimerFreq,
	}
}
