//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"trafficlight/core"
)

// usePIOLights hands the light pins to a PIO state machine instead of
// writing them through SIO
const usePIOLights = true

var trace = core.NewTraceRing(core.TraceRingSize)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()

	pins := core.DefaultPinMap()
	port, err := core.NewGPIOPort(NewRPGPIODriver(), pins)
	if err != nil {
		halt("pins: " + err.Error())
	}
	if err := port.Configure(); err != nil {
		halt("configure: " + err.Error())
	}

	var outputs core.OutputWriter = port
	if usePIOLights {
		if lights, err := NewPIOLightPort(pins); err != nil {
			DebugPrintln("pio unavailable, using sio: " + err.Error())
		} else {
			outputs = lights
		}
	}

	c, err := core.NewController(core.DefaultTable(), port, outputs, NewDwellDelay(),
		core.WithID("rp2040"),
		core.WithObserver(trace),
		core.WithDebugWriter(DebugPrintln),
	)
	if err != nil {
		halt("controller: " + err.Error())
	}

	DebugPrintln("trafficlight: running")
	if err := c.Run(context.Background()); err != nil {
		// lamps keep the last vector written
		DebugPrintln("controller stopped: " + err.Error())
		trace.Dump(DebugPrintln)
		for {
			time.Sleep(time.Second)
		}
	}
}

// halt reports a startup failure and resets the board through the
// watchdog
func halt(msg string) {
	DebugPrintln("fatal: " + msg)
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	if err != nil {
		return
	}
	err = machine.Watchdog.Start()
	if err != nil {
		return
	}
	for {
		time.Sleep(1 * time.Millisecond)
	}
}
