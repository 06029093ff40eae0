//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"trafficlight/core"
)

// errLightPinsScattered is returned when the light pins are not eight
// consecutive GPIOs in vector bit order
var errLightPinsScattered = errors.New("pio: light pins must be consecutive")

// buildLightsProgram: every word pulled from the TX FIFO is latched onto the
// eight light pins by a single instruction.
func buildLightsProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestPins, 8).Encode(), // 1: out pins, 8
		// .wrap
	}
}

// PIOLightPort writes output vectors through a PIO state machine
type PIOLightPort struct {
	pio  *rp2pio.PIO
	sm   rp2pio.StateMachine
	base machine.Pin
}

// lightBase returns the first light pin when the map's lights are
// consecutive
func lightBase(m core.PinMap) (machine.Pin, error) {
	for i, pin := range m.Lights {
		if pin != m.Lights[0]+core.GPIOPin(i) {
			return 0, errLightPinsScattered
		}
	}
	return machine.Pin(m.Lights[0]), nil
}

// NewPIOLightPort claims a free state machine on PIO0 and hands the light
// pins to it
func NewPIOLightPort(pins core.PinMap) (*PIOLightPort, error) {
	base, err := lightBase(pins)
	if err != nil {
		return nil, err
	}

	pio := rp2pio.PIO0
	sm, err := pio.ClaimStateMachine()
	if err != nil {
		return nil, err
	}

	program := buildLightsProgram()
	offset, err := pio.AddProgram(program, -1)
	if err != nil {
		return nil, err
	}

	for i := 0; i < core.OutputBits; i++ {
		(base + machine.Pin(i)).Configure(machine.PinConfig{Mode: pio.PinMode()})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(base, core.OutputBits)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(base, core.OutputBits, true)
	sm.SetPinsConsecutive(base, core.OutputBits, false)
	sm.SetEnabled(true)

	return &PIOLightPort{pio: pio, sm: sm, base: base}, nil
}

// WriteOutputs queues v; the state machine latches all eight lamps at once
func (p *PIOLightPort) WriteOutputs(v core.OutputVector) error {
	for p.sm.IsTxFIFOFull() {
	}
	p.sm.TxPut(uint32(v))
	return nil
}
