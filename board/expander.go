// Package board drives the intersection lamps and sensors through an
// MCP23017 I2C port expander. With the default pin map the eight lamps sit
// on port A and the three sensors on port B pins 0-2, so every light
// combination is a single register write.
package board

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp23017"

	"trafficlight/core"
)

// DefaultAddress is the expander address with A0-A2 tied low
const DefaultAddress = 0x20

var ErrPinRange = errors.New("pin out of expander range")

// Expander implements core.GPIODriver on an MCP23017.
// The chip has no pull-down resistors: inputs configured with pull-down
// rely on external resistors.
type Expander struct {
	dev   *mcp23017.Device
	modes [mcp23017.PinCount]mcp23017.PinMode
}

// NewExpander connects to the expander at addr. All pins start as inputs.
func NewExpander(bus drivers.I2C, addr uint8) (*Expander, error) {
	dev, err := mcp23017.NewI2C(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("mcp23017 at 0x%02x: %w", addr, err)
	}
	return &Expander{dev: dev}, nil
}

func (e *Expander) setMode(pin core.GPIOPin, mode mcp23017.PinMode) error {
	if pin >= mcp23017.PinCount {
		return fmt.Errorf("%w: %d", ErrPinRange, pin)
	}
	e.modes[pin] = mode
	// SetModes treats its last entry as the mode of all remaining pins,
	// so always pass the full list
	return e.dev.SetModes(e.modes[:])
}

// ConfigureOutput configures a pin as a push-pull output
func (e *Expander) ConfigureOutput(pin core.GPIOPin) error {
	return e.setMode(pin, mcp23017.Output)
}

// ConfigureInputPullUp configures a pin as an input with the internal
// 100k pull-up enabled
func (e *Expander) ConfigureInputPullUp(pin core.GPIOPin) error {
	return e.setMode(pin, mcp23017.Input|mcp23017.Pullup)
}

// ConfigureInputPullDown configures a pin as a plain input
func (e *Expander) ConfigureInputPullDown(pin core.GPIOPin) error {
	return e.setMode(pin, mcp23017.Input)
}

// WritePins updates the masked pins of both ports in one bus transaction
func (e *Expander) WritePins(values, mask uint32) error {
	if mask>>mcp23017.PinCount != 0 {
		return fmt.Errorf("%w: mask 0x%x", ErrPinRange, mask)
	}
	return e.dev.SetPins(mcp23017.Pins(values), mcp23017.Pins(mask))
}

// ReadPins reads both ports
func (e *Expander) ReadPins() (uint32, error) {
	pins, err := e.dev.GetPins()
	if err != nil {
		return 0, err
	}
	return uint32(pins), nil
}

// NewPort connects to the expander and returns a configured port that the
// controller can use as both its InputReader and OutputWriter
func NewPort(bus drivers.I2C, addr uint8, pins core.PinMap) (*core.GPIOPort, error) {
	exp, err := NewExpander(bus, addr)
	if err != nil {
		return nil, err
	}
	port, err := core.NewGPIOPort(exp, pins)
	if err != nil {
		return nil, err
	}
	if err := port.Configure(); err != nil {
		return nil, fmt.Errorf("configure expander: %w", err)
	}
	return port, nil
}
