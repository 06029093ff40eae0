//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"machine"

	"trafficlight/core"
)

// RPGPIODriver implements core.GPIODriver on bank 0 through the SIO block.
// WritePins flips every changed light in one GPIO_OUT_XOR store.
type RPGPIODriver struct {
	configured uint32
}

// NewRPGPIODriver creates a driver with no pins configured
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

func (d *RPGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	if pin > 29 {
		return core.NewConfigurationError("gpio", core.NoState, "pin out of range 0-29")
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	d.configured |= 1 << pin
	return nil
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPulldown)
}

// WritePins drives the masked pins to values
func (d *RPGPIODriver) WritePins(values, mask uint32) error {
	mask &= d.configured
	current := rp.SIO.GPIO_OUT.Get()
	rp.SIO.GPIO_OUT_XOR.Set((current ^ values) & mask)
	return nil
}

// ReadPins returns the input level of every bank 0 pin
func (d *RPGPIODriver) ReadPins() (uint32, error) {
	return rp.SIO.GPIO_IN.Get(), nil
}
