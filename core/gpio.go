package core

import "fmt"

// PinMap wires the output vector bits and the three sensors to GPIO pins
type PinMap struct {
	// Lights[i] is the pin driven by output vector bit i
	Lights [OutputBits]GPIOPin

	// Sensors[i] is the pin sampled for input vector bit i
	Sensors [InputBits]GPIOPin

	// SensorPullUp selects pull-up wiring: the sensor is active low
	SensorPullUp bool
}

// DefaultPinMap is the reference board wiring: the six traffic lamps on 0-5,
// don't walk on 6, walk on 7, sensors (ew car, ns car, pedestrian) on 8-10.
func DefaultPinMap() PinMap {
	return PinMap{
		Lights:  [OutputBits]GPIOPin{0, 1, 2, 3, 4, 5, 6, 7},
		Sensors: [InputBits]GPIOPin{8, 9, 10},
	}
}

// Validate checks that no pin is used twice and all pins fit a 32-pin bank
func (m PinMap) Validate() error {
	used := make(map[GPIOPin]string)
	check := func(pin GPIOPin, role string) error {
		if pin > 31 {
			return NewConfigurationError("pins", NoState, fmt.Sprintf("%s pin %d out of range", role, pin))
		}
		if prev, ok := used[pin]; ok {
			return NewConfigurationError("pins", NoState, fmt.Sprintf("pin %d used by %s and %s", pin, prev, role))
		}
		used[pin] = role
		return nil
	}
	for i, pin := range m.Lights {
		if err := check(pin, fmt.Sprintf("light bit %d", i)); err != nil {
			return err
		}
	}
	for i, pin := range m.Sensors {
		if err := check(pin, fmt.Sprintf("sensor bit %d", i)); err != nil {
			return err
		}
	}
	return nil
}

// GPIOPort maps output and input vectors onto a GPIO bank.
// It implements both OutputWriter and InputReader.
type GPIOPort struct {
	driver GPIODriver
	pins   PinMap

	lightMask  uint32
	sensorMask uint32
}

// NewGPIOPort creates a port over driver. Call Configure before use.
func NewGPIOPort(driver GPIODriver, pins PinMap) (*GPIOPort, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}
	p := &GPIOPort{driver: driver, pins: pins}
	for _, pin := range pins.Lights {
		p.lightMask |= 1 << pin
	}
	for _, pin := range pins.Sensors {
		p.sensorMask |= 1 << pin
	}
	return p, nil
}

// Configure sets pin directions and pulls. It is the startup step and
// must complete before the controller runs.
func (p *GPIOPort) Configure() error {
	for _, pin := range p.pins.Lights {
		if err := p.driver.ConfigureOutput(pin); err != nil {
			return fmt.Errorf("configure light pin %d: %w", pin, err)
		}
	}
	for _, pin := range p.pins.Sensors {
		var err error
		if p.pins.SensorPullUp {
			err = p.driver.ConfigureInputPullUp(pin)
		} else {
			err = p.driver.ConfigureInputPullDown(pin)
		}
		if err != nil {
			return fmt.Errorf("configure sensor pin %d: %w", pin, err)
		}
	}
	return nil
}

// PinValues returns the bank value that displays v on the light pins
func (p *GPIOPort) PinValues(v OutputVector) uint32 {
	var values uint32
	for bit, pin := range p.pins.Lights {
		if v&(1<<bit) != 0 {
			values |= 1 << pin
		}
	}
	return values
}

// WriteOutputs sets all light pins in one bank write
func (p *GPIOPort) WriteOutputs(v OutputVector) error {
	return p.driver.WritePins(p.PinValues(v), p.lightMask)
}

// ReadInputs samples the sensor pins
func (p *GPIOPort) ReadInputs() (InputVector, error) {
	bank, err := p.driver.ReadPins()
	if err != nil {
		return 0, err
	}
	if p.pins.SensorPullUp {
		bank = ^bank
	}
	var v InputVector
	for bit, pin := range p.pins.Sensors {
		if bank&(1<<pin) != 0 {
			v |= 1 << bit
		}
	}
	return v, nil
}

// LightMask returns the bank mask covering the light pins
func (p *GPIOPort) LightMask() uint32 {
	return p.lightMask
}

// SensorMask returns the bank mask covering the sensor pins
func (p *GPIOPort) SensorMask() uint32 {
	return p.sensorMask
}
