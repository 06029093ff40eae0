package config

import (
	"fmt"

	"trafficlight/core"
)

// PinConfig assigns GPIO (or expander) pins. Lights are listed in output
// vector bit order: ns_green, ns_yellow, ns_red, ew_green, ew_yellow,
// ew_red, dont_walk, walk. Sensors are listed as ew, ns, ped.
// Empty lists keep the default wiring.
type PinConfig struct {
	Lights       []uint32 `yaml:"lights,omitempty"`
	Sensors      []uint32 `yaml:"sensors,omitempty"`
	SensorPullUp bool     `yaml:"sensor_pull_up,omitempty"`
}

// PinMap converts the configuration and validates it
func (c *PinConfig) PinMap() (core.PinMap, error) {
	m := core.DefaultPinMap()
	if c == nil {
		return m, nil
	}

	if len(c.Lights) > 0 {
		if len(c.Lights) != core.OutputBits {
			return m, core.NewConfigurationError("pins", core.NoState,
				fmt.Sprintf("need %d light pins, got %d", core.OutputBits, len(c.Lights)))
		}
		for i, pin := range c.Lights {
			m.Lights[i] = core.GPIOPin(pin)
		}
	}
	if len(c.Sensors) > 0 {
		if len(c.Sensors) != core.InputBits {
			return m, core.NewConfigurationError("pins", core.NoState,
				fmt.Sprintf("need %d sensor pins, got %d", core.InputBits, len(c.Sensors)))
		}
		for i, pin := range c.Sensors {
			m.Sensors[i] = core.GPIOPin(pin)
		}
	}
	m.SensorPullUp = c.SensorPullUp

	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}
