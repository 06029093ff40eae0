package core

// GPIOPin identifies a pin on one GPIO bank (0-31)
type GPIOPin uint32

// GPIODriver is the abstract GPIO bank that GPIOPort drives.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// WritePins drives every pin set in mask to the matching bit of values.
	// It must reach the hardware as one register or bus write.
	WritePins(values, mask uint32) error

	// ReadPins returns the level of every pin in the bank
	ReadPins() (uint32, error)
}
