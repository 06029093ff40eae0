// Package serial opens the UART link to a remote lamp/sensor panel
package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface. Implementations are the native
// tarm/serial port and in-memory pipes in tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC panels ignore it
	Baud int

	// ReadTimeout bounds each Read (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the panel defaults for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
