// Package i2c exposes a Linux /dev/i2c-N adapter as a tinygo drivers.I2C
// bus so that the same device drivers run on the host and on boards.
package i2c

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

var ErrClosed = errors.New("i2c bus closed")

// Bus is an I2C adapter. It is safe for concurrent use; transactions are
// serialized.
type Bus struct {
	mu   sync.Mutex
	dev  device
	addr uint16
	path string
}

// device is the platform part of a bus
type device interface {
	setAddress(addr uint16) error
	write(p []byte) error
	read(p []byte) error
	close() error
}

var _ drivers.I2C = (*Bus)(nil)

// noAddress forces the first transaction to select its target
const noAddress = 0xFFFF

func newBus(dev device, path string) *Bus {
	return &Bus{dev: dev, path: path, addr: noAddress}
}

// Tx writes w to the device at addr, then reads len(r) bytes from it
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dev == nil {
		return ErrClosed
	}
	if addr != b.addr {
		if err := b.dev.setAddress(addr); err != nil {
			return err
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if err := b.dev.write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := b.dev.read(r); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the adapter device path
func (b *Bus) Path() string {
	return b.path
}

// Close releases the adapter
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dev == nil {
		return nil
	}
	err := b.dev.close()
	b.dev = nil
	return err
}
