//go:build linux

package i2c

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ioctl request selecting the target address (linux/i2c-dev.h)
const i2cSlave = 0x0703

type linuxDevice struct {
	f *os.File
}

// Open opens an adapter such as /dev/i2c-1
func Open(path string) (*Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c adapter %s: %w", path, err)
	}
	return newBus(&linuxDevice{f: f}, path), nil
}

func (d *linuxDevice) setAddress(addr uint16) error {
	if err := unix.IoctlSetInt(int(d.f.Fd()), i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("select i2c address 0x%02x: %w", addr, err)
	}
	return nil
}

func (d *linuxDevice) write(p []byte) error {
	n, err := d.f.Write(p)
	if err != nil {
		return fmt.Errorf("i2c write: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("i2c write: %w", io.ErrShortWrite)
	}
	return nil
}

func (d *linuxDevice) read(p []byte) error {
	if _, err := io.ReadFull(d.f, p); err != nil {
		return fmt.Errorf("i2c read: %w", err)
	}
	return nil
}

func (d *linuxDevice) close() error {
	return d.f.Close()
}
