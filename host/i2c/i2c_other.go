//go:build !linux

package i2c

import (
	"errors"
	"fmt"
)

var errUnsupported = errors.New("i2c adapters are only supported on linux")

// Open always fails on this platform
func Open(path string) (*Bus, error) {
	return nil, fmt.Errorf("failed to open i2c adapter %s: %w", path, errUnsupported)
}
