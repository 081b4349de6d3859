//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: igniter lines need the Linux GPIO character device")

// RealDriver stands in for the gpiocdev driver off Linux so the pin server
// still builds there. It refuses to drive any line; use FakeDriver instead.
type RealDriver struct{}

// NewRealDriver always fails off Linux.
func NewRealDriver() (*RealDriver, error) {
	return nil, errUnsupported
}

// Set refuses to raise or lower pin.
func (d *RealDriver) Set(pin int, high bool) error {
	return errUnsupported
}

// Close has no lines to release.
func (d *RealDriver) Close() error {
	return nil
}
