// Package gpio drives the launcher output lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Driver sets GPIO output levels.
type Driver interface {
	// Set drives pin high or low. Pins are BCM line offsets on gpiochip0.
	// A line is claimed as an output, initially low, on first use.
	Set(pin int, high bool) error

	// Close drives all claimed lines low and releases them.
	Close() error
}

// Chip is the GPIO chip the launcher lines live on.
const Chip = "gpiochip0"
