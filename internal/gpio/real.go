//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives actual hardware through the Linux GPIO character device.
type RealDriver struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewRealDriver opens the GPIO chip. Lines are requested on first use.
func NewRealDriver() (*RealDriver, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealDriver{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

// Set drives pin high or low, requesting it as an output (initially low) if needed.
func (d *RealDriver) Set(pin int, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	line, ok := d.lines[pin]
	if !ok {
		var err error
		line, err = d.chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			return fmt.Errorf("request pin %d: %w", pin, err)
		}
		d.lines[pin] = line
	}

	v := 0
	if high {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", pin, err)
	}
	return nil
}

// Close drives every claimed line low and releases it.
// Lines are reconfigured to input with pull-down (matching Pi boot defaults)
// so igniters stay inert across a reboot.
func (d *RealDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for pin, line := range d.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("lower pin %d: %w", pin, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	d.lines = make(map[int]*gpiocdev.Line)

	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		d.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
