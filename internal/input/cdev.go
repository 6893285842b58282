//go:build linux

package input

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevSource reads the button line through the Linux GPIO character device.
type CdevSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewCdevSource requests pin on the named chip as an input. Active-low
// wiring (button to ground) gets an internal pull-up so the line rests
// high; active-high wiring gets a pull-down.
func NewCdevSource(chipName string, pin int, activeLow bool) (*CdevSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	bias := gpiocdev.WithPullDown
	if activeLow {
		bias = gpiocdev.WithPullUp
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, bias)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &CdevSource{chip: chip, line: line}, nil
}

// Level returns the electrical level of the line, true for high.
func (s *CdevSource) Level() (bool, error) {
	v, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v != 0, nil
}

// Close releases the line and the chip. The line is reconfigured to a
// plain input first so the pin is left in its boot state.
func (s *CdevSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
