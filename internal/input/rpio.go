//go:build linux

package input

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioSource reads the button pin through /dev/gpiomem memory mapping. It
// is an alternative to CdevSource for systems where the GPIO character
// device is unavailable.
type RpioSource struct {
	pin rpio.Pin
}

// NewRpioSource maps the GPIO registers and configures pin as an input
// with the same pull policy as NewCdevSource.
func NewRpioSource(pin int, activeLow bool) (*RpioSource, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}

	p := rpio.Pin(pin)
	p.Input()
	if activeLow {
		p.PullUp()
	} else {
		p.PullDown()
	}

	return &RpioSource{pin: p}, nil
}

// Level returns the electrical level of the pin, true for high.
func (s *RpioSource) Level() (bool, error) {
	return s.pin.Read() == rpio.High, nil
}

// Close unmaps the GPIO registers.
func (s *RpioSource) Close() error {
	return rpio.Close()
}
