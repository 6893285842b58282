//go:build !linux

package input

import "errors"

var errNotSupported = errors.New("input: gpio not supported on this platform (requires Linux)")

// CdevSource is not available on non-Linux platforms.
type CdevSource struct{}

// NewCdevSource returns an error on non-Linux platforms.
func NewCdevSource(chipName string, pin int, activeLow bool) (*CdevSource, error) {
	return nil, errNotSupported
}

// Level is not implemented on non-Linux platforms.
func (s *CdevSource) Level() (bool, error) {
	return false, errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (s *CdevSource) Close() error {
	return nil
}

// RpioSource is not available on non-Linux platforms.
type RpioSource struct{}

// NewRpioSource returns an error on non-Linux platforms.
func NewRpioSource(pin int, activeLow bool) (*RpioSource, error) {
	return nil, errNotSupported
}

// Level is not implemented on non-Linux platforms.
func (s *RpioSource) Level() (bool, error) {
	return false, errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (s *RpioSource) Close() error {
	return nil
}
