// Package input provides raw button level sources with hardware
// abstraction. The real implementations read Linux GPIO through the
// character device or through /dev/gpiomem; KeySource simulates the button
// from the keyboard; FakeSource plays back scripted levels for tests.
package input

// Source reads the raw electrical level of the button line.
type Source interface {
	// Level returns the current level, true for high. Levels are raw:
	// polarity normalization happens in the button logic.
	Level() (bool, error)

	// Close releases the underlying input.
	Close() error
}

// Defaults for the usual Raspberry Pi wiring (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 25
)
