package input

import "errors"

// FakeSource is a test double that plays back scripted levels.
type FakeSource struct {
	// Levels contains scripted electrical levels; each call to Level
	// consumes the next one. When exhausted, the last level repeats.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Level()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given levels.
func NewFakeSource(levels []bool) *FakeSource {
	return &FakeSource{Levels: levels}
}

// Level returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakeSource) Level() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of the script.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Closed = false
}
