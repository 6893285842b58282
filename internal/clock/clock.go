// Package clock supplies the millisecond tick counter the button logic
// times gestures with. Ticks are uint32 and wrap about every 49.7 days;
// consumers compare them with unsigned subtraction, which stays correct
// across the wrap.
package clock

import "github.com/jonboulle/clockwork"

// Source yields monotonic millisecond ticks.
type Source interface {
	Ticks() uint32
}

// Wall derives ticks from a wall clock. Injecting a clockwork.FakeClock
// makes the derived ticks deterministic in tests.
type Wall struct {
	clock clockwork.Clock
}

// NewWall creates a tick source backed by c.
func NewWall(c clockwork.Clock) *Wall {
	return &Wall{clock: c}
}

// Ticks truncates the clock's UnixMilli to uint32.
func (w *Wall) Ticks() uint32 {
	return uint32(w.clock.Now().UnixMilli())
}

// Manual is a hand-advanced tick counter for tests.
type Manual struct {
	now uint32
}

// NewManual creates a manual tick source starting at start.
func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

// Ticks returns the current counter value.
func (m *Manual) Ticks() uint32 {
	return m.now
}

// Advance moves the counter forward by d ticks, wrapping naturally.
func (m *Manual) Advance(d uint32) {
	m.now += d
}

// Set jumps the counter to now.
func (m *Manual) Set(now uint32) {
	m.now = now
}
