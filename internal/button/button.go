// Package button debounces a mechanical push-button sampled by a polling
// loop and recognizes press patterns on top of the debounced stream.
// This package has NO external dependencies (no GPIO, MQTT, OS, or timers).
// Time is injected as a millisecond tick counter on Update.
package button

// Default recognition windows in milliseconds.
const (
	DefaultDoublePressWindow  uint16 = 300
	DefaultLongPressThreshold uint16 = 1000
)

// Hook is a notification callback. Hooks run synchronously on the goroutine
// calling Update or the edge queries, and must not block.
type Hook func()

// Config configures a Button. The zero value is an active-high button with
// pattern recognition disabled and default windows.
type Config struct {
	// ActiveLow inverts raw samples before they enter the filter, for
	// buttons wired to ground behind a pull-up.
	ActiveLow bool
	// DoublePress enables double-press recognition.
	DoublePress bool
	// LongPress enables long-press recognition.
	LongPress bool
	// DoublePressWindow is the widest gap in ms between a release and the
	// second press of a double-press. 0 selects DefaultDoublePressWindow.
	DoublePressWindow uint16
	// LongPressThreshold is the hold time in ms before a press counts as
	// long. 0 selects DefaultLongPressThreshold.
	LongPressThreshold uint16
}

// Button combines the debounce filter, the gesture machine, and the
// notification hooks. It is not safe for concurrent use; drive it from a
// single polling goroutine.
type Button struct {
	filter Filter

	activeLow          bool
	doublePress        bool
	longPress          bool
	doublePressWindow  uint16
	longPressThreshold uint16

	state       gestureState
	pressedAt   uint32
	releasedAt  uint32
	clicks      uint8
	doubleLatch bool
	longActive  bool

	onPress          Hook
	onRelease        Hook
	onDoublePress    Hook
	onLongPressStart Hook
	onLongPressEnd   Hook
}

// New creates a Button from cfg.
func New(cfg Config) *Button {
	b := &Button{
		activeLow:          cfg.ActiveLow,
		doublePress:        cfg.DoublePress,
		longPress:          cfg.LongPress,
		doublePressWindow:  cfg.DoublePressWindow,
		longPressThreshold: cfg.LongPressThreshold,
	}
	if b.doublePressWindow == 0 {
		b.doublePressWindow = DefaultDoublePressWindow
	}
	if b.longPressThreshold == 0 {
		b.longPressThreshold = DefaultLongPressThreshold
	}
	return b
}

// Update feeds one raw sample into the button. raw is the electrical level
// (true = high); now is a monotonic millisecond counter that may wrap.
// The sample is shifted into the debounce filter and, when double-press or
// long-press recognition is enabled, the gesture machine advances.
func (b *Button) Update(raw bool, now uint32) {
	active := raw
	if b.activeLow {
		active = !raw
	}
	b.filter.Sample(active)
	if b.doublePress || b.longPress {
		b.step(now)
	}
}

// Pressed reports a debounced press edge, once per press, and fires the
// press hook on the reporting call. The gesture machine consumes edges
// through this same query, so the hook fires whether the edge is seen by a
// polling caller or absorbed into a gesture.
func (b *Button) Pressed() bool {
	if !b.filter.Pressed() {
		return false
	}
	b.fire(b.onPress)
	return true
}

// Released reports a debounced release edge, once per release, firing the
// release hook the way Pressed fires the press hook.
func (b *Button) Released() bool {
	if !b.filter.Released() {
		return false
	}
	b.fire(b.onRelease)
	return true
}

// IsDown reports whether the debounced level is settled down.
func (b *Button) IsDown() bool {
	return b.filter.IsDown()
}

// IsUp reports whether the debounced level is settled up.
func (b *Button) IsUp() bool {
	return b.filter.IsUp()
}

// History returns the filter's shift register, newest sample in bit 0.
func (b *Button) History() uint16 {
	return b.filter.History()
}

// ClickCount returns the press count of the current or just-finished
// gesture. Reading a nonzero count while the machine is idle consumes it;
// mid-gesture reads return the running count without consuming.
func (b *Button) ClickCount() uint8 {
	n := b.clicks
	if n > 0 && b.state == stateIdle {
		b.clicks = 0
	}
	return n
}

// DoublePressed reports whether a double-press completed since the last
// call. The read consumes the result.
func (b *Button) DoublePressed() bool {
	if b.doubleLatch {
		b.doubleLatch = false
		return true
	}
	return false
}

// LongPressed reports whether a long press is active right now.
func (b *Button) LongPressed() bool {
	return b.longActive
}

// Idle reports whether the gesture machine is at rest. A nonzero
// ClickCount is final once Idle returns true.
func (b *Button) Idle() bool {
	return b.state == stateIdle
}

// EnableDoublePress turns double-press recognition on or off. Disabling
// clears the click count and any unconsumed double-press.
func (b *Button) EnableDoublePress(on bool) {
	b.doublePress = on
	if !on {
		b.clicks = 0
		b.doubleLatch = false
	}
}

// EnableLongPress turns long-press recognition on or off. Disabling clears
// an active long press.
func (b *Button) EnableLongPress(on bool) {
	b.longPress = on
	if !on {
		b.longActive = false
	}
}

// SetDoublePressWindow sets the double-press window in ms. It takes effect
// on the next tick, including for a gesture in flight.
func (b *Button) SetDoublePressWindow(ms uint16) {
	b.doublePressWindow = ms
}

// SetLongPressThreshold sets the long-press threshold in ms. It takes
// effect on the next tick, including for a gesture in flight.
func (b *Button) SetLongPressThreshold(ms uint16) {
	b.longPressThreshold = ms
}

// OnPress sets the press hook. Registration replaces any previous hook;
// nil disables the notification. The same holds for the other On setters.
func (b *Button) OnPress(h Hook) { b.onPress = h }

// OnRelease sets the release hook.
func (b *Button) OnRelease(h Hook) { b.onRelease = h }

// OnDoublePress sets the double-press hook.
func (b *Button) OnDoublePress(h Hook) { b.onDoublePress = h }

// OnLongPressStart sets the hook fired when a press crosses the long-press
// threshold.
func (b *Button) OnLongPressStart(h Hook) { b.onLongPressStart = h }

// OnLongPressEnd sets the hook fired when an observed long press releases.
func (b *Button) OnLongPressEnd(h Hook) { b.onLongPressEnd = h }

func (b *Button) fire(h Hook) {
	if h != nil {
		h()
	}
}
