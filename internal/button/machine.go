package button

// Gesture recognition states. The machine only advances while double-press
// or long-press recognition is enabled.
type gestureState uint8

const (
	stateIdle gestureState = iota
	statePressed
	stateReleased
	stateLongPress
)

// step advances the gesture machine by one tick. now is the caller's
// millisecond counter; elapsed times are unsigned differences so the
// comparisons survive the counter wrapping.
func (b *Button) step(now uint32) {
	switch b.state {
	case stateIdle:
		if b.Pressed() {
			b.pressedAt = now
			b.clicks = 1
			b.state = statePressed
		}

	case statePressed:
		if b.longPress && !b.longActive && now-b.pressedAt >= uint32(b.longPressThreshold) {
			b.longActive = true
			b.state = stateLongPress
			b.fire(b.onLongPressStart)
		}
		if b.Released() {
			b.releasedAt = now
			switch {
			case b.longActive:
				// Threshold and release landed on the same tick; the long
				// press was over before it was observable, skip the end hook.
				b.resetGesture()
			case b.doublePress:
				b.state = stateReleased
			default:
				b.resetGesture()
			}
		}

	case stateReleased:
		elapsed := now - b.releasedAt
		if b.Pressed() && elapsed < uint32(b.doublePressWindow) {
			b.clicks = 2
			b.pressedAt = now
			b.state = statePressed
		} else if elapsed >= uint32(b.doublePressWindow) {
			if b.clicks == 2 {
				b.doubleLatch = true
				b.fire(b.onDoublePress)
			}
			b.resetGesture()
		}

	case stateLongPress:
		if b.Released() {
			b.longActive = false
			b.fire(b.onLongPressEnd)
			b.resetGesture()
		}
	}
}

// resetGesture returns the machine to idle. The click count and the
// double-press latch are left for their queries to consume.
func (b *Button) resetGesture() {
	b.state = stateIdle
	b.longActive = false
}
