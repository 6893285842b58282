package button

// Shift-register patterns. One sample is shifted into the register per
// tick, newest sample in bit 0. A press needs the six newest samples all
// active; a release needs the six oldest samples active and the six newest
// inactive, so the register shows "was held, now quiet".
const (
	maskPress      uint16 = 0x003F
	patternPress   uint16 = 0x003F
	maskRelease    uint16 = 0xFC3F
	patternRelease uint16 = 0xFC00
	patternDown    uint16 = 0xFFFF
	patternUp      uint16 = 0x0000
)

// Filter debounces a stream of raw samples through a 16-bit shift register.
// It has no clock and does no I/O. Each edge query reports true once per
// pattern-match run; Sample re-arms the latch as soon as the pattern breaks,
// whether or not the query is polled in between. The zero value reports a
// released (up) button.
type Filter struct {
	history         uint16
	pressReported   bool
	releaseReported bool
}

// Sample shifts one sample into the history register, true meaning the
// button reads active, and returns the new register value. A latch whose
// pattern no longer matches is cleared here, so the next genuine edge is
// reported even if the queries were not polled during the gap.
func (f *Filter) Sample(active bool) uint16 {
	f.history <<= 1
	if active {
		f.history |= 1
	}
	if f.history&maskPress != patternPress {
		f.pressReported = false
	}
	if f.history&maskRelease != patternRelease {
		f.releaseReported = false
	}
	return f.history
}

// Pressed reports whether a debounced press edge occurred. The edge is
// reported once per match run: repeats are suppressed while the press
// pattern keeps matching, and Sample re-arms the latch when it breaks.
func (f *Filter) Pressed() bool {
	if f.history&maskPress == patternPress && !f.pressReported {
		f.pressReported = true
		return true
	}
	return false
}

// Released reports whether a debounced release edge occurred, latched once
// per match run like Pressed.
func (f *Filter) Released() bool {
	if f.history&maskRelease == patternRelease && !f.releaseReported {
		f.releaseReported = true
		return true
	}
	return false
}

// IsDown reports whether the register holds a full window of active samples.
func (f *Filter) IsDown() bool {
	return f.history == patternDown
}

// IsUp reports whether the register holds a full window of inactive samples.
func (f *Filter) IsUp() bool {
	return f.history == patternUp
}

// History returns the current register value, newest sample in bit 0.
func (f *Filter) History() uint16 {
	return f.history
}
