// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is designed to be read by HTTP handlers and (future) LED drivers.
package status

import (
	"sync"
	"time"
)

// State is the debounced button level for display. This is a local copy
// to avoid importing internal/mqtt from status.
type State string

const (
	StateDown State = "DOWN"
	StateUp   State = "UP"
)

// NetworkInfo contains network state as reported by the host helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Driver         string
	Pin            int
	ActiveLow      bool
	PollMs         int64
	DoublePress    bool
	LongPress      bool
	DoubleWindowMs int64
	LongPressMs    int64
	HeartbeatMs    int64
	Broker         string
	HTTPPort       string
}

// Counts tracks the number of each published button event since startup.
type Counts struct {
	Presses       int
	Releases      int
	Clicks        int
	DoublePresses int
	LongPresses   int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	// State is empty while the debounce register is mid-transition.
	State         State
	Settled       bool
	LongActive    bool
	History       uint16
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the button state, debounce register, and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state State, settled, longActive bool, history uint16, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Settled = settled
	t.snap.LongActive = longActive
	t.snap.History = history
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
