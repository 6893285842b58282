package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/clock"
	"github.com/sweeney/button-sensor/internal/input"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
)

func repeat(level bool, n int) []bool {
	levels := make([]bool, n)
	for i := range levels {
		levels[i] = level
	}
	return levels
}

func script(parts ...[]bool) []bool {
	var s []bool
	for _, p := range parts {
		s = append(s, p...)
	}
	return s
}

// driveLoop replays n samples from src through btn at 5ms per tick,
// publishing hook events and synthesized clicks to pub the way the
// daemon loop does.
func driveLoop(t *testing.T, btn *button.Button, src *input.FakeSource, pub *mqtt.FakePublisher, n int) {
	t.Helper()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := clock.NewManual(0)
	var wall time.Time
	longGesture := false

	btn.OnPress(func() {
		pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindPress, State: mqtt.StateDown})
	})
	btn.OnRelease(func() {
		pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindRelease, State: mqtt.StateUp})
	})
	btn.OnDoublePress(func() {
		pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindDoublePress, State: mqtt.StateUp, Clicks: 2})
	})
	btn.OnLongPressStart(func() {
		longGesture = true
		pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindLongPressStart, State: mqtt.StateDown})
	})
	btn.OnLongPressEnd(func() {
		pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindLongPressEnd, State: mqtt.StateUp})
	})

	for i := 0; i < n; i++ {
		raw, err := src.Level()
		if err != nil {
			t.Fatalf("sample %d: input read error: %v", i, err)
		}

		wall = start.Add(time.Duration(i) * 5 * time.Millisecond)
		ticks.Advance(5)
		btn.Update(raw, ticks.Ticks())
		btn.Pressed()
		btn.Released()

		if btn.Idle() {
			if c := btn.ClickCount(); c > 0 {
				switch {
				case longGesture:
					longGesture = false
				case c == 1:
					pub.Publish(mqtt.Event{Timestamp: wall, Kind: mqtt.KindClick, State: mqtt.StateUp, Clicks: 1})
				default:
					btn.DoublePressed()
				}
			}
		}
	}
}

// TestIntegrationSingleClick runs a bouncy press through the whole
// pipeline: fake input -> debounce -> gesture machine -> MQTT payloads.
func TestIntegrationSingleClick(t *testing.T) {
	src := input.NewFakeSource(script(
		repeat(false, 4),
		// Contact bounce on the way in, too short to register.
		[]bool{true, true, false, true, false},
		repeat(true, 12),
		repeat(false, 8),
	))
	pub := mqtt.NewFakePublisher()
	btn := button.New(button.Config{
		DoublePress:       true,
		LongPress:         true,
		DoublePressWindow: 40,
	})

	driveLoop(t, btn, src, pub, 40)

	if len(pub.Events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(pub.Events), pub.Events)
	}
	if pub.Events[0].Kind != mqtt.KindPress {
		t.Errorf("event 0: expected PRESS, got %s", pub.Events[0].Kind)
	}
	if pub.Events[1].Kind != mqtt.KindRelease {
		t.Errorf("event 1: expected RELEASE, got %s", pub.Events[1].Kind)
	}
	if pub.Events[2].Kind != mqtt.KindClick {
		t.Errorf("event 2: expected CLICK, got %s", pub.Events[2].Kind)
	}

	for i, payload := range pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Button.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Button.Event == "" {
			t.Errorf("payload %d: missing event", i)
		}
	}
}

func TestIntegrationDoublePress(t *testing.T) {
	src := input.NewFakeSource(script(
		repeat(false, 4),
		repeat(true, 12),
		repeat(false, 8),
		repeat(true, 12),
		repeat(false, 8),
	))
	pub := mqtt.NewFakePublisher()
	btn := button.New(button.Config{
		DoublePress:       true,
		DoublePressWindow: 60,
	})

	driveLoop(t, btn, src, pub, 60)

	if len(pub.Events) != 5 {
		t.Fatalf("expected 5 events, got %d: %v", len(pub.Events), pub.Events)
	}
	want := []mqtt.Kind{
		mqtt.KindPress, mqtt.KindRelease,
		mqtt.KindPress, mqtt.KindRelease,
		mqtt.KindDoublePress,
	}
	for i, k := range want {
		if pub.Events[i].Kind != k {
			t.Errorf("event %d: expected %s, got %s", i, k, pub.Events[i].Kind)
		}
	}

	var parsed mqtt.Payload
	if err := json.Unmarshal(pub.Payloads[4], &parsed); err != nil {
		t.Fatalf("double-press payload invalid: %v", err)
	}
	if parsed.Button.Event != "DOUBLE_PRESS" {
		t.Errorf("expected DOUBLE_PRESS payload, got %s", parsed.Button.Event)
	}
	if parsed.Button.Clicks != 2 {
		t.Errorf("expected clicks=2 in payload, got %d", parsed.Button.Clicks)
	}
}

func TestIntegrationLongPress(t *testing.T) {
	src := input.NewFakeSource(script(
		repeat(false, 4),
		repeat(true, 40),
		repeat(false, 8),
	))
	pub := mqtt.NewFakePublisher()
	btn := button.New(button.Config{
		LongPress:          true,
		LongPressThreshold: 100,
	})

	driveLoop(t, btn, src, pub, 55)

	want := []mqtt.Kind{
		mqtt.KindPress, mqtt.KindLongPressStart,
		mqtt.KindRelease, mqtt.KindLongPressEnd,
	}
	if len(pub.Events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(pub.Events), pub.Events)
	}
	for i, k := range want {
		if pub.Events[i].Kind != k {
			t.Errorf("event %d: expected %s, got %s", i, k, pub.Events[i].Kind)
		}
	}
}

func TestIntegrationBounceRejection(t *testing.T) {
	src := input.NewFakeSource(script(
		repeat(false, 6),
		[]bool{true, true, false, true, true, true, false, false, true, false},
		repeat(false, 4),
	))
	pub := mqtt.NewFakePublisher()
	btn := button.New(button.Config{DoublePress: true, LongPress: true})

	driveLoop(t, btn, src, pub, 20)

	if len(pub.Events) != 0 {
		t.Errorf("expected no events for bounces, got %v", pub.Events)
	}
}

// TestIntegrationStartupThenShutdown walks the system-event lifecycle the
// daemon performs around the run loop.
func TestIntegrationStartupThenShutdown(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{
		Driver: "cdev",
		Pin:    25,
		Broker: "tcp://192.168.1.200:1883",
	})

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := pub.PublishSystem(startup); err != nil {
		t.Fatalf("startup publish error: %v", err)
	}

	press := mqtt.Event{
		Timestamp: start.Add(10 * time.Second),
		Kind:      mqtt.KindPress,
		State:     mqtt.StateDown,
	}
	if err := pub.Publish(press); err != nil {
		t.Fatalf("event publish error: %v", err)
	}

	tracker.Update(status.StateDown, true, false, 0xFFFF, status.Counts{Presses: 1})
	snap = tracker.Snapshot()
	shutdown := mqtt.SystemEvent{
		Timestamp:  start.Add(20 * time.Second),
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	}
	if err := pub.PublishSystem(shutdown); err != nil {
		t.Fatalf("shutdown publish error: %v", err)
	}

	if len(pub.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("first system event should be STARTUP, got %s", pub.SystemEvents[0].Event)
	}
	if !pub.SystemEvents[0].Retained {
		t.Error("startup event should be retained")
	}
	if pub.SystemEvents[1].Event != "SHUTDOWN" || pub.SystemEvents[1].Reason != "SIGTERM" {
		t.Errorf("expected SHUTDOWN/SIGTERM, got %s/%s",
			pub.SystemEvents[1].Event, pub.SystemEvents[1].Reason)
	}
	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 button event, got %d", len(pub.Events))
	}

	var startupStatus status.StatusJSON
	if err := json.Unmarshal(pub.SystemPayloads[0], &startupStatus); err != nil {
		t.Fatalf("startup payload invalid: %v", err)
	}
	if startupStatus.Status.Event != "STARTUP" {
		t.Errorf("startup payload event: expected STARTUP, got %s", startupStatus.Status.Event)
	}
	if startupStatus.Status.State != "UNKNOWN" {
		t.Errorf("startup payload state: expected UNKNOWN, got %s", startupStatus.Status.State)
	}
	if startupStatus.Status.Config.Driver != "cdev" {
		t.Errorf("startup payload driver: expected cdev, got %s", startupStatus.Status.Config.Driver)
	}

	var shutdownStatus status.StatusJSON
	if err := json.Unmarshal(pub.SystemPayloads[1], &shutdownStatus); err != nil {
		t.Fatalf("shutdown payload invalid: %v", err)
	}
	if shutdownStatus.Status.Reason != "SIGTERM" {
		t.Errorf("shutdown payload reason: expected SIGTERM, got %s", shutdownStatus.Status.Reason)
	}
	if shutdownStatus.Status.State != "DOWN" {
		t.Errorf("shutdown payload state: expected DOWN, got %s", shutdownStatus.Status.State)
	}
	if shutdownStatus.Status.Counts.Presses != 1 {
		t.Errorf("shutdown payload presses: expected 1, got %d", shutdownStatus.Status.Counts.Presses)
	}
}
