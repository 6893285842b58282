// Command button-sensor polls a push-button input and publishes press
// gestures to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/clock"
	"github.com/sweeney/button-sensor/internal/input"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

// options holds the parsed command-line flags.
type options struct {
	driver       string
	chip         string
	pin          int
	activeLow    bool
	poll         time.Duration
	double       bool
	long         bool
	doubleWindow time.Duration
	longPress    time.Duration
	broker       string
	heartbeat    time.Duration
	httpAddr     string
	printState   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.driver, "driver", "cdev", "Input driver: cdev, rpio, or keys")
	flag.StringVar(&opts.chip, "chip", input.DefaultChip, "GPIO character device (cdev driver)")
	flag.IntVar(&opts.pin, "pin", input.DefaultPin, "BCM pin number for the button")
	flag.BoolVar(&opts.activeLow, "active-low", false, "Pressed button pulls the line low")
	flag.DurationVar(&opts.poll, "poll", time.Millisecond, "Input polling interval")
	flag.BoolVar(&opts.double, "double", false, "Enable double-press detection")
	flag.BoolVar(&opts.long, "long", false, "Enable long-press detection")
	flag.DurationVar(&opts.doubleWindow, "double-window", 300*time.Millisecond, "Double-press window")
	flag.DurationVar(&opts.longPress, "long-press", time.Second, "Long-press hold threshold")
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&opts.printState, "print-state", false, "Print current state and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newSource(opts options) (input.Source, error) {
	switch opts.driver {
	case "cdev":
		return input.NewCdevSource(opts.chip, opts.pin, opts.activeLow)
	case "rpio":
		return input.NewRpioSource(opts.pin, opts.activeLow)
	case "keys":
		return input.NewKeySource()
	default:
		return nil, fmt.Errorf("unknown driver %q (want cdev, rpio, or keys)", opts.driver)
	}
}

func run(opts options) error {
	if opts.driver == "keys" && opts.activeLow {
		log.Printf("keys driver is always active-high, ignoring -active-low")
		opts.activeLow = false
	}
	if ms := opts.doubleWindow.Milliseconds(); ms < 0 || ms > 65535 {
		return fmt.Errorf("double-window out of range: %v (max 65535ms)", opts.doubleWindow)
	}
	if ms := opts.longPress.Milliseconds(); ms < 0 || ms > 65535 {
		return fmt.Errorf("long-press out of range: %v (max 65535ms)", opts.longPress)
	}

	// Initialize the input source
	src, err := newSource(opts)
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer src.Close()

	// Print state mode
	if opts.printState {
		raw, err := src.Level()
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		pressed := raw
		if opts.activeLow {
			pressed = !pressed
		}
		fmt.Printf("Button: %s\n", stateString(pressed))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(opts.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Driver:         opts.driver,
		Pin:            opts.pin,
		ActiveLow:      opts.activeLow,
		PollMs:         opts.poll.Milliseconds(),
		DoublePress:    opts.double,
		LongPress:      opts.long,
		DoubleWindowMs: opts.doubleWindow.Milliseconds(),
		LongPressMs:    opts.longPress.Milliseconds(),
		HeartbeatMs:    opts.heartbeat.Milliseconds(),
		Broker:         opts.broker,
		HTTPPort:       opts.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	log.Printf("started: driver=%s pin=%d poll=%v double=%v long=%v broker=%s heartbeat=%v",
		opts.driver, opts.pin, opts.poll, opts.double, opts.long, opts.broker, opts.heartbeat)

	cw := clockwork.NewRealClock()
	ticker := cw.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cfg := button.Config{
		ActiveLow:          opts.activeLow,
		DoublePress:        opts.double,
		LongPress:          opts.long,
		DoublePressWindow:  uint16(opts.doubleWindow.Milliseconds()),
		LongPressThreshold: uint16(opts.longPress.Milliseconds()),
	}

	return runLoop(src, publisher, publisher, tracker, cfg, clock.NewWall(cw), opts.heartbeat, cw.Now, ticker.Chan(), sigCh)
}

func runLoop(src input.Source, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg button.Config, ticks clock.Source, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastHeartbeat := startTime
	btn := button.New(cfg)

	var (
		wallNow     time.Time
		pending     []mqtt.Event
		counts      status.Counts
		longGesture bool
	)

	btn.OnPress(func() {
		counts.Presses++
		pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindPress, State: mqtt.StateDown})
	})
	btn.OnRelease(func() {
		counts.Releases++
		pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindRelease, State: mqtt.StateUp})
	})
	btn.OnDoublePress(func() {
		counts.DoublePresses++
		pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindDoublePress, State: mqtt.StateUp, Clicks: 2})
	})
	btn.OnLongPressStart(func() {
		counts.LongPresses++
		longGesture = true
		pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindLongPressStart, State: mqtt.StateDown})
	})
	btn.OnLongPressEnd(func() {
		pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindLongPressEnd, State: mqtt.StateUp})
	})

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			wallNow = now()
			raw, err := src.Level()
			if err != nil {
				log.Printf("input read error: %v", err)
				continue
			}

			btn.Update(raw, ticks.Ticks())

			// Edges the gesture recognizer did not consume (features
			// disabled, or a release with no gesture in flight) still
			// fire their hooks here. Consumed edges are latched, so
			// nothing fires twice.
			btn.Pressed()
			btn.Released()

			// A finished gesture leaves its click count behind.
			if btn.Idle() {
				if n := btn.ClickCount(); n > 0 {
					switch {
					case longGesture:
						// A hold is not a click.
						longGesture = false
					case n == 1:
						counts.Clicks++
						pending = append(pending, mqtt.Event{Timestamp: wallNow, Kind: mqtt.KindClick, State: mqtt.StateUp, Clicks: 1})
					default:
						// The double-press hook queued the event; just clear the latch.
						btn.DoublePressed()
					}
				}
			}

			for _, event := range pending {
				log.Printf("event: %s (state=%s clicks=%d)", event.Kind, event.State, event.Clicks)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}
			pending = pending[:0]

			// Check for heartbeat
			if heartbeat > 0 && wallNow.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = wallNow
				log.Printf("heartbeat: uptime=%v presses=%d releases=%d clicks=%d doubles=%d longs=%d",
					wallNow.Sub(startTime).Truncate(time.Second),
					counts.Presses, counts.Releases, counts.Clicks, counts.DoublePresses, counts.LongPresses)

				hbEvent := mqtt.SystemEvent{
					Timestamp: wallNow,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					state := buttonState(btn)
					tracker.Update(state, state != "", btn.LongPressed(), btn.History(), counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP/LED consumers
			if tracker != nil {
				state := buttonState(btn)
				tracker.Update(state, state != "", btn.LongPressed(), btn.History(), counts)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// buttonState maps the debounce register onto the display state.
// Mid-transition registers have no settled level and map to empty.
func buttonState(btn *button.Button) status.State {
	switch {
	case btn.IsDown():
		return status.StateDown
	case btn.IsUp():
		return status.StateUp
	default:
		return ""
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return "DOWN"
	}
	return "UP"
}
