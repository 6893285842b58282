package input

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nsf/termbox-go"
)

// KeySource simulates the button from the keyboard, for developing without
// hardware. Space or 'b' toggles the level (terminals deliver no key-up
// events, so a toggle stands in for press and release). The source always
// reports active-high levels, so pair it with an active-high button
// configuration.
type KeySource struct {
	down      atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewKeySource takes over the terminal and starts the key listener.
func NewKeySource() (*KeySource, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)

	k := &KeySource{done: make(chan struct{})}
	go k.poll()
	return k, nil
}

func (k *KeySource) poll() {
	for {
		switch ev := termbox.PollEvent(); ev.Type {
		case termbox.EventKey:
			if ev.Key == termbox.KeySpace || ev.Ch == 'b' {
				k.down.Store(!k.down.Load())
			}
		case termbox.EventInterrupt:
			close(k.done)
			return
		}
	}
}

// Level returns the simulated level, true while toggled down.
func (k *KeySource) Level() (bool, error) {
	return k.down.Load(), nil
}

// Close stops the key listener and restores the terminal.
func (k *KeySource) Close() error {
	k.closeOnce.Do(func() {
		termbox.Interrupt()
		<-k.done
		termbox.Close()
	})
	return nil
}
