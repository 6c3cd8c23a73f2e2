// Package monitor watches the global keyboard through a listen-only
// platform hook, tracks which of the twelve function keys are held
// down, and reports key transitions to a handler. The hook observes
// the event stream without consuming it, so the physical keys keep
// their normal behavior.
package monitor

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/fnrow/fnrow/internal/keymap"
)

// ErrPermission reports that the OS refused the hook, which on macOS
// means the input monitoring permission has not been granted.
var ErrPermission = errors.New("input monitoring permission not granted")

// State tracks the monitor lifecycle.
type State int

const (
	StateStopped State = iota
	StateInstalling
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// EventHandler receives key transitions on the monitor's own loop
// goroutine, one at a time, in delivery order. Handlers must not block.
type EventHandler interface {
	OnKeyDown(k keymap.Key)
	OnKeyUp(k keymap.Key)
}

type keyEvent struct {
	key   keymap.Key
	etype keymap.EventType
}

// tapBackend is the platform hook. install begins delivery of raw key
// events tagged with the given token; remove disables the hook and
// unregisters it, returning only when delivery has fully stopped.
type tapBackend interface {
	install(token uintptr) error
	remove()
}

// Monitor owns one global keyboard hook and the pressed-key set fed by
// it. Raw events arrive on the hook's delivery context and are handed
// over a bounded channel to a single loop goroutine, which is the only
// writer of the pressed set.
type Monitor struct {
	mu      sync.Mutex
	state   State
	token   uintptr
	done    chan struct{}
	pressed map[keymap.Key]bool

	handler EventHandler
	backend tapBackend
	events  chan keyEvent
	wg      sync.WaitGroup
}

// NewMonitor builds a monitor for the current platform. The handler may
// be nil when only the pressed set is of interest.
func NewMonitor(handler EventHandler) *Monitor {
	return &Monitor{
		handler: handler,
		backend: newBackend(),
		events:  make(chan keyEvent, 64),
		pressed: make(map[keymap.Key]bool),
	}
}

// Start installs the hook and begins tracking. Calling Start on a
// monitor that is already installing or active is a no-op. A hook that
// cannot be created, most commonly because the OS has not granted input
// monitoring permission, is logged as a warning and left uninstalled;
// the returned error lets the caller decide whether to tell the user.
func (m *Monitor) Start() error {
	m.mu.Lock()
	switch m.state {
	case StateInstalling, StateActive:
		m.mu.Unlock()
		return nil
	case StateStopping:
		m.mu.Unlock()
		return fmt.Errorf("failed to start monitor: still stopping")
	}
	m.state = StateInstalling
	m.token = bridge.retain(m)
	m.done = make(chan struct{})
	token := m.token
	done := m.done
	m.mu.Unlock()

	// The install call blocks on platform machinery, so the lock is not
	// held across it.
	if err := m.backend.install(token); err != nil {
		bridge.release(token)
		m.mu.Lock()
		m.state = StateStopped
		m.mu.Unlock()
		log.Printf("[TAP] Failed to install keyboard hook: %v", err)
		return fmt.Errorf("failed to install keyboard hook: %v", err)
	}

	m.wg.Add(1)
	go m.loop(done)

	m.mu.Lock()
	m.state = StateActive
	m.mu.Unlock()
	log.Println("[TAP] Keyboard monitor active")
	return nil
}

// Stop tears the hook down: disable and unregister first, release the
// bridge token only after delivery has stopped, then retire the loop.
// Calling Stop on a stopped monitor is a no-op. The pressed set is
// cleared, since nothing will observe the matching key-ups.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	switch m.state {
	case StateStopped, StateStopping:
		m.mu.Unlock()
		return nil
	case StateInstalling:
		m.mu.Unlock()
		return fmt.Errorf("failed to stop monitor: still installing")
	}
	m.state = StateStopping
	token := m.token
	done := m.done
	m.mu.Unlock()

	m.backend.remove()
	bridge.release(token)

	close(done)
	m.wg.Wait()
	m.drain()

	m.mu.Lock()
	for k := range m.pressed {
		delete(m.pressed, k)
	}
	m.state = StateStopped
	m.mu.Unlock()
	log.Println("[TAP] Keyboard monitor stopped")
	return nil
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pressed returns a sorted snapshot of the keys currently held down.
func (m *Monitor) Pressed() []keymap.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]keymap.Key, 0, len(m.pressed))
	for k := range m.pressed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// handleTapEvent runs on the hook's delivery context. Every early
// return is silent: a released token means the owner is gone, and raw
// codes outside the twelve-key map are inert and never recorded.
func handleTapEvent(token uintptr, etype keymap.EventType, raw int64) {
	m, ok := bridge.resolve(token)
	if !ok {
		return
	}
	k, ok := keymap.FromRaw(raw)
	if !ok {
		return
	}
	select {
	case m.events <- keyEvent{key: k, etype: etype}:
	default:
		// An event flood must not block the delivery context; excess
		// events are dropped.
	}
}

// loop is the single goroutine that owns pressed-set mutation and
// handler delivery. Ordering per key follows delivery order.
func (m *Monitor) loop(done chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-done:
			return
		case ev := <-m.events:
			m.apply(ev)
		}
	}
}

func (m *Monitor) apply(ev keyEvent) {
	m.mu.Lock()
	switch ev.etype {
	case keymap.KeyDown:
		m.pressed[ev.key] = true
	case keymap.KeyUp:
		// Removing an absent key is a no-op, so a spurious up is
		// harmless.
		delete(m.pressed, ev.key)
	}
	m.mu.Unlock()

	if m.handler == nil {
		return
	}
	switch ev.etype {
	case keymap.KeyDown:
		m.handler.OnKeyDown(ev.key)
	case keymap.KeyUp:
		m.handler.OnKeyUp(ev.key)
	}
}

// drain discards events buffered between the loop exiting and the hook
// being fully removed, so a later Start begins clean.
func (m *Monitor) drain() {
	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}
