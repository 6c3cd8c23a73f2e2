// Package simulate turns resolved key actions into operating system
// effects: synthetic special-key and virtual-key events, application
// launches, URL opens and shell commands. Every effect is fire and
// forget; the worst outcome of any failure is that the requested
// simulation did not happen.
package simulate

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

// ActionResolver supplies the action bound to a key. Implementations
// must be pure, synchronous lookups; the profile store is the usual one.
type ActionResolver interface {
	Resolve(k keymap.Key) action.Action
}

// EventPoster emits synthetic events into the OS input pipeline. Each
// call posts a complete down/up sequence.
type EventPoster interface {
	PostSpecialKey(code int) error
	PostVirtualKey(codes []int) error
}

// Launcher performs the non-event terminal effects.
type Launcher interface {
	OpenApplication(identifier string) error
	OpenURL(url string) error
	RunShellCommand(command string) error
}

// Dispatcher is the single entry point for firing a key, whether the
// trigger is a physical press or a feed client. Its mutex is the one
// gate both paths go through, which also serializes the rate limit
// table and the poster.
type Dispatcher struct {
	mu       sync.Mutex
	limiter  *rateLimiter
	resolver ActionResolver
	poster   EventPoster
	launcher Launcher
	now      func() time.Time

	// OnFired and OnRateLimited are optional observers for stats and
	// the feed. When unset, allowed fires and dropped attempts stay
	// completely silent.
	OnFired       func(k keymap.Key, act action.Action)
	OnRateLimited func(k keymap.Key)
}

// NewDispatcher builds a dispatcher with the platform poster and
// launcher.
func NewDispatcher(resolver ActionResolver) *Dispatcher {
	return &Dispatcher{
		limiter:  newRateLimiter(fireInterval),
		resolver: resolver,
		poster:   newPoster(),
		launcher: newLauncher(),
		now:      time.Now,
	}
}

// Fire resolves and performs the action for k. Invalid keys and
// rate-limited attempts are dropped silently; effect failures are
// logged and swallowed. Fire never blocks on the effect itself.
func (d *Dispatcher) Fire(k keymap.Key) {
	if !k.Valid() {
		return
	}

	d.mu.Lock()
	if !d.limiter.shouldFire(k, d.now()) {
		limited := d.OnRateLimited
		d.mu.Unlock()
		if limited != nil {
			limited(k)
		}
		return
	}

	act := d.resolver.Resolve(k)
	d.perform(k, act)
	fired := d.OnFired
	d.mu.Unlock()

	if fired != nil {
		fired(k, act)
	}
}

func (d *Dispatcher) perform(k keymap.Key, act action.Action) {
	switch act.Type {
	case action.TypeSystem:
		d.postSystem(k)
	case action.TypeOpenApp:
		if act.Identifier == "" {
			return
		}
		if err := d.launcher.OpenApplication(act.Identifier); err != nil {
			log.Printf("[SIM] Failed to open application %q: %v", act.Identifier, err)
		}
	case action.TypeOpenURL:
		if act.URL == "" {
			return
		}
		if err := d.launcher.OpenURL(act.URL); err != nil {
			log.Printf("[SIM] Failed to open URL %q: %v", act.URL, err)
		}
	case action.TypeShellCommand:
		if act.Command == "" {
			return
		}
		if err := d.launcher.RunShellCommand(act.Command); err != nil {
			log.Printf("[SIM] Failed to spawn shell command: %v", err)
		}
	default:
		// Unknown action types fall through to nothing.
	}
}

func (d *Dispatcher) postSystem(k keymap.Key) {
	enc, ok := encodingFor(k)
	if !ok {
		return
	}
	var err error
	switch enc.Family {
	case FamilySpecial:
		err = d.poster.PostSpecialKey(enc.Codes[0])
	case FamilyVirtual:
		err = d.poster.PostVirtualKey(enc.Codes)
	}
	if err != nil {
		log.Printf("[SIM] Failed to post %s event for %s: %v", enc.Family, k, err)
	}
}

// Close releases poster resources where the platform holds any (the
// linux virtual keyboard). Safe to call once at shutdown.
func (d *Dispatcher) Close() {
	if c, ok := d.poster.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("[SIM] Failed to close poster: %v", err)
		}
	}
}
