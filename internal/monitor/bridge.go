package monitor

import "sync"

// The hook callback runs on a delivery context the OS owns, so it can
// never be handed a Go pointer. Each running monitor is registered here
// under a small integer token; the callback resolves the token back to
// its owner, and a released token resolves to "owner gone" instead of
// dangling.
type tokenRegistry struct {
	mu       sync.Mutex
	next     uintptr
	monitors map[uintptr]*Monitor
}

var bridge = &tokenRegistry{monitors: make(map[uintptr]*Monitor)}

// retain registers m and returns its token. Tokens are never reused
// within a process lifetime.
func (r *tokenRegistry) retain(m *Monitor) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.monitors[r.next] = m
	return r.next
}

// resolve returns the monitor behind token, or false once the token has
// been released.
func (r *tokenRegistry) resolve(token uintptr) (*Monitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.monitors[token]
	return m, ok
}

// release drops the registration. Releasing an unknown or already
// released token is a no-op.
func (r *tokenRegistry) release(token uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.monitors, token)
}
