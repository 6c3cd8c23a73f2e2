package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fnrow/fnrow/internal/keymap"
)

type fakeBackend struct {
	mu         sync.Mutex
	token      uintptr
	installs   int
	removes    int
	installErr error
}

func (b *fakeBackend) install(token uintptr) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
	b.installs++
	return b.installErr
}

func (b *fakeBackend) remove() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removes++
}

func (b *fakeBackend) currentToken() uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *fakeBackend) counts() (installs, removes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installs, b.removes
}

type countingHandler struct {
	mu    sync.Mutex
	downs []keymap.Key
	ups   []keymap.Key
}

func (h *countingHandler) OnKeyDown(k keymap.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.downs = append(h.downs, k)
}

func (h *countingHandler) OnKeyUp(k keymap.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ups = append(h.ups, k)
}

func (h *countingHandler) downCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.downs)
}

func newTestMonitor(handler EventHandler) (*Monitor, *fakeBackend) {
	backend := &fakeBackend{}
	m := &Monitor{
		handler: handler,
		backend: backend,
		events:  make(chan keyEvent, 64),
		pressed: make(map[keymap.Key]bool),
	}
	return m, backend
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func rawFor(t *testing.T, k keymap.Key) int64 {
	t.Helper()
	raw, ok := keymap.ToRaw(k)
	if !ok {
		t.Fatalf("no raw code for key %d", k)
	}
	return raw
}

func pressedContains(m *Monitor, k keymap.Key) bool {
	for _, p := range m.Pressed() {
		if p == k {
			return true
		}
	}
	return false
}

func TestStartStopLifecycle(t *testing.T) {
	m, backend := newTestMonitor(nil)

	if m.State() != StateStopped {
		t.Fatalf("initial state %v, want stopped", m.State())
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != StateActive {
		t.Errorf("state after Start %v, want active", m.State())
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if m.State() != StateStopped {
		t.Errorf("state after Stop %v, want stopped", m.State())
	}

	installs, removes := backend.counts()
	if installs != 1 || removes != 1 {
		t.Errorf("backend saw %d installs and %d removes, want 1 and 1", installs, removes)
	}
}

func TestStartIdempotent(t *testing.T) {
	m, backend := newTestMonitor(nil)
	defer m.Stop()

	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Errorf("second Start = %v, want nil", err)
	}
	if installs, _ := backend.counts(); installs != 1 {
		t.Errorf("backend saw %d installs, want 1", installs)
	}
}

func TestStopWithoutStart(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Stop(); err != nil {
		t.Errorf("Stop on stopped monitor = %v, want nil", err)
	}
	if _, removes := backend.counts(); removes != 0 {
		t.Errorf("backend saw %d removes, want 0", removes)
	}
}

func TestInstallFailureReturnsToStopped(t *testing.T) {
	m, backend := newTestMonitor(nil)
	backend.installErr = errors.New("hook refused")

	if err := m.Start(); err == nil {
		t.Fatal("Start should report the install failure")
	}
	if m.State() != StateStopped {
		t.Errorf("state after failed Start %v, want stopped", m.State())
	}
	if _, ok := bridge.resolve(backend.currentToken()); ok {
		t.Error("token must be released when install fails")
	}
}

func TestPressedSetFollowsDownUp(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	raw := rawFor(t, keymap.Key(1))
	handleTapEvent(backend.currentToken(), keymap.KeyDown, raw)
	waitFor(t, func() bool { return pressedContains(m, keymap.Key(1)) })

	handleTapEvent(backend.currentToken(), keymap.KeyUp, raw)
	waitFor(t, func() bool { return !pressedContains(m, keymap.Key(1)) })
}

func TestRepeatedDownInsertsOnce(t *testing.T) {
	handler := &countingHandler{}
	m, backend := newTestMonitor(handler)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	raw := rawFor(t, keymap.Key(12))
	for i := 0; i < 3; i++ {
		handleTapEvent(backend.currentToken(), keymap.KeyDown, raw)
	}
	waitFor(t, func() bool { return handler.downCount() == 3 })

	if got := m.Pressed(); len(got) != 1 || got[0] != keymap.Key(12) {
		t.Errorf("pressed = %v, want [12]", got)
	}
}

func TestSpuriousUpIsNoOp(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	handleTapEvent(backend.currentToken(), keymap.KeyUp, rawFor(t, keymap.Key(5)))
	// A mapped event after it proves the loop has caught up.
	handleTapEvent(backend.currentToken(), keymap.KeyDown, rawFor(t, keymap.Key(6)))
	waitFor(t, func() bool { return pressedContains(m, keymap.Key(6)) })

	if pressedContains(m, keymap.Key(5)) {
		t.Error("spurious up must not insert the key")
	}
}

func TestUnmappedRawCodeInert(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	handleTapEvent(backend.currentToken(), keymap.KeyDown, 9999)
	handleTapEvent(backend.currentToken(), keymap.KeyDown, rawFor(t, keymap.Key(2)))
	waitFor(t, func() bool { return pressedContains(m, keymap.Key(2)) })

	if got := m.Pressed(); len(got) != 1 {
		t.Errorf("pressed = %v, want only key 2", got)
	}
}

func TestStopClearsPressed(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	handleTapEvent(backend.currentToken(), keymap.KeyDown, rawFor(t, keymap.Key(3)))
	waitFor(t, func() bool { return pressedContains(m, keymap.Key(3)) })

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := m.Pressed(); len(got) != 0 {
		t.Errorf("pressed after Stop = %v, want empty", got)
	}
}

// A callback still in flight when Stop finishes resolves a dead token
// and must leave no trace.
func TestStaleCallbackAfterStop(t *testing.T) {
	handler := &countingHandler{}
	m, backend := newTestMonitor(handler)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	stale := backend.currentToken()
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	handleTapEvent(stale, keymap.KeyDown, rawFor(t, keymap.Key(1)))
	time.Sleep(20 * time.Millisecond)

	if got := m.Pressed(); len(got) != 0 {
		t.Errorf("stale callback mutated pressed set: %v", got)
	}
	if handler.downCount() != 0 {
		t.Error("stale callback reached the handler")
	}
	if m.State() != StateStopped {
		t.Errorf("state = %v, want stopped", m.State())
	}
}

func TestRestartUsesFreshToken(t *testing.T) {
	m, backend := newTestMonitor(nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	first := backend.currentToken()
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer m.Stop()
	second := backend.currentToken()

	if first == second {
		t.Error("restart reused the released token")
	}

	handleTapEvent(second, keymap.KeyDown, rawFor(t, keymap.Key(7)))
	waitFor(t, func() bool { return pressedContains(m, keymap.Key(7)) })
}
