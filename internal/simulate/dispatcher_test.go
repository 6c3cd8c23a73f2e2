package simulate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

type recordingPoster struct {
	special []int
	virtual [][]int
	err     error
}

func (p *recordingPoster) PostSpecialKey(code int) error {
	p.special = append(p.special, code)
	return p.err
}

func (p *recordingPoster) PostVirtualKey(codes []int) error {
	p.virtual = append(p.virtual, append([]int(nil), codes...))
	return p.err
}

type recordingLauncher struct {
	apps     []string
	urls     []string
	commands []string
	err      error
}

func (l *recordingLauncher) OpenApplication(id string) error {
	l.apps = append(l.apps, id)
	return l.err
}

func (l *recordingLauncher) OpenURL(url string) error {
	l.urls = append(l.urls, url)
	return l.err
}

func (l *recordingLauncher) RunShellCommand(command string) error {
	l.commands = append(l.commands, command)
	return l.err
}

type mapResolver map[keymap.Key]action.Action

func (m mapResolver) Resolve(k keymap.Key) action.Action {
	if act, ok := m[k]; ok {
		return act
	}
	return action.System()
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestDispatcher(res ActionResolver) (*Dispatcher, *recordingPoster, *recordingLauncher, *fakeClock) {
	poster := &recordingPoster{}
	launcher := &recordingLauncher{}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	d := &Dispatcher{
		limiter:  newRateLimiter(fireInterval),
		resolver: res,
		poster:   poster,
		launcher: launcher,
		now:      clock.now,
	}
	return d, poster, launcher, clock
}

func TestFireInvalidKeySilent(t *testing.T) {
	d, poster, launcher, _ := newTestDispatcher(mapResolver{})

	for _, k := range []keymap.Key{0, -1, 13, 9999} {
		d.Fire(k)
	}

	if len(poster.special)+len(poster.virtual) != 0 {
		t.Error("invalid keys must not post events")
	}
	if len(launcher.apps)+len(launcher.urls)+len(launcher.commands) != 0 {
		t.Error("invalid keys must not launch anything")
	}
	if len(d.limiter.lastFired) != 0 {
		t.Error("invalid keys must not touch the rate limit table")
	}
}

func TestFireSpecialKeyOnce(t *testing.T) {
	d, poster, _, _ := newTestDispatcher(mapResolver{})

	d.Fire(keymap.Key(12))

	want, ok := encodingFor(keymap.Key(12))
	if !ok {
		t.Fatal("key 12 should be encoded on every platform")
	}
	if len(poster.special) != 1 || poster.special[0] != want.Codes[0] {
		t.Errorf("posted special codes %v, want [%d]", poster.special, want.Codes[0])
	}
	if len(poster.virtual) != 0 {
		t.Errorf("posted %d virtual events, want 0", len(poster.virtual))
	}
}

func TestFireMissionControlVirtual(t *testing.T) {
	d, poster, _, _ := newTestDispatcher(mapResolver{})

	d.Fire(keymap.Key(3))

	want, ok := encodingFor(keymap.Key(3))
	if !ok {
		t.Fatal("key 3 should be encoded on every platform")
	}
	if len(poster.virtual) != 1 {
		t.Fatalf("posted %d virtual events, want 1", len(poster.virtual))
	}
	got := poster.virtual[0]
	if len(got) != len(want.Codes) {
		t.Fatalf("virtual codes %v, want %v", got, want.Codes)
	}
	for i := range got {
		if got[i] != want.Codes[i] {
			t.Errorf("virtual codes %v, want %v", got, want.Codes)
			break
		}
	}
	if len(poster.special) != 0 {
		t.Errorf("posted %d special events, want 0", len(poster.special))
	}
}

func TestFireRateLimited(t *testing.T) {
	d, poster, _, clock := newTestDispatcher(mapResolver{})

	d.Fire(keymap.Key(12))
	clock.advance(100 * time.Millisecond)
	d.Fire(keymap.Key(12))

	if len(poster.special) != 1 {
		t.Fatalf("posted %d events within the interval, want 1", len(poster.special))
	}

	clock.advance(50 * time.Millisecond)
	d.Fire(keymap.Key(12))

	if len(poster.special) != 2 {
		t.Errorf("posted %d events after the interval, want 2", len(poster.special))
	}
}

func TestFireRoutesActions(t *testing.T) {
	res := mapResolver{
		5: action.OpenApplication("org.mozilla.firefox"),
		6: action.OpenURL("https://example.com"),
		7: action.RunShellCommand("true"),
	}
	d, poster, launcher, _ := newTestDispatcher(res)

	d.Fire(keymap.Key(5))
	d.Fire(keymap.Key(6))
	d.Fire(keymap.Key(7))

	if len(launcher.apps) != 1 || launcher.apps[0] != "org.mozilla.firefox" {
		t.Errorf("apps = %v, want [org.mozilla.firefox]", launcher.apps)
	}
	if len(launcher.urls) != 1 || launcher.urls[0] != "https://example.com" {
		t.Errorf("urls = %v, want [https://example.com]", launcher.urls)
	}
	if len(launcher.commands) != 1 || launcher.commands[0] != "true" {
		t.Errorf("commands = %v, want [true]", launcher.commands)
	}
	if len(poster.special)+len(poster.virtual) != 0 {
		t.Error("non-system actions must not post events")
	}
}

func TestFireEmptyTargetIgnored(t *testing.T) {
	res := mapResolver{
		5: {Type: action.TypeOpenApp},
		6: {Type: action.TypeOpenURL},
		7: {Type: action.TypeShellCommand},
	}
	d, _, launcher, _ := newTestDispatcher(res)

	d.Fire(keymap.Key(5))
	d.Fire(keymap.Key(6))
	d.Fire(keymap.Key(7))

	if len(launcher.apps)+len(launcher.urls)+len(launcher.commands) != 0 {
		t.Errorf("empty targets launched something: %v %v %v",
			launcher.apps, launcher.urls, launcher.commands)
	}
}

func TestFireUnknownTypeIgnored(t *testing.T) {
	res := mapResolver{5: {Type: "bogus"}}
	d, poster, launcher, _ := newTestDispatcher(res)

	d.Fire(keymap.Key(5))

	if len(poster.special)+len(poster.virtual)+len(launcher.apps)+len(launcher.urls)+len(launcher.commands) != 0 {
		t.Error("unknown action type must do nothing")
	}
}

func TestFireSwallowsLauncherError(t *testing.T) {
	res := mapResolver{5: action.RunShellCommand("explode")}
	d, _, launcher, _ := newTestDispatcher(res)
	launcher.err = errors.New("spawn failed")

	d.Fire(keymap.Key(5))

	if len(launcher.commands) != 1 {
		t.Errorf("launcher called %d times, want 1", len(launcher.commands))
	}
}

func TestFireSwallowsPosterError(t *testing.T) {
	d, poster, _, _ := newTestDispatcher(mapResolver{})
	poster.err = errors.New("post failed")

	d.Fire(keymap.Key(12))

	if len(poster.special) != 1 {
		t.Errorf("poster called %d times, want 1", len(poster.special))
	}
}

func TestFireObservers(t *testing.T) {
	d, _, _, clock := newTestDispatcher(mapResolver{})

	var fired []keymap.Key
	var limited []keymap.Key
	d.OnFired = func(k keymap.Key, act action.Action) {
		if act.Type != action.TypeSystem {
			t.Errorf("OnFired action type %q, want system", act.Type)
		}
		fired = append(fired, k)
	}
	d.OnRateLimited = func(k keymap.Key) {
		limited = append(limited, k)
	}

	d.Fire(keymap.Key(12))
	clock.advance(50 * time.Millisecond)
	d.Fire(keymap.Key(12))

	if len(fired) != 1 || fired[0] != keymap.Key(12) {
		t.Errorf("fired = %v, want [12]", fired)
	}
	if len(limited) != 1 || limited[0] != keymap.Key(12) {
		t.Errorf("limited = %v, want [12]", limited)
	}
}

// Concurrent fires for the same key inside one interval collapse to a
// single posted event.
func TestFireConcurrent(t *testing.T) {
	d, poster, _, _ := newTestDispatcher(mapResolver{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Fire(keymap.Key(12))
		}()
	}
	wg.Wait()

	if len(poster.special) != 1 {
		t.Errorf("posted %d events from 10 concurrent fires, want 1", len(poster.special))
	}
}
