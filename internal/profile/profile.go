// Package profile owns the key-to-action bindings. A profile is a JSON
// document shared with external editors; the store keeps the current one
// in memory, resolves keys for the dispatcher, and reloads the file when
// it changes on disk.
package profile

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

// debounce window between a file event and the reload, so editors that
// write in several steps trigger one reload, not five.
const reloadDelay = 200 * time.Millisecond

// Profile binds function keys to actions. Keys without a binding fall
// back to the System default. The JSON shape is shared with external
// editors and must round-trip exactly.
type Profile struct {
	ID   string                   `json:"id"`
	Name string                   `json:"name"`
	Keys map[string]action.Action `json:"keys"`
}

// NewProfile creates an empty named profile with a fresh identity.
func NewProfile(name string) *Profile {
	return &Profile{
		ID:   uuid.NewString(),
		Name: name,
		Keys: make(map[string]action.Action),
	}
}

// Default returns the profile used when no file exists: every key on its
// System behavior.
func Default() *Profile {
	return &Profile{
		Name: "Default",
		Keys: make(map[string]action.Action),
	}
}

func (p *Profile) clone() *Profile {
	keys := make(map[string]action.Action, len(p.Keys))
	for idx, act := range p.Keys {
		keys[idx] = act
	}
	return &Profile{ID: p.ID, Name: p.Name, Keys: keys}
}

// sanitize drops bindings for unknown keys and malformed actions so a
// hand-edited file cannot poison the resolver.
func sanitize(p *Profile) {
	for idx, act := range p.Keys {
		if _, ok := keymap.Parse(idx); !ok {
			log.Printf("[PROFILE] Dropping binding for unknown key %q", idx)
			delete(p.Keys, idx)
			continue
		}
		if err := act.Validate(); err != nil {
			log.Printf("[PROFILE] Dropping invalid binding for key %s: %v", idx, err)
			delete(p.Keys, idx)
		}
	}
	if p.Keys == nil {
		p.Keys = make(map[string]action.Action)
	}
}

// Store holds the active profile. Profiles handed out by Current are
// treated as immutable; Bind works on a copy and swaps.
type Store struct {
	mu      sync.Mutex
	path    string
	current *Profile
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	// OnReload, when set before Watch, runs after each successful
	// reload with the new profile. OnReloadError runs when a changed
	// file fails to load; the previous profile stays active.
	OnReload      func(*Profile)
	OnReloadError func(error)
}

// NewStore creates a store for the profile file at path, starting on the
// default profile until Load is called.
func NewStore(path string) *Store {
	return &Store{path: path, current: Default()}
}

// Path returns the profile file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the profile file. A missing file is not an error; the store
// keeps the default profile.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Printf("[PROFILE] No profile at %s, using defaults", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile: %v", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse profile: %v", err)
	}
	sanitize(&p)

	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
	return nil
}

// Save persists p and makes it the active profile. A profile saved for
// the first time gets its identity here.
func (s *Store) Save(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %v", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %v", err)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

// Current returns the active profile. Callers must not mutate it.
func (s *Store) Current() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Resolve returns the action bound to k, defaulting to System for
// unbound and out-of-range keys. It is the dispatcher's resolver.
func (s *Store) Resolve(k keymap.Key) action.Action {
	if !k.Valid() {
		return action.System()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if act, ok := s.current.Keys[k.Index()]; ok {
		return act
	}
	return action.System()
}

// Bind sets the action for one key and persists the result.
func (s *Store) Bind(k keymap.Key, act action.Action) error {
	if !k.Valid() {
		return fmt.Errorf("invalid key %d", int(k))
	}
	if err := act.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	next := s.current.clone()
	s.mu.Unlock()
	next.Keys[k.Index()] = act
	return s.Save(next)
}

// Watch starts reloading the profile whenever its file changes. The
// parent directory is watched so editors that replace the file via
// rename are caught too.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create profile watcher: %v", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch profile directory: %v", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watchLoop()
	log.Printf("[PROFILE] Watching %s", s.path)
	return nil
}

func (s *Store) watchLoop() {
	defer s.wg.Done()
	var pending <-chan time.Time
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDelay)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[PROFILE] Watcher error: %v", err)
		case <-pending:
			pending = nil
			s.reload()
		}
	}
}

func (s *Store) reload() {
	if err := s.Load(); err != nil {
		log.Printf("[PROFILE] Reload failed, keeping previous profile: %v", err)
		if s.OnReloadError != nil {
			s.OnReloadError(err)
		}
		return
	}
	log.Printf("[PROFILE] Reloaded %s", s.path)
	if s.OnReload != nil {
		s.OnReload(s.Current())
	}
}

// Close stops the watcher. Safe to call when Watch was never started.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}
