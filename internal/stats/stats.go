// Package stats counts fired and rate-limited key events. The firing
// path stays silent by default; these counters are the optional
// diagnostic view, fed through the dispatcher's observer hooks.
package stats

import (
	"log"
	"sync"
	"time"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

const autosaveInterval = 30 * time.Second

type DailyStats struct {
	Date       string         `json:"date"`
	Fires      map[string]int `json:"fires"`
	Drops      map[string]int `json:"drops"`
	Actions    map[string]int `json:"actions"`
	TotalFires int            `json:"total_fires"`
	TotalDrops int            `json:"total_drops"`
}

func newDailyStats(date string) *DailyStats {
	return &DailyStats{
		Date:    date,
		Fires:   make(map[string]int),
		Drops:   make(map[string]int),
		Actions: make(map[string]int),
	}
}

// add merges other into d. Both sides keep their date.
func (d *DailyStats) add(other *DailyStats) {
	for key, n := range other.Fires {
		d.Fires[key] += n
	}
	for key, n := range other.Drops {
		d.Drops[key] += n
	}
	for kind, n := range other.Actions {
		d.Actions[kind] += n
	}
	d.TotalFires += other.TotalFires
	d.TotalDrops += other.TotalDrops
}

type TotalStats struct {
	TotalFires int            `json:"total_fires"`
	TotalDrops int            `json:"total_drops"`
	PerKey     map[string]int `json:"per_key"`
	PerAction  map[string]int `json:"per_action"`
	Days       int            `json:"days"`
}

// Manager accumulates counts in memory and persists them to daily files
// on a timer and on Flush. Recording is a map increment under one
// mutex, cheap enough for the firing path.
type Manager struct {
	mu      sync.Mutex
	storage *Storage
	pending *DailyStats
	dirty   bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewManager(baseDir string) (*Manager, error) {
	storage, err := NewStorage(baseDir)
	if err != nil {
		return nil, err
	}

	return &Manager{
		storage: storage,
		pending: newDailyStats(time.Now().Format("2006-01-02")),
		done:    make(chan struct{}),
	}, nil
}

// RecordFire counts one allowed fire for k and its action type.
func (m *Manager) RecordFire(k keymap.Key, act action.Action) {
	if !k.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	m.pending.Fires[k.Index()]++
	m.pending.Actions[string(act.Type)]++
	m.pending.TotalFires++
	m.dirty = true
}

// RecordDrop counts one rate-limited attempt for k.
func (m *Manager) RecordDrop(k keymap.Key) {
	if !k.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	m.pending.Drops[k.Index()]++
	m.pending.TotalDrops++
	m.dirty = true
}

// rollover flushes the pending day when the date has changed. Caller
// holds the mutex.
func (m *Manager) rollover() {
	today := time.Now().Format("2006-01-02")
	if m.pending.Date == today {
		return
	}
	if err := m.flushLocked(); err != nil {
		log.Printf("[STATS] Failed to flush day %s: %v", m.pending.Date, err)
	}
	m.pending = newDailyStats(today)
	m.dirty = false
}

// Start begins periodic autosaving.
func (m *Manager) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(autosaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				if err := m.Flush(); err != nil {
					log.Printf("[STATS] Autosave failed: %v", err)
				}
			}
		}
	}()
}

// Flush merges the pending counts into the day's file.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked()
}

func (m *Manager) flushLocked() error {
	if !m.dirty {
		return nil
	}

	stored, err := m.storage.GetDailyStats(m.pending.Date)
	if err != nil {
		return err
	}
	stored.add(m.pending)
	if err := m.storage.saveDailyStats(stored); err != nil {
		return err
	}

	m.pending = newDailyStats(m.pending.Date)
	m.dirty = false
	return nil
}

// Stop ends autosaving and flushes what is left.
func (m *Manager) Stop() error {
	close(m.done)
	m.wg.Wait()
	return m.Flush()
}

// Totals aggregates all persisted days plus the pending counts.
func (m *Manager) Totals() (*TotalStats, error) {
	if err := m.Flush(); err != nil {
		return nil, err
	}
	return m.storage.GetTotalStats()
}

// RecentDays returns the last n days, oldest first.
func (m *Manager) RecentDays(n int) ([]*DailyStats, error) {
	if err := m.Flush(); err != nil {
		return nil, err
	}
	return m.storage.GetRecentDays(n)
}

// Clear wipes all persisted counters and the pending day.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = newDailyStats(time.Now().Format("2006-01-02"))
	m.dirty = false
	return m.storage.ClearAllStats()
}
