package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/config"
	"github.com/fnrow/fnrow/internal/feed"
	"github.com/fnrow/fnrow/internal/keymap"
	"github.com/fnrow/fnrow/internal/monitor"
	"github.com/fnrow/fnrow/internal/notify"
	"github.com/fnrow/fnrow/internal/profile"
	"github.com/fnrow/fnrow/internal/simulate"
	"github.com/fnrow/fnrow/internal/stats"
	"github.com/fnrow/fnrow/internal/terminal"
)

type Daemon struct {
	store        *profile.Store
	dispatcher   *simulate.Dispatcher
	keyMonitor   *monitor.Monitor
	feedServer   *feed.Server
	statsManager *stats.Manager
	statusView   *terminal.StatusView
}

func NewDaemon() *Daemon {
	return &Daemon{}
}

func (d *Daemon) Initialize() error {
	// Load the key profile using the fallback priority system
	profilePath, err := config.GetProfilePath()
	if err != nil {
		return fmt.Errorf("failed to resolve profile path: %v", err)
	}
	d.store = profile.NewStore(profilePath)
	if err := d.store.Load(); err != nil {
		return fmt.Errorf("failed to load profile: %v", err)
	}

	// Initialize stats manager
	if config.StatsEnabled() {
		statsDir, err := config.GetStatsDir()
		if err != nil {
			return fmt.Errorf("failed to get stats directory: %v", err)
		}
		d.statsManager, err = stats.NewManager(statsDir)
		if err != nil {
			return fmt.Errorf("failed to initialize stats manager: %v", err)
		}
	}

	// Initialize dispatcher with the profile as its action source
	d.dispatcher = simulate.NewDispatcher(d.store)
	d.dispatcher.OnFired = d.handleFired
	d.dispatcher.OnRateLimited = d.handleRateLimited

	// Initialize keyboard monitor
	d.keyMonitor = monitor.NewMonitor(d)

	// Initialize feed server unless disabled
	if config.FeedEnabled() {
		d.feedServer = feed.NewServer(d.feedState, d.dispatcher.Fire)
	}

	// Reload bindings when the profile file changes on disk
	d.store.OnReload = d.handleProfileReload
	d.store.OnReloadError = d.handleProfileReloadError
	if err := d.store.Watch(); err != nil {
		log.Printf("[PROFILE] Watch unavailable: %v", err)
	}

	// Initialize terminal control
	d.statusView = terminal.NewStatusView()

	return nil
}

func (d *Daemon) Run() error {
	// A missing input monitoring permission must not kill the daemon.
	// The feed and profile tooling stay usable without the monitor.
	if err := d.keyMonitor.Start(); err != nil {
		if config.NotificationsEnabled() {
			notify.Send("fnrow", "Keyboard monitoring is unavailable. Grant input monitoring permission and restart fnrow.")
		}
		fmt.Printf("⚠️  Keyboard monitoring unavailable: %v\n", err)
	}

	if d.statsManager != nil {
		d.statsManager.Start()
	}

	if d.feedServer != nil {
		if err := d.feedServer.Start(config.GetFeedAddr()); err != nil {
			return fmt.Errorf("failed to start feed server: %v", err)
		}
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	fmt.Println("⌨️  fnrow - Function Row Daemon Started")
	fmt.Printf("📁 Profile: %s (%s)\n", d.store.Current().Name, d.store.Path())
	if d.feedServer != nil {
		fmt.Printf("📡 Feed: %s\n", d.feedServer.URL())
	}
	fmt.Println("🛑 Press Ctrl+C to exit")
	fmt.Println()
	d.statusView.HideCursor()

	// Wait for shutdown signal
	<-c
	fmt.Println("\n🛑 Shutting down...")
	d.Cleanup()
	return nil
}

func (d *Daemon) Cleanup() {
	d.statusView.ShowCursor()

	// Stop the keyboard monitor so no further events dispatch
	if d.keyMonitor != nil {
		if err := d.keyMonitor.Stop(); err != nil {
			log.Printf("[TAP] Stop failed: %v", err)
		}
	}

	// Stop the feed server
	if d.feedServer != nil {
		d.feedServer.Stop()
	}

	// Stop watching the profile file
	if d.store != nil {
		d.store.Close()
	}

	// Flush pending stats
	if d.statsManager != nil {
		if err := d.statsManager.Stop(); err != nil {
			log.Printf("[STATS] Final flush failed: %v", err)
		}
	}

	// Release the event poster
	if d.dispatcher != nil {
		d.dispatcher.Close()
	}
}

// OnKeyDown implements monitor.EventHandler
func (d *Daemon) OnKeyDown(k keymap.Key) {
	d.dispatcher.Fire(k)
	d.broadcastState()
}

// OnKeyUp implements monitor.EventHandler
func (d *Daemon) OnKeyUp(k keymap.Key) {
	d.broadcastState()
}

// handleFired handles a key that passed the rate limiter and dispatched
func (d *Daemon) handleFired(k keymap.Key, act action.Action) {
	if d.statsManager != nil {
		d.statsManager.RecordFire(k, act)
	}
	if d.feedServer != nil {
		d.feedServer.BroadcastFired(k, act)
	}
	d.statusView.Update(d.statusLines(k, act))
}

// handleRateLimited handles a key denied by the rate limiter
func (d *Daemon) handleRateLimited(k keymap.Key) {
	if d.statsManager != nil {
		d.statsManager.RecordDrop(k)
	}
}

// handleProfileReload handles a profile picked up from disk
func (d *Daemon) handleProfileReload(p *profile.Profile) {
	d.broadcastState()
}

// handleProfileReloadError reports an edited profile that failed to load
func (d *Daemon) handleProfileReloadError(err error) {
	if config.NotificationsEnabled() {
		notify.Send("fnrow", fmt.Sprintf("Profile reload failed: %v", err))
	}
}

// broadcastState pushes the monitor state to feed clients when the feed is running
func (d *Daemon) broadcastState() {
	if d.feedServer != nil {
		d.feedServer.BroadcastState()
	}
}

// feedState reports the monitor state for feed snapshots
func (d *Daemon) feedState() (string, []keymap.Key) {
	return d.keyMonitor.State().String(), d.keyMonitor.Pressed()
}

func (d *Daemon) statusLines(k keymap.Key, act action.Action) []string {
	return []string{
		fmt.Sprintf("⚡ Fired %s: %s", k, act.String()),
		fmt.Sprintf("⌨️  Monitor %s, held: %v", d.keyMonitor.State(), d.keyMonitor.Pressed()),
	}
}
