package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/app"
	"github.com/fnrow/fnrow/internal/config"
	"github.com/fnrow/fnrow/internal/keymap"
	"github.com/fnrow/fnrow/internal/profile"
	"github.com/fnrow/fnrow/internal/simulate"
	"github.com/fnrow/fnrow/internal/stats"
	"github.com/fnrow/fnrow/internal/version"
)

func main() {
	isValid, newVersion := version.CheckVersion()
	if !isValid {
		fmt.Printf(`The newest version of fnrow is %v but the installed version on your system is %v.

%v

To get the latest features and likely bugfixes, please install the latest version by running 'go install github.com/fnrow/fnrow/cmd/fnrow@main'.`+"\n", newVersion, version.VERSION, version.UPDATE_MESSAGE)
		return
	}

	var (
		showVersion = flag.Bool("version", false, "Show current version")
		showConfig  = flag.Bool("show-config", false, "Show current configuration location")
		setProfile  = flag.String("set-profile", "", "Set the profile file path (e.g., --set-profile=/path/to/keys.json)")
		listKeys    = flag.Bool("list-keys", false, "List function row keys with their current actions")
		showStats   = flag.Bool("stats", false, "Show usage statistics")
		resetStats  = flag.Bool("reset-stats", false, "Clear all usage statistics")
	)
	flag.Parse()

	if *showVersion {
		handleShowVersion()
		return
	}

	if *showConfig {
		handleShowConfig()
		return
	}

	if *setProfile != "" {
		handleSetProfile(*setProfile)
		return
	}

	if *listKeys {
		handleListKeys()
		return
	}

	if *showStats {
		handleShowStats()
		return
	}

	if *resetStats {
		handleResetStats()
		return
	}

	daemon := app.NewDaemon()
	if err := daemon.Initialize(); err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}

	if err := daemon.Run(); err != nil {
		log.Fatalf("Daemon error: %v", err)
	}
}

func handleShowVersion() {
	fmt.Printf("fnrow (Function Row) %s\n", version.VERSION)
}

func handleShowConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("📝 Config file does not exist yet")
	} else {
		fmt.Printf("📁 Config file location: %s\n", configPath)
		fmt.Println()
		fmt.Println("📋 Config file contents:")

		content, err := os.ReadFile(configPath)
		if err != nil {
			fmt.Printf("❌ Error reading config file: %v\n", err)
			return
		}

		fmt.Println(string(content))
	}
}

func handleSetProfile(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		fmt.Printf("❌ Invalid profile path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		fmt.Println("📝 Profile file does not exist yet; fnrow will start with default bindings")
	} else {
		store := profile.NewStore(absPath)
		if err := store.Load(); err != nil {
			fmt.Printf("❌ Error reading profile: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = &config.Config{}
	}
	cfg.ProfilePath = absPath

	if err := config.SaveConfig(cfg); err != nil {
		fmt.Printf("❌ Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Profile path set to %s\n", absPath)
}

func handleListKeys() {
	profilePath, err := config.GetProfilePath()
	if err != nil {
		fmt.Printf("❌ Error resolving profile path: %v\n", err)
		os.Exit(1)
	}

	store := profile.NewStore(profilePath)
	if err := store.Load(); err != nil {
		fmt.Printf("❌ Error loading profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("⌨️  Key bindings (profile: %s)\n", store.Current().Name)
	for _, k := range keymap.All() {
		act := store.Resolve(k)
		if act.Type == action.TypeSystem {
			fmt.Printf("   %s: system (%s)\n", k, simulate.SystemLabel(k))
		} else {
			fmt.Printf("   %s: %s\n", k, act)
		}
	}
}

func handleShowStats() {
	statsDir, err := config.GetStatsDir()
	if err != nil {
		fmt.Printf("❌ Error getting stats directory: %v\n", err)
		os.Exit(1)
	}

	manager, err := stats.NewManager(statsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing stats: %v\n", err)
		os.Exit(1)
	}

	totals, err := manager.Totals()
	if err != nil {
		fmt.Printf("❌ Error getting totals: %v\n", err)
		os.Exit(1)
	}

	recent, err := manager.RecentDays(7)
	if err != nil {
		fmt.Printf("⚠️  Warning: Failed to get recent days: %v\n", err)
	}

	fmt.Println(stats.FormatTotals(totals))
	if len(recent) > 0 {
		fmt.Println()
		fmt.Println(stats.FormatRecent(recent))
	}
}

func handleResetStats() {
	statsDir, err := config.GetStatsDir()
	if err != nil {
		fmt.Printf("❌ Error getting stats directory: %v\n", err)
		os.Exit(1)
	}

	manager, err := stats.NewManager(statsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing stats: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Clear(); err != nil {
		fmt.Printf("❌ Error clearing stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🗑️  All usage statistics have been cleared")
}
