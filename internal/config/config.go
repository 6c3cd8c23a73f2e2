package config

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	configFileName  = "config.json"
	configDirName   = "fnrow"
	profileFileName = "profile.json"
	statsSubDir     = "stats"

	defaultFeedAddr = "127.0.0.1:8137"
)

// Config represents the application configuration
type Config struct {
	ProfilePath          string `json:"profile_path,omitempty"`
	FeedAddr             string `json:"feed_addr,omitempty"`
	DisableNotifications bool   `json:"disable_notifications,omitempty"`
	DisableStats         bool   `json:"disable_stats,omitempty"`
	DisableFeed          bool   `json:"disable_feed,omitempty"`
}

// getConfigDir returns the user's config directory for fnrow
func getConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, configDirName), nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", err
	}

	return filepath.Join(usr.HomeDir, ".config", configDirName), nil
}

// getConfigPath returns the full path to the config file
func getConfigPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfig loads configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// Write with user-only permissions
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return err
	}

	return nil
}

// GetConfigPath returns the full path to the config file (exported for CLI commands)
func GetConfigPath() (string, error) {
	return getConfigPath()
}

// GetProfilePath retrieves the profile location using fallback priority system
func GetProfilePath() (string, error) {
	// Priority 1: Environment variable (for power users)
	if path := os.Getenv("FNROW_PROFILE"); path != "" {
		return path, nil
	}

	// Priority 2: .env file (current development setup)
	if err := godotenv.Load(); err == nil {
		if path := os.Getenv("FNROW_PROFILE"); path != "" {
			return path, nil
		}
	}

	// Priority 3: User config file
	config, err := LoadConfig()
	if err == nil && config.ProfilePath != "" {
		return config.ProfilePath, nil
	}

	// Priority 4: Default location next to the config file
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, profileFileName), nil
}

// GetFeedAddr retrieves the feed listen address using the same fallback
// priority system, ending on the loopback default
func GetFeedAddr() string {
	if addr := os.Getenv("FNROW_FEED_ADDR"); addr != "" {
		return addr
	}

	if err := godotenv.Load(); err == nil {
		if addr := os.Getenv("FNROW_FEED_ADDR"); addr != "" {
			return addr
		}
	}

	config, err := LoadConfig()
	if err == nil && config.FeedAddr != "" {
		return config.FeedAddr
	}

	return defaultFeedAddr
}

// NotificationsEnabled reports whether desktop notifications should be shown
func NotificationsEnabled() bool {
	config, err := LoadConfig()
	if err != nil {
		return true
	}
	return !config.DisableNotifications
}

// StatsEnabled reports whether usage counters should be recorded
func StatsEnabled() bool {
	config, err := LoadConfig()
	if err != nil {
		return true
	}
	return !config.DisableStats
}

// FeedEnabled reports whether the WebSocket feed server should run
func FeedEnabled() bool {
	config, err := LoadConfig()
	if err != nil {
		return true
	}
	return !config.DisableFeed
}

// GetStatsDir returns the stats directory path
func GetStatsDir() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, statsSubDir), nil
}
