package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all operator-facing settings for the agent.
type Config struct {
	Feed       FeedConfig       `toml:"feed"`
	Navigation NavigationConfig `toml:"navigation"`
	Recording  RecordingConfig  `toml:"recording"`
	Discovery  DiscoveryConfig  `toml:"discovery"`
	Routes     RoutesConfig     `toml:"routes"`
}

// FeedConfig points the agent at the bridge publishing position snapshots.
type FeedConfig struct {
	URL             string  `toml:"url"`
	StaleAfterSecs  float64 `toml:"stale_after"`
	ReconnectPerSec float64 `toml:"reconnect_per_second"`
}

// NavigationConfig tunes playback and stuck handling.
type NavigationConfig struct {
	StoppingDistance   float64 `toml:"stopping_distance"`
	StuckCheckInterval float64 `toml:"stuck_check_interval"`
	ProgressThreshold  float64 `toml:"progress_threshold"`
	MaxUnstuckAttempts int     `toml:"max_unstuck_attempts"`
}

// RecordingConfig tunes the route sampling gates.
type RecordingConfig struct {
	MinSampleInterval float64 `toml:"min_sample_interval"`
	MinSampleDistance float64 `toml:"min_sample_distance"`
}

// DiscoveryConfig tunes the point-of-interest store.
type DiscoveryConfig struct {
	Dir              string  `toml:"dir"`
	DedupRadius      float64 `toml:"dedup_radius"`
	AutosaveInterval float64 `toml:"autosave_interval"`
}

// RoutesConfig locates saved route files.
type RoutesConfig struct {
	Dir string `toml:"dir"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:             "ws://127.0.0.1:9877/agent",
			StaleAfterSecs:  2,
			ReconnectPerSec: 0.5,
		},
		Navigation: NavigationConfig{
			StoppingDistance:   2,
			StuckCheckInterval: 2,
			ProgressThreshold:  1,
			MaxUnstuckAttempts: 5,
		},
		Recording: RecordingConfig{
			MinSampleInterval: 1,
			MinSampleDistance: 5,
		},
		Discovery: DiscoveryConfig{
			Dir:              "discoveries",
			DedupRadius:      5,
			AutosaveInterval: 30,
		},
		Routes: RoutesConfig{Dir: "routes"},
	}
}

// Load reads a TOML config file. A missing file yields the built-in defaults
// without error; a malformed file is surfaced to the caller.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Seconds converts a fractional-seconds setting to a duration.
func Seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}
