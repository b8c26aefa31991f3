// Package config defines process configuration and its loader.
package config

import (
	"time"
	_ "time/tzdata" // zone names resolve without a system database
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFile, when set, also writes logs to this path, rotated at LogMaxSizeMB.
	LogFile      string `koanf:"log_file"`
	LogMaxSizeMB int    `koanf:"log_max_size_mb"`

	// Addr is the ops listener address, e.g. ":9090". Empty disables it.
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// LibraryPath points at a template YAML file. Empty uses the built-in library.
	LibraryPath string `koanf:"library_path"`

	FocusK          int     `koanf:"focus_k"`
	MinTestTypes    int     `koanf:"min_test_types"`
	StrongThreshold float64 `koanf:"strong_threshold"`

	// QueueSize bounds the pending-record queue.
	QueueSize       int `koanf:"queue_size"`
	RetryIntervalMS int `koanf:"retry_interval_ms"`

	// TickIntervalMS is the wall-clock interval between playback ticks.
	TickIntervalMS int `koanf:"tick_interval_ms"`
	AnnounceBuffer int `koanf:"announce_buffer"`
	CountdownFrom  int `koanf:"countdown_from"`

	// InstructionTicks is how long each exercise's instructions show, in
	// playback ticks, before its first set starts.
	InstructionTicks int `koanf:"instruction_ticks"`

	RecentSessions int `koanf:"recent_sessions"`
	// Timezone is the IANA zone used for calendar-day streaks.
	Timezone string `koanf:"timezone"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogMaxSizeMB:     50,
		Addr:             ":9090",
		StoreDriver:      "memory",
		SQLitePath:       "pulse.db",
		FocusK:           2,
		MinTestTypes:     2,
		StrongThreshold:  80,
		QueueSize:        256,
		RetryIntervalMS:  30_000,
		TickIntervalMS:   1_000,
		AnnounceBuffer:   32,
		CountdownFrom:    10,
		InstructionTicks: 5,
		RecentSessions:   5,
		Timezone:         "UTC",
	}
}

// RetryInterval returns RetryIntervalMS as a duration.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMS) * time.Millisecond
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// Location resolves Timezone. It falls back to UTC on an unknown zone;
// Load has already rejected those.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
