package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. PULSE_QUEUE_SIZE.
const EnvPrefix = "PULSE_"

// EnvConfigFile names the variable holding an optional YAML config path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if PULSE_CONFIG is set
//  3. env (prefix PULSE_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Flat keys: PULSE_QUEUE_SIZE -> queue_size.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch c.StoreDriver {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return invalid("sqlite_path must not be empty for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn must not be empty for the postgres driver")
		}
	default:
		return invalid("store_driver %q is not one of memory, sqlite, postgres", c.StoreDriver)
	}
	if c.FocusK < 1 {
		return invalid("focus_k must be at least 1")
	}
	if c.MinTestTypes < 1 {
		return invalid("min_test_types must be at least 1")
	}
	if c.StrongThreshold < 0 || c.StrongThreshold > 100 {
		return invalid("strong_threshold must be within [0, 100]")
	}
	for name, v := range map[string]int{
		"queue_size":        c.QueueSize,
		"retry_interval_ms": c.RetryIntervalMS,
		"tick_interval_ms":  c.TickIntervalMS,
		"announce_buffer":   c.AnnounceBuffer,
		"instruction_ticks": c.InstructionTicks,
		"recent_sessions":   c.RecentSessions,
		"log_max_size_mb":   c.LogMaxSizeMB,
	} {
		if v <= 0 {
			return invalid("%s must be positive", name)
		}
	}
	if c.CountdownFrom < 0 {
		return invalid("countdown_from must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return invalid("timezone %q: %v", c.Timezone, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
