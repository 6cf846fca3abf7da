// Package actor implements the episode-driving worker (C8): it resets,
// loops step, assembles transitions, buffers them, and periodically
// flushes to the replay service.
package actor

import (
	"fmt"
	"time"
)

// Config enumerates every actor knob named in §6 of the specification.
// Field names match the `ACTOR_` + uppercased-field environment variable
// convention; cmd/actor binds these through cobra flags and viper.
type Config struct {
	EngineAddr         string `mapstructure:"engine_addr"`
	ReplayAddr         string `mapstructure:"replay_addr"`
	ActorID            string `mapstructure:"actor_id"`
	EnvID              string `mapstructure:"env_id"`
	MaxEpisodes        int64  `mapstructure:"max_episodes"`
	EpisodeTimeoutSecs uint64 `mapstructure:"episode_timeout_secs"`
	BatchSize          uint32 `mapstructure:"batch_size"`
	FlushIntervalSecs  uint64 `mapstructure:"flush_interval_secs"`
	LogLevel           string `mapstructure:"log_level"`
}

// DefaultConfig returns the configuration defaults named in §6.
func DefaultConfig() Config {
	return Config{
		EngineAddr:         "http://localhost:50051",
		ReplayAddr:         "http://localhost:8080",
		EpisodeTimeoutSecs: 30,
		BatchSize:          64,
		FlushIntervalSecs:  5,
		LogLevel:           "info",
	}
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the fields with a recognized effect per §6. MaxEpisodes
// is intentionally unconstrained: non-positive means unlimited.
func (c Config) Validate() error {
	if c.ActorID == "" {
		return fmt.Errorf("actor_id must not be empty")
	}
	if c.EnvID == "" {
		return fmt.Errorf("env_id must not be empty")
	}
	if c.EpisodeTimeoutSecs == 0 {
		return fmt.Errorf("episode_timeout_secs must be > 0")
	}
	if c.BatchSize == 0 {
		return fmt.Errorf("batch_size must be > 0")
	}
	if c.FlushIntervalSecs == 0 {
		return fmt.Errorf("flush_interval_secs must be > 0")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// EpisodeTimeout is EpisodeTimeoutSecs as a time.Duration.
func (c Config) EpisodeTimeout() time.Duration {
	return time.Duration(c.EpisodeTimeoutSecs) * time.Second
}

// FlushInterval is FlushIntervalSecs as a time.Duration.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSecs) * time.Second
}
