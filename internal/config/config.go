// Package config loads the runtime tunables a floor is started with
// (target UPS/FPS, tick cap, arrival radius, collision cooldown, broker
// retry count/interval, adjustment hold, ...) via github.com/spf13/viper:
// a fresh viper instance per load rather than the package-level global,
// an optional YAML file and I4SIM_ environment variables layered over
// code-registered defaults. Command-line flags are not bound.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/i4sim/engine/internal/cycle"
	"github.com/i4sim/engine/internal/environment"
)

// Config is the full runtime configuration enumeration.
type Config struct {
	TargetUPS      float64       `mapstructure:"target_ups"`
	TargetFPS      float64       `mapstructure:"target_fps"`
	TickCap        uint64        `mapstructure:"tick_cap"`
	AdjustmentHold time.Duration `mapstructure:"adjustment_hold"`

	ArrivalRadius     float64 `mapstructure:"arrival_radius"`
	NeighborRadius    float64 `mapstructure:"neighbor_radius"`
	BrakingRadius     float64 `mapstructure:"braking_radius"`
	CollisionCooldown uint    `mapstructure:"collision_cooldown"`

	BrokerRetryCount    int           `mapstructure:"broker_retry_count"`
	BrokerRetryInterval time.Duration `mapstructure:"broker_retry_interval"`
}

// defaults registers the code defaults every key falls back to when unset
// by env var or config file — a zero-config run is valid.
func defaults() Config {
	return Config{
		TargetUPS:           30,
		TargetFPS:           60,
		TickCap:             0,
		AdjustmentHold:      2500 * time.Millisecond,
		ArrivalRadius:       2,
		NeighborRadius:      40,
		BrakingRadius:       30,
		CollisionCooldown:   30,
		BrokerRetryCount:    10,
		BrokerRetryInterval: 500 * time.Millisecond,
	}
}

// Load builds a Config from, in increasing precedence: code defaults, an
// optional YAML file at path (skipped entirely if path is empty; a missing
// file at a non-empty path is an error), and I4SIM_-prefixed environment
// variables.
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetEnvPrefix("I4SIM")
	vp.AutomaticEnv()

	def := defaults()
	vp.SetDefault("target_ups", def.TargetUPS)
	vp.SetDefault("target_fps", def.TargetFPS)
	vp.SetDefault("tick_cap", def.TickCap)
	vp.SetDefault("adjustment_hold", def.AdjustmentHold)
	vp.SetDefault("arrival_radius", def.ArrivalRadius)
	vp.SetDefault("neighbor_radius", def.NeighborRadius)
	vp.SetDefault("braking_radius", def.BrakingRadius)
	vp.SetDefault("collision_cooldown", def.CollisionCooldown)
	vp.SetDefault("broker_retry_count", def.BrokerRetryCount)
	vp.SetDefault("broker_retry_interval", def.BrokerRetryInterval)

	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Cycle projects the loaded config onto the tick scheduler's Config.
func (c Config) Cycle() cycle.Config {
	return cycle.Config{
		TargetUPS:      c.TargetUPS,
		TargetFPS:      c.TargetFPS,
		TickCap:        c.TickCap,
		AdjustmentHold: c.AdjustmentHold,
	}
}

// Environment projects the loaded config onto the registry's Config,
// keeping environment.DefaultConfig's SegmentsPerCorner since no runtime
// knob overrides it.
func (c Config) Environment() environment.Config {
	cfg := environment.DefaultConfig()
	cfg.ArrivalRadius = c.ArrivalRadius
	cfg.NeighborRadius = c.NeighborRadius
	cfg.BrakingRadius = c.BrakingRadius
	return cfg
}
