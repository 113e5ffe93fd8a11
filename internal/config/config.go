package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the tuning surface for the simulation. Everything has a sane
// default so a missing file is not an error path callers need to care about.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Board      BoardConfig      `yaml:"board" json:"board"`
	Balance    Balance          `yaml:"balance" json:"balance"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

type SimulationConfig struct {
	// TickSeconds is the wall-clock interval between engine ticks.
	TickSeconds float64 `yaml:"tick_seconds" json:"tick_seconds"`
	// Speed multiplies simulation time per tick; 0 pauses progress.
	Speed float64 `yaml:"speed" json:"speed"`
	// AutoAssign enables the greedy mission matcher.
	AutoAssign bool `yaml:"auto_assign" json:"auto_assign"`
	// MaxConcurrentExpeditions caps simultaneously active expeditions.
	MaxConcurrentExpeditions int `yaml:"max_concurrent_expeditions" json:"max_concurrent_expeditions"`
	// OfflineThresholdSeconds is the minimum gap before offline catch-up.
	OfflineThresholdSeconds float64 `yaml:"offline_threshold_seconds" json:"offline_threshold_seconds"`
	// Seed fixes the random source when non-zero, for reproducible runs.
	Seed int64 `yaml:"seed" json:"seed"`
}

type BoardConfig struct {
	// RefillTarget is how many Available missions per guild the engine
	// keeps posted.
	RefillTarget int `yaml:"refill_target" json:"refill_target"`
	// CleanupDaysToKeep is the retention window for Expired missions.
	CleanupDaysToKeep int `yaml:"cleanup_days_to_keep" json:"cleanup_days_to_keep"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			TickSeconds:              1,
			Speed:                    1,
			AutoAssign:               true,
			MaxConcurrentExpeditions: 5,
			OfflineThresholdSeconds:  300,
		},
		Board: BoardConfig{
			RefillTarget:      5,
			CleanupDaysToKeep: 30,
		},
		Balance: DefaultBalance(),
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file returns
// the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg.validate()
}

func (c Config) validate() (Config, error) {
	if c.Simulation.Speed < 0 {
		return c, fmt.Errorf("simulation.speed must be >= 0, got %v", c.Simulation.Speed)
	}
	if c.Simulation.TickSeconds <= 0 {
		return c, fmt.Errorf("simulation.tick_seconds must be > 0, got %v", c.Simulation.TickSeconds)
	}
	if c.Board.CleanupDaysToKeep < 1 {
		return c, fmt.Errorf("board.cleanup_days_to_keep must be >= 1, got %d", c.Board.CleanupDaysToKeep)
	}
	if c.Balance.CasualtyChance < 0 || c.Balance.CasualtyChance > 1 {
		return c, fmt.Errorf("balance.casualty_chance must be within [0,1], got %v", c.Balance.CasualtyChance)
	}
	return c, nil
}
