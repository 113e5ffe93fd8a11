package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays environment variables onto the config. File settings win
// over defaults; environment wins over the file.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("GUILDHALL_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := getEnvFloat("GUILDHALL_SPEED"); ok && v >= 0 {
		cfg.Simulation.Speed = v
	}
	if v, ok := getEnvFloat("GUILDHALL_TICK_SECONDS"); ok && v > 0 {
		cfg.Simulation.TickSeconds = v
	}
	if v, ok := getEnvInt("GUILDHALL_MAX_CONCURRENT"); ok && v > 0 {
		cfg.Simulation.MaxConcurrentExpeditions = v
	}
	if v, ok := getEnvInt("GUILDHALL_SEED"); ok {
		cfg.Simulation.Seed = int64(v)
	}
	return cfg
}

func getEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getEnvFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
