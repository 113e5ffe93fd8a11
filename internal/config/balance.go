package config

// Balance holds gameplay tuning for expedition resolution.
type Balance struct {
	// CasualtyChance is the per-agent injury roll on a failed expedition.
	CasualtyChance float64 `yaml:"casualty_chance" json:"casualty_chance"`
}

// DefaultBalance returns the built-in balance values.
func DefaultBalance() Balance {
	return Balance{
		CasualtyChance: 0.25,
	}
}
