package agent

import "guildhall/internal/mission"

// ID aliases the mission package's agent handle so the two sides of the
// boundary agree on the type.
type ID = mission.AgentID

// Agent is the slice of the character model this module reads and writes:
// level and experience for eligibility and rewards, stat points, inventory,
// and guild membership.
type Agent struct {
	ID         ID       `json:"id"`
	Name       string   `json:"name"`
	Level      int      `json:"level"`
	Experience int      `json:"experience"`
	StatPoints int      `json:"stat_points"`
	GuildID    string   `json:"guild_id"`
	Inventory  []string `json:"inventory,omitempty"`
	Injuries   int      `json:"injuries"`
}

// xpForLevel is the experience needed to go from level n to n+1.
func xpForLevel(level int) int {
	return level * 100
}

// AddExperience credits experience and applies any level-ups, returning the
// number of levels gained. Each level grants one stat point.
func (a *Agent) AddExperience(amount int) int {
	a.Experience += amount
	gained := 0
	for a.Experience >= xpForLevel(a.Level) {
		a.Experience -= xpForLevel(a.Level)
		a.Level++
		a.StatPoints++
		gained++
	}
	return gained
}

// AddItem puts an item into the agent's inventory.
func (a *Agent) AddItem(item string) {
	a.Inventory = append(a.Inventory, item)
}

// Injure records an expedition injury.
func (a *Agent) Injure() {
	a.Injuries++
}
