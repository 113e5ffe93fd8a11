package expedition

import (
	"github.com/google/uuid"

	"guildhall/internal/mission"
)

// ID is an opaque expedition identifier.
type ID string

// NewID mints a fresh expedition ID.
func NewID() ID {
	return ID("exp_" + uuid.NewString())
}

// State tracks an expedition's lifecycle. InProgress moves to exactly one of
// Completed or Failed; there is no reopening.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Grant is a reward bound to its recipient. A nil recipient means the grant
// goes to the guild that owns the expedition's agents.
type Grant struct {
	Reward    mission.Reward  `json:"reward"`
	Recipient *mission.AgentID `json:"recipient,omitempty"`
}

// LogEntry is a narrative line recorded while an expedition runs.
type LogEntry struct {
	Timestamp   float64 `json:"timestamp"`
	Description string  `json:"description"`
}

// Expedition is a scheduler-owned execution record binding a mission snapshot
// to a set of agents. It is created by the scheduler and moved from the
// active map to the completed list exactly once, when its outcome is decided.
type Expedition struct {
	ID             ID                `json:"id"`
	MissionID      mission.ID        `json:"mission_id"`
	MissionName    string            `json:"mission_name"`
	GuildID        mission.GuildID   `json:"guild_id"`
	AssignedAgents []mission.AgentID `json:"assigned_agents"`

	StartTime         float64  `json:"start_time"`
	EstimatedDuration float64  `json:"estimated_duration"`
	ActualDuration    *float64 `json:"actual_duration,omitempty"`

	// Elapsed is internal simulation time accumulated by Update calls,
	// already scaled by the simulation speed.
	Elapsed float64 `json:"elapsed"`

	State      State             `json:"state"`
	Rewards    []Grant           `json:"rewards,omitempty"`
	Casualties []mission.AgentID `json:"casualties,omitempty"`
	Log        []LogEntry        `json:"log,omitempty"`

	SuccessChance    float64 `json:"success_chance"`
	RewardMultiplier float64 `json:"reward_multiplier"`

	// missionRewards snapshots the mission's reward list at creation so the
	// board can garbage-collect the mission without affecting resolution.
	missionRewards []mission.Reward
}

// baseDuration is the estimated time for a solo run at each difficulty.
func baseDuration(d mission.Difficulty) float64 {
	switch d {
	case mission.Trivial:
		return 300
	case mission.Easy:
		return 600
	case mission.Medium:
		return 1200
	case mission.Hard:
		return 2400
	case mission.VeryHard:
		return 3600
	case mission.Extreme:
		return 7200
	}
	return 1200
}

// EstimateDuration derives an expedition's time budget from mission
// difficulty and party size. More agents finish faster, floored at half the
// base duration.
func EstimateDuration(d mission.Difficulty, agents int) float64 {
	modifier := 1.0 - float64(agents-1)*0.1
	if modifier < 0.5 {
		modifier = 0.5
	}
	return baseDuration(d) * modifier
}

// ProgressPercent returns how far along the expedition is, in [0,1].
func (e *Expedition) ProgressPercent() float64 {
	if e.EstimatedDuration <= 0 {
		return 1
	}
	p := e.Elapsed / e.EstimatedDuration
	if p > 1 {
		p = 1
	}
	return p
}

// TimeRemaining is the unscaled simulation time left, 0 once resolved.
func (e *Expedition) TimeRemaining() float64 {
	if e.State != StateInProgress {
		return 0
	}
	rem := e.EstimatedDuration - e.Elapsed
	if rem < 0 {
		rem = 0
	}
	return rem
}
