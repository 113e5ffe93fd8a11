package mission

// ID is an opaque mission identifier minted by the Board.
type ID string

// GuildID identifies the guild a mission belongs to.
type GuildID string

// Status tracks the lifecycle of a mission.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// Difficulty orders missions from trivial to extreme. The numeric order is
// meaningful: harder difficulties compare greater.
type Difficulty int

const (
	Trivial Difficulty = iota
	Easy
	Medium
	Hard
	VeryHard
	Extreme
)

// AllDifficulties lists every difficulty in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Trivial, Easy, Medium, Hard, VeryHard, Extreme}
}

func (d Difficulty) String() string {
	switch d {
	case Trivial:
		return "trivial"
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case VeryHard:
		return "very_hard"
	case Extreme:
		return "extreme"
	}
	return "unknown"
}

// RecommendedLevel is the agent level a mission of this difficulty expects.
func (d Difficulty) RecommendedLevel() int {
	switch d {
	case Trivial:
		return 1
	case Easy:
		return 3
	case Medium:
		return 5
	case Hard:
		return 8
	case VeryHard:
		return 12
	case Extreme:
		return 15
	}
	return 1
}

// RewardMultiplier scales reward magnitudes by difficulty.
func (d Difficulty) RewardMultiplier() float64 {
	switch d {
	case Trivial:
		return 0.5
	case Easy:
		return 1.0
	case Medium:
		return 1.5
	case Hard:
		return 2.0
	case VeryHard:
		return 3.0
	case Extreme:
		return 5.0
	}
	return 1.0
}

// PartySize is the auto-assignment agent count policy for this difficulty.
func (d Difficulty) PartySize() int {
	switch d {
	case Trivial, Easy:
		return 1
	case Medium, Hard:
		return 2
	case VeryHard, Extreme:
		return 3
	}
	return 1
}

// ObjectiveStatus is the visible state of a single objective.
type ObjectiveStatus string

const (
	ObjectiveNotStarted ObjectiveStatus = "not_started"
	ObjectiveInProgress ObjectiveStatus = "in_progress"
	ObjectiveCompleted  ObjectiveStatus = "completed"
	ObjectiveFailed     ObjectiveStatus = "failed"
)

// ObjectiveKind categorizes what an objective asks for.
type ObjectiveKind string

const (
	ObjectiveKillEnemies  ObjectiveKind = "kill_enemies"
	ObjectiveCollectItems ObjectiveKind = "collect_items"
	ObjectiveExploreArea  ObjectiveKind = "explore_area"
	ObjectiveDefeatBoss   ObjectiveKind = "defeat_boss"
	ObjectiveEscortNPC    ObjectiveKind = "escort_npc"
	ObjectiveFindArtifact ObjectiveKind = "find_artifact"
	ObjectiveSurviveWaves ObjectiveKind = "survive_waves"
	ObjectiveReachPlace   ObjectiveKind = "reach_location"
	ObjectiveClearDungeon ObjectiveKind = "clear_dungeon"
	ObjectiveCustom       ObjectiveKind = "custom"
)

// Objective is a single goal within a mission. Counted kinds (kills, items,
// exploration, waves) start InProgress with Current=0; the rest start
// NotStarted and flip straight to Completed.
type Objective struct {
	Kind        ObjectiveKind   `json:"kind"`
	Description string          `json:"description"`
	Target      string          `json:"target,omitempty"`
	Status      ObjectiveStatus `json:"status"`
	Current     int             `json:"current,omitempty"`
	Total       int             `json:"total,omitempty"`
}

// NewObjective builds an objective in its initial status.
func NewObjective(kind ObjectiveKind, description, target string, total int) Objective {
	o := Objective{
		Kind:        kind,
		Description: description,
		Target:      target,
		Status:      ObjectiveNotStarted,
		Total:       total,
	}
	if total > 0 {
		o.Status = ObjectiveInProgress
	}
	return o
}

// Advance adds progress toward a counted objective and reports whether this
// call completed it.
func (o *Objective) Advance(amount int) bool {
	if o.Status != ObjectiveInProgress {
		return false
	}
	o.Current += amount
	if o.Current >= o.Total {
		o.Current = o.Total
		o.Status = ObjectiveCompleted
		return true
	}
	return false
}

// Complete marks the objective done regardless of counters.
func (o *Objective) Complete() {
	o.Status = ObjectiveCompleted
	if o.Total > 0 {
		o.Current = o.Total
	}
}

// Fail marks the objective failed.
func (o *Objective) Fail() {
	o.Status = ObjectiveFailed
}

// IsCompleted reports whether the objective is done.
func (o Objective) IsCompleted() bool {
	return o.Status == ObjectiveCompleted
}

// ProgressPercent returns completion in [0,1].
func (o Objective) ProgressPercent() float64 {
	switch o.Status {
	case ObjectiveCompleted:
		return 1.0
	case ObjectiveInProgress:
		if o.Total == 0 {
			return 0
		}
		return float64(o.Current) / float64(o.Total)
	}
	return 0
}

// RewardKind defines the type of a mission reward.
type RewardKind string

const (
	RewardGuildResource  RewardKind = "guild_resource"
	RewardItems          RewardKind = "items"
	RewardExperience     RewardKind = "experience"
	RewardReputation     RewardKind = "reputation"
	RewardUnlockFacility RewardKind = "unlock_facility"
	RewardUnlockArea     RewardKind = "unlock_area"
	RewardCustom         RewardKind = "custom"
)

// Reward is something granted when a mission resolves successfully. Kind
// selects which of the optional fields are meaningful.
type Reward struct {
	Kind     RewardKind `json:"kind"`
	Resource string     `json:"resource,omitempty"` // guild resource name
	Amount   int        `json:"amount,omitempty"`
	Items    []string   `json:"items,omitempty"`
	Facility string     `json:"facility,omitempty"`
	Area     string     `json:"area,omitempty"`
	Note     string     `json:"note,omitempty"` // custom rewards
}
