package mission

// AgentID is an opaque handle to a character that can run missions.
type AgentID string

// DefaultExpirySeconds is how long a freshly posted mission stays on the
// board before expiring (7 days of simulation time).
const DefaultExpirySeconds = 7 * 24 * 60 * 60

// Mission is a task definition with a finite-state lifecycle. All lifecycle
// fields are mutated only through the transition methods below.
type Mission struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`

	Objectives []Objective `json:"objectives"`
	Rewards    []Reward    `json:"rewards"`

	Status         Status              `json:"status"`
	AssignedAgents map[AgentID]struct{} `json:"assigned_agents,omitempty"`

	Location       string   `json:"location,omitempty"`
	TimeLimit      *float64 `json:"time_limit,omitempty"`
	ExpirationTime *float64 `json:"expiration_time,omitempty"`
	CreationTime   float64  `json:"creation_time"`
	CompletionTime *float64 `json:"completion_time,omitempty"`

	GuildID       GuildID             `json:"guild_id"`
	Tags          map[string]struct{} `json:"tags,omitempty"`
	RequiredLevel int                 `json:"required_level"`
}

// New creates an Available mission with the default 7-day expiry and the
// difficulty's recommended level requirement.
func New(id ID, name, description string, difficulty Difficulty, guildID GuildID, now float64) Mission {
	expiry := now + DefaultExpirySeconds
	return Mission{
		ID:             id,
		Name:           name,
		Description:    description,
		Difficulty:     difficulty,
		Status:         StatusAvailable,
		AssignedAgents: make(map[AgentID]struct{}),
		ExpirationTime: &expiry,
		CreationTime:   now,
		GuildID:        guildID,
		Tags:           make(map[string]struct{}),
		RequiredLevel:  difficulty.RecommendedLevel(),
	}
}

// AddObjective appends an objective.
func (m *Mission) AddObjective(o Objective) {
	m.Objectives = append(m.Objectives, o)
}

// AddReward appends a reward.
func (m *Mission) AddReward(r Reward) {
	m.Rewards = append(m.Rewards, r)
}

// AssignAgent inserts an agent into the assigned set. Assigning to an
// Available mission moves it to Assigned. Repeated inserts of the same agent
// are no-ops (set semantics); the return value reports whether the agent was
// newly added.
func (m *Mission) AssignAgent(agent AgentID) bool {
	if m.AssignedAgents == nil {
		m.AssignedAgents = make(map[AgentID]struct{})
	}
	if m.Status == StatusAvailable {
		m.Status = StatusAssigned
	}
	if _, ok := m.AssignedAgents[agent]; ok {
		return false
	}
	m.AssignedAgents[agent] = struct{}{}
	return true
}

// RemoveAgent removes an agent from the assigned set. If the set empties
// while the mission is still only Assigned, it reverts to Available; an
// InProgress mission never reverts.
func (m *Mission) RemoveAgent(agent AgentID) bool {
	if _, ok := m.AssignedAgents[agent]; !ok {
		return false
	}
	delete(m.AssignedAgents, agent)
	if len(m.AssignedAgents) == 0 && m.Status == StatusAssigned {
		m.Status = StatusAvailable
	}
	return true
}

// Start moves an Assigned mission with at least one agent to InProgress.
// If the mission carries a time limit, the expiry is rebased to now+limit,
// overriding the posting-time default.
func (m *Mission) Start(now float64) bool {
	if m.Status != StatusAssigned || len(m.AssignedAgents) == 0 {
		return false
	}
	m.Status = StatusInProgress
	if m.TimeLimit != nil {
		expiry := now + *m.TimeLimit
		m.ExpirationTime = &expiry
	}
	return true
}

// Complete finishes an InProgress mission whose objectives are all done.
// Refused (false, no mutation) otherwise.
func (m *Mission) Complete(now float64) bool {
	if m.Status != StatusInProgress {
		return false
	}
	for _, o := range m.Objectives {
		if !o.IsCompleted() {
			return false
		}
	}
	m.Status = StatusCompleted
	t := now
	m.CompletionTime = &t
	return true
}

// Fail marks an Assigned or InProgress mission failed; no-op elsewhere.
func (m *Mission) Fail() {
	if m.Status == StatusAssigned || m.Status == StatusInProgress {
		m.Status = StatusFailed
	}
}

// CheckExpiration expires a live mission whose expiry has passed and reports
// whether a transition happened. This is the only path out of the live set
// for a stalled or unclaimed mission.
func (m *Mission) CheckExpiration(now float64) bool {
	if m.ExpirationTime == nil || now <= *m.ExpirationTime {
		return false
	}
	switch m.Status {
	case StatusAvailable, StatusAssigned, StatusInProgress:
		m.Status = StatusExpired
		return true
	}
	return false
}

// ProgressPercent is the mean of the objectives' progress, 0 with none.
func (m Mission) ProgressPercent() float64 {
	if len(m.Objectives) == 0 {
		return 0
	}
	var total float64
	for _, o := range m.Objectives {
		total += o.ProgressPercent()
	}
	return total / float64(len(m.Objectives))
}

// AllObjectivesCompleted reports whether the mission has objectives and every
// one of them is done.
func (m Mission) AllObjectivesCompleted() bool {
	if len(m.Objectives) == 0 {
		return false
	}
	for _, o := range m.Objectives {
		if !o.IsCompleted() {
			return false
		}
	}
	return true
}

// AddTag inserts a tag.
func (m *Mission) AddTag(tag string) {
	if m.Tags == nil {
		m.Tags = make(map[string]struct{})
	}
	m.Tags[tag] = struct{}{}
}

// HasTag reports whether the mission carries the tag.
func (m Mission) HasTag(tag string) bool {
	_, ok := m.Tags[tag]
	return ok
}
