package expedition

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"guildhall/internal/mission"
)

var (
	// ErrAgentBusy means a requested agent is already on an active
	// expedition. Auto-assignment treats this as "skip and continue".
	ErrAgentBusy = errors.New("agent already committed to an expedition")
	// ErrTooManyExpeditions means the concurrency cap is reached.
	ErrTooManyExpeditions = errors.New("maximum concurrent expeditions reached")
	// ErrNoAgents means an expedition was requested with an empty party.
	ErrNoAgents = errors.New("expedition needs at least one agent")
)

// OfflineThreshold is the minimum gap, in seconds, before offline catch-up
// kicks in.
const OfflineThreshold = 300.0

// DefaultMaxConcurrent caps simultaneously active expeditions.
const DefaultMaxConcurrent = 5

// defaultCompletedCap bounds the completed-expeditions history.
const defaultCompletedCap = 200

// ResolutionPolicy decides an expedition's outcome once its time budget is
// spent. Implementations must not mutate the expedition.
type ResolutionPolicy interface {
	Resolve(e *Expedition, rng *rand.Rand) (success bool, casualties []mission.AgentID)
}

// RiskPolicy is the default resolution: a single success-chance roll, and on
// failure each party member risks injury.
type RiskPolicy struct {
	CasualtyChance float64
}

func (p RiskPolicy) Resolve(e *Expedition, rng *rand.Rand) (bool, []mission.AgentID) {
	if rng.Float64() < e.SuccessChance {
		return true, nil
	}
	chance := p.CasualtyChance
	if chance == 0 {
		chance = 0.25
	}
	var casualties []mission.AgentID
	for _, a := range e.AssignedAgents {
		if rng.Float64() < chance {
			casualties = append(casualties, a)
		}
	}
	return false, casualties
}

// Scheduler owns expedition lifecycles: the active map, the bounded
// completed history, and the FIFO event queue. It is single-writer; all
// mutation goes through its methods, one sequential call per tick.
type Scheduler struct {
	active    map[ID]*Expedition
	completed []Expedition
	queue     []Event

	AutoAssignMissions bool
	MaxConcurrent      int

	speed           float64
	lastUpdateTime  float64
	lastOfflineTime *float64

	rng    *rand.Rand
	policy ResolutionPolicy
}

// NewScheduler builds a scheduler around the given random source.
func NewScheduler(rng *rand.Rand) *Scheduler {
	return &Scheduler{
		active:             make(map[ID]*Expedition),
		AutoAssignMissions: true,
		MaxConcurrent:      DefaultMaxConcurrent,
		speed:              1.0,
		rng:                rng,
		policy:             RiskPolicy{},
	}
}

// SetPolicy swaps the outcome resolution policy.
func (s *Scheduler) SetPolicy(p ResolutionPolicy) {
	s.policy = p
}

// SetSimulationSpeed sets the time multiplier. Zero pauses expedition
// progress without pausing other bookkeeping; negative values are clamped.
func (s *Scheduler) SetSimulationSpeed(multiplier float64) {
	if multiplier < 0 {
		multiplier = 0
	}
	s.speed = multiplier
}

// SimulationSpeed returns the current multiplier.
func (s *Scheduler) SimulationSpeed() float64 {
	return s.speed
}

// LastUpdateTime returns the timestamp of the most recent Update call.
func (s *Scheduler) LastUpdateTime() float64 {
	return s.lastUpdateTime
}

// LastOfflineTime returns the checkpoint used for offline gap detection.
func (s *Scheduler) LastOfflineTime() (float64, bool) {
	if s.lastOfflineTime == nil {
		return 0, false
	}
	return *s.lastOfflineTime, true
}

// MarkOffline records the offline checkpoint.
func (s *Scheduler) MarkOffline(now float64) {
	t := now
	s.lastOfflineTime = &t
}

// Reset drops all active expeditions and queued events, for new-game/load.
func (s *Scheduler) Reset() {
	s.active = make(map[ID]*Expedition)
	s.completed = nil
	s.queue = nil
	s.lastOfflineTime = nil
}

// successChance estimates the odds from party levels against the mission's
// required level: base 0.7, 5 points per level above or below, clamped.
func successChance(requiredLevel int, levels []int) float64 {
	if len(levels) == 0 {
		return 0.7
	}
	sum := 0
	for _, l := range levels {
		sum += l
	}
	avg := float64(sum) / float64(len(levels))
	chance := 0.7 + 0.05*(avg-float64(requiredLevel))
	if chance < 0.05 {
		chance = 0.05
	}
	if chance > 0.95 {
		chance = 0.95
	}
	return chance
}

// StartExpedition builds an expedition snapshot for the mission and party,
// inserts it into the active map, and enqueues ExpeditionStarted. Callers
// wanting double-booking protection use CreateExpedition instead.
func (s *Scheduler) StartExpedition(m mission.Mission, agents []mission.AgentID, agentLevels []int, now float64) ID {
	e := &Expedition{
		ID:                NewID(),
		MissionID:         m.ID,
		MissionName:       m.Name,
		GuildID:           m.GuildID,
		AssignedAgents:    append([]mission.AgentID(nil), agents...),
		StartTime:         now,
		EstimatedDuration: EstimateDuration(m.Difficulty, len(agents)),
		State:             StateInProgress,
		SuccessChance:     successChance(m.RequiredLevel, agentLevels),
		RewardMultiplier:  m.Difficulty.RewardMultiplier(),
		missionRewards:    append([]mission.Reward(nil), m.Rewards...),
	}
	s.active[e.ID] = e
	s.enqueue(Event{
		Type:         EventExpeditionStarted,
		Timestamp:    now,
		ExpeditionID: e.ID,
		Data: map[string]string{
			"mission_id":   string(m.ID),
			"mission_name": m.Name,
			"agents":       strconv.Itoa(len(agents)),
		},
	})
	return e.ID
}

// CreateExpedition is the assignment-path variant: it rejects, without
// mutation, parties that would double-book an agent or exceed the
// concurrency cap.
func (s *Scheduler) CreateExpedition(m mission.Mission, agents []mission.AgentID, agentLevels []int, now float64) (ID, error) {
	if len(agents) == 0 {
		return "", ErrNoAgents
	}
	if s.MaxConcurrent > 0 && len(s.active) >= s.MaxConcurrent {
		return "", ErrTooManyExpeditions
	}
	for _, a := range agents {
		if s.agentCommitted(a) {
			return "", fmt.Errorf("agent %s: %w", a, ErrAgentBusy)
		}
	}
	return s.StartExpedition(m, agents, agentLevels, now), nil
}

func (s *Scheduler) agentCommitted(a mission.AgentID) bool {
	for _, e := range s.active {
		for _, assigned := range e.AssignedAgents {
			if assigned == a {
				return true
			}
		}
	}
	return false
}

// CancelExpedition removes an active expedition without emitting a terminal
// event. This is the only way out of the active map other than resolution.
func (s *Scheduler) CancelExpedition(id ID) (Expedition, bool) {
	e, ok := s.active[id]
	if !ok {
		return Expedition{}, false
	}
	delete(s.active, id)
	return *e, true
}

// Update advances every active expedition by dt scaled by the simulation
// speed and resolves the ones whose budget is spent. Safe with dt == 0; an
// expedition is never resolved twice because resolution removes it from the
// active map.
func (s *Scheduler) Update(now, dt float64) {
	step := dt * s.speed
	if step > 0 {
		var resolved []ID
		for id, e := range s.active {
			e.Elapsed += step
			s.maybeLogEntry(e, now)
			if e.Elapsed >= e.EstimatedDuration {
				resolved = append(resolved, id)
			}
		}
		for _, id := range resolved {
			s.resolve(id, now)
		}
	}
	s.lastUpdateTime = now
}

// maybeLogEntry occasionally records a narrative line on a running
// expedition.
func (s *Scheduler) maybeLogEntry(e *Expedition, now float64) {
	if s.rng.Float64() > 0.1 {
		return
	}
	lines := []string{
		"The party successfully defeated a group of enemies.",
		"The party discovered a hidden treasure cache.",
		"A party member triggered a trap and was injured.",
		"The party solved an ancient puzzle mechanism.",
		"The party found a safe place to rest and recover.",
		"The party found valuable resources.",
	}
	e.Log = append(e.Log, LogEntry{
		Timestamp:   now,
		Description: lines[s.rng.Intn(len(lines))],
	})
}

// resolve decides the outcome of one active expedition and moves it to the
// completed history, enqueuing the matching terminal event.
func (s *Scheduler) resolve(id ID, now float64) {
	e, ok := s.active[id]
	if !ok {
		return
	}
	delete(s.active, id)

	actual := now - e.StartTime
	e.ActualDuration = &actual

	success, casualties := s.policy.Resolve(e, s.rng)
	if success {
		e.State = StateCompleted
		s.grantRewards(e)
		s.enqueue(Event{
			Type:         EventExpeditionCompleted,
			Timestamp:    now,
			ExpeditionID: e.ID,
			Data:         map[string]string{"mission_id": string(e.MissionID)},
		})
		if s.rng.Float64() < 0.3 {
			s.enqueue(Event{
				Type:         EventResourceDiscovered,
				Timestamp:    now,
				ExpeditionID: e.ID,
				Data: map[string]string{
					"resource": "supplies",
					"amount":   strconv.Itoa(int(10 * e.RewardMultiplier)),
				},
			})
		}
	} else {
		e.State = StateFailed
		e.Casualties = casualties
		s.enqueue(Event{
			Type:         EventExpeditionFailed,
			Timestamp:    now,
			ExpeditionID: e.ID,
			Data:         map[string]string{"mission_id": string(e.MissionID)},
		})
	}

	s.archive(*e)
}

// archive appends a resolved expedition to the completed history, trimming
// the oldest entries past the cap. Every terminal path goes through here.
func (s *Scheduler) archive(e Expedition) {
	s.completed = append(s.completed, e)
	if len(s.completed) > defaultCompletedCap {
		s.completed = s.completed[len(s.completed)-defaultCompletedCap:]
	}
}

// grantRewards fills the expedition's grant list on success: the mission's
// posted rewards (guild-bound unless inherently personal) plus a per-agent
// experience grant scaled by difficulty.
func (s *Scheduler) grantRewards(e *Expedition) {
	for _, r := range e.missionRewards {
		g := Grant{Reward: r}
		switch r.Kind {
		case mission.RewardItems, mission.RewardExperience:
			// Personal rewards go to a random party member.
			a := e.AssignedAgents[s.rng.Intn(len(e.AssignedAgents))]
			g.Recipient = &a
		}
		e.Rewards = append(e.Rewards, g)
	}
	for _, a := range e.AssignedAgents {
		agent := a
		e.Rewards = append(e.Rewards, Grant{
			Reward: mission.Reward{
				Kind:   mission.RewardExperience,
				Amount: int(100*e.RewardMultiplier) + s.rng.Intn(20),
			},
			Recipient: &agent,
		})
	}
}

// TimeoutSweep force-fails expeditions that have run more than twice their
// estimate, guarding against starved resolutions.
func (s *Scheduler) TimeoutSweep(now float64) []ID {
	var timedOut []ID
	for id, e := range s.active {
		if now-e.StartTime > e.EstimatedDuration*2 {
			timedOut = append(timedOut, id)
		}
	}
	for _, id := range timedOut {
		e := s.active[id]
		delete(s.active, id)
		actual := now - e.StartTime
		e.ActualDuration = &actual
		e.State = StateFailed
		s.enqueue(Event{
			Type:         EventExpeditionFailed,
			Timestamp:    now,
			ExpeditionID: e.ID,
			Data: map[string]string{
				"mission_id": string(e.MissionID),
				"reason":     "timeout",
			},
		})
		s.archive(*e)
	}
	return timedOut
}

// CalculateOfflineProgress advances all active expeditions across an offline
// gap and returns the generated events instead of leaving them queued, so
// the caller controls ordering against other queued events. One large step
// is exactly equivalent to many small ones because progress accumulates
// monotonically per expedition and resolution happens once, on crossing the
// estimate. Policy choice: an expedition resolves at most once per gap; the
// gap never synthesizes repeat runs of short missions.
func (s *Scheduler) CalculateOfflineProgress(offlineDuration, now float64) []Event {
	if offlineDuration <= 0 {
		return nil
	}
	mark := len(s.queue)
	s.Update(now, offlineDuration)
	events := append([]Event(nil), s.queue[mark:]...)
	s.queue = s.queue[:mark]
	s.MarkOffline(now)
	return events
}

// PushEvents appends externally held events (offline catch-up results) onto
// the queue.
func (s *Scheduler) PushEvents(events []Event) {
	s.queue = append(s.queue, events...)
}

func (s *Scheduler) enqueue(e Event) {
	s.queue = append(s.queue, e)
}

// PopEvent is the sole consumption path: strict FIFO.
func (s *Scheduler) PopEvent() (Event, bool) {
	if len(s.queue) == 0 {
		return Event{}, false
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

// PendingEvents reports the queue depth.
func (s *Scheduler) PendingEvents() int {
	return len(s.queue)
}

// Active returns a copy of each active expedition.
func (s *Scheduler) Active() []Expedition {
	out := make([]Expedition, 0, len(s.active))
	for _, e := range s.active {
		out = append(out, *e)
	}
	return out
}

// Get returns an active expedition by ID.
func (s *Scheduler) Get(id ID) (Expedition, bool) {
	e, ok := s.active[id]
	if !ok {
		return Expedition{}, false
	}
	return *e, true
}

// Completed returns the bounded completed history, oldest first.
func (s *Scheduler) Completed() []Expedition {
	return append([]Expedition(nil), s.completed...)
}

// FindCompleted locates a resolved expedition by ID.
func (s *Scheduler) FindCompleted(id ID) (Expedition, bool) {
	for i := range s.completed {
		if s.completed[i].ID == id {
			return s.completed[i], true
		}
	}
	return Expedition{}, false
}

// ActiveCount reports how many expeditions are running.
func (s *Scheduler) ActiveCount() int {
	return len(s.active)
}
