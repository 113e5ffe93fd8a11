package game

import (
	"context"
	"log"
	"strconv"
	"sync"

	"guildhall/internal/agent"
	"guildhall/internal/expedition"
	"guildhall/internal/guild"
	"guildhall/internal/mission"
	"guildhall/internal/telemetry"
)

// Engine owns one simulation's moving parts and advances them with Tick.
// It is the single writer for the board, the scheduler, and the trackers;
// readers go through its query methods, which share the same lock.
type Engine struct {
	Board     *mission.Board
	Generator *mission.Generator
	Scheduler *expedition.Scheduler
	Agents    agent.Repository
	Guilds    guild.Repository
	Telemetry telemetry.Repository
	Clock     Clock
	Logger    *log.Logger

	// RefillTarget keeps this many Available missions posted per guild.
	RefillTarget int
	// CleanupDaysToKeep is the retention window for Expired missions.
	CleanupDaysToKeep int
	// OfflineThreshold is the gap, in seconds, beyond which a tick is
	// treated as an offline period and caught up in one step.
	OfflineThreshold float64

	// Notify, when set, receives every consumed scheduler event after its
	// effects are applied. The server layer uses it to feed UI clients.
	Notify func(expedition.Event)

	mu       sync.Mutex
	trackers map[agent.ID]*mission.Tracker
	lastTick float64
	started  bool
}

// TickResult summarizes one engine tick.
type TickResult struct {
	Now             float64 `json:"now"`
	Delta           float64 `json:"delta"`
	MissionsPosted  int     `json:"missions_posted"`
	Assignments     int     `json:"assignments"`
	EventsProcessed int     `json:"events_processed"`
	TimedOut        int     `json:"timed_out"`
	CleanedUp       int     `json:"cleaned_up"`
	CaughtUp        bool    `json:"caught_up"`
}

// Tracker returns the agent's mission tracker, creating it on first use.
// Callers must hold the engine lock (internal use) or go through
// TrackerSnapshot.
func (e *Engine) tracker(id agent.ID) *mission.Tracker {
	if e.trackers == nil {
		e.trackers = make(map[agent.ID]*mission.Tracker)
	}
	t, ok := e.trackers[id]
	if !ok {
		t = mission.NewTracker()
		e.trackers[id] = t
	}
	return t
}

// TrackerSnapshot returns a copy of the agent's tracker.
func (e *Engine) TrackerSnapshot(id agent.ID) (mission.Tracker, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.trackers[id]
	if !ok {
		return mission.Tracker{}, false
	}
	return *t, true
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if e.Telemetry != nil {
		_ = e.Telemetry.RecordEvent(t, md)
	}
}

// Tick advances the simulation by one step: board sweep, refill,
// auto-assignment, scheduler update (or offline catch-up when the gap is
// large), timeout sweep, event consumption, and garbage collection.
func (e *Engine) Tick(ctx context.Context) (TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Clock.Elapsed()
	var dt float64
	if e.started {
		dt = now - e.lastTick
		if dt < 0 {
			dt = 0
		}
	}
	e.started = true
	e.lastTick = now

	res := TickResult{Now: now, Delta: dt}

	// Offline catch-up: a gap over the threshold is consumed in one
	// equivalent step, and its events are queued ahead of this tick's.
	if e.OfflineThreshold > 0 && dt > e.OfflineThreshold {
		events := e.Scheduler.CalculateOfflineProgress(dt, now)
		e.Scheduler.PushEvents(events)
		e.record(telemetry.EventOfflineCatchUp, telemetry.EventMetadata{
			"gap_seconds": dt,
			"events":      len(events),
		})
		e.logf("offline catch-up: gap=%.0fs events=%d", dt, len(events))
		res.CaughtUp = true
		dt = 0 // already advanced
	}

	// 1. Time-based mission transitions.
	for _, id := range e.Board.UpdateMissions(now) {
		e.record(telemetry.EventMissionExpired, telemetry.EventMetadata{
			"mission_id": string(id),
		})
	}

	guilds, err := e.Guilds.List(ctx)
	if err != nil {
		return res, err
	}

	// 2. Keep the boards stocked.
	for _, g := range guilds {
		posted := e.refillBoard(g.ID, now)
		res.MissionsPosted += posted
	}

	// 3. Greedy auto-assignment per guild.
	for _, g := range guilds {
		n, err := e.autoAssign(ctx, g.ID, now)
		if err != nil {
			e.logf("auto-assign guild=%s: %v", g.ID, err)
			continue
		}
		res.Assignments += n
	}

	// 4. Advance active expeditions.
	e.Scheduler.Update(now, dt)

	// 5. Force-fail starved expeditions.
	res.TimedOut = len(e.Scheduler.TimeoutSweep(now))

	// 6. Drain the event queue to empty.
	n, err := e.consumeEvents(ctx, now)
	if err != nil {
		return res, err
	}
	res.EventsProcessed = n

	// 7. Bound board growth.
	res.CleanedUp = e.Board.CleanUpExpired(e.CleanupDaysToKeep, now)

	e.record(telemetry.EventTick, telemetry.EventMetadata{"now": now})
	return res, nil
}

// refillBoard posts random missions until the guild has RefillTarget
// Available ones.
func (e *Engine) refillBoard(guildID string, now float64) int {
	if e.RefillTarget <= 0 || e.Generator == nil {
		return 0
	}
	have := 0
	for _, m := range e.Board.ByGuild(mission.GuildID(guildID)) {
		if m.Status == mission.StatusAvailable {
			have++
		}
	}
	posted := 0
	for ; have < e.RefillTarget; have++ {
		m := e.Board.GenerateRandomMission(e.Generator, mission.GuildID(guildID), now)
		e.Board.Add(m)
		e.record(telemetry.EventMissionPosted, telemetry.EventMetadata{
			"mission_id": string(m.ID),
			"difficulty": m.Difficulty.String(),
		})
		posted++
	}
	return posted
}

// autoAssign builds the guild's idle candidate pool and lets the scheduler
// match it against the board, then opens the matching tracker records.
func (e *Engine) autoAssign(ctx context.Context, guildID string, now float64) (int, error) {
	if !e.Scheduler.AutoAssignMissions {
		return 0, nil
	}

	members, err := e.Agents.ListByGuild(ctx, guildID)
	if err != nil {
		return 0, err
	}

	busy := map[mission.AgentID]bool{}
	for _, exp := range e.Scheduler.Active() {
		for _, a := range exp.AssignedAgents {
			busy[a] = true
		}
	}

	var pool []expedition.Candidate
	for _, m := range members {
		if busy[m.ID] {
			continue
		}
		if t, ok := e.trackers[m.ID]; ok && t.ActiveMission != nil {
			continue
		}
		pool = append(pool, expedition.Candidate{ID: m.ID, Level: m.Level})
	}
	if len(pool) == 0 {
		return 0, nil
	}

	assignments := e.Scheduler.AutoAssign(e.Board, mission.GuildID(guildID), pool, now)
	for _, a := range assignments {
		for _, agentID := range a.Agents {
			if !e.tracker(agentID).StartMission(a.MissionID, now) {
				e.logf("tracker refused mission %s for busy agent %s", a.MissionID, agentID)
			}
		}
	}
	return len(assignments), nil
}

// consumeEvents drains the scheduler queue to empty, dispatching by type.
// Each event is seen exactly once; removal happens on pop.
func (e *Engine) consumeEvents(ctx context.Context, now float64) (int, error) {
	n := 0
	for {
		ev, ok := e.Scheduler.PopEvent()
		if !ok {
			return n, nil
		}
		n++

		switch ev.Type {
		case expedition.EventExpeditionStarted:
			e.logf("expedition %s started (mission %s)", ev.ExpeditionID, ev.Data["mission_id"])
			e.record(telemetry.EventExpeditionStarted, telemetry.EventMetadata{
				"expedition_id": string(ev.ExpeditionID),
			})
		case expedition.EventExpeditionCompleted:
			if err := e.handleCompleted(ctx, ev, now); err != nil {
				e.logf("apply completion %s: %v", ev.ExpeditionID, err)
			}
		case expedition.EventExpeditionFailed:
			if err := e.handleFailed(ctx, ev, now); err != nil {
				e.logf("apply failure %s: %v", ev.ExpeditionID, err)
			}
		case expedition.EventResourceDiscovered:
			e.handleResourceDiscovered(ctx, ev)
		case expedition.EventAgentLevelUp:
			// Extension hook; nothing mandated beyond the log.
			e.logf("agent level-up event: %v", ev.Data)
		default:
			e.logf("unhandled event type %s", ev.Type)
		}

		if e.Notify != nil {
			e.Notify(ev)
		}
	}
}

// owningGuild resolves the guild that owns an expedition through its agents'
// membership, falling back to the mission's posting guild. Crediting by
// membership rather than "first guild in the map" is deliberate.
func (e *Engine) owningGuild(ctx context.Context, exp expedition.Expedition) string {
	for _, id := range exp.AssignedAgents {
		a, ok, err := e.Agents.Get(ctx, id)
		if err == nil && ok && a.GuildID != "" {
			return a.GuildID
		}
	}
	return string(exp.GuildID)
}

func (e *Engine) handleCompleted(ctx context.Context, ev expedition.Event, now float64) error {
	exp, ok := e.Scheduler.FindCompleted(ev.ExpeditionID)
	if !ok {
		e.logf("completed expedition %s not found", ev.ExpeditionID)
		return nil
	}

	// The board's copy of the mission finishes with the expedition.
	_ = e.Board.Mutate(exp.MissionID, func(m *mission.Mission) {
		for i := range m.Objectives {
			m.Objectives[i].Complete()
		}
		m.Complete(now)
	})

	guildID := e.owningGuild(ctx, exp)
	for _, grant := range exp.Rewards {
		e.applyGrant(ctx, guildID, grant)
	}

	objectiveCount := 0
	if m, ok := e.Board.Get(exp.MissionID); ok {
		objectiveCount = len(m.Objectives)
	}
	for _, id := range exp.AssignedAgents {
		t := e.tracker(id)
		for i := 0; i < objectiveCount; i++ {
			t.UpdateProgress(exp.MissionID, i, mission.ObjectiveCompleted)
		}
		if _, ok := t.CompleteMission(now); !ok {
			e.logf("agent %s had no active mission to complete", id)
		}
	}

	e.record(telemetry.EventExpeditionCompleted, telemetry.EventMetadata{
		"expedition_id": string(exp.ID),
		"mission_id":    string(exp.MissionID),
		"rewards":       len(exp.Rewards),
	})
	e.logf("expedition %s completed with %d rewards", exp.ID, len(exp.Rewards))
	return nil
}

func (e *Engine) handleFailed(ctx context.Context, ev expedition.Event, now float64) error {
	exp, ok := e.Scheduler.FindCompleted(ev.ExpeditionID)
	if !ok {
		e.logf("failed expedition %s not found", ev.ExpeditionID)
		return nil
	}

	_ = e.Board.Mutate(exp.MissionID, func(m *mission.Mission) {
		m.Fail()
	})

	for _, id := range exp.AssignedAgents {
		if _, ok := e.tracker(id).FailMission(now); !ok {
			e.logf("agent %s had no active mission to fail", id)
		}
	}

	for _, id := range exp.Casualties {
		a, ok, err := e.Agents.Get(ctx, id)
		if err != nil || !ok {
			continue
		}
		a.Injure()
		if _, err := e.Agents.Update(ctx, a); err != nil {
			e.logf("update injured agent %s: %v", id, err)
			continue
		}
		e.record(telemetry.EventAgentInjured, telemetry.EventMetadata{"agent_id": string(id)})
	}

	e.record(telemetry.EventExpeditionFailed, telemetry.EventMetadata{
		"expedition_id": string(exp.ID),
		"mission_id":    string(exp.MissionID),
		"casualties":    len(exp.Casualties),
	})
	e.logf("expedition %s failed (%d casualties)", exp.ID, len(exp.Casualties))
	return nil
}

func (e *Engine) handleResourceDiscovered(ctx context.Context, ev expedition.Event) {
	exp, ok := e.Scheduler.FindCompleted(ev.ExpeditionID)
	if !ok {
		return
	}
	amount, _ := strconv.Atoi(ev.Data["amount"])
	if amount <= 0 {
		return
	}
	guildID := e.owningGuild(ctx, exp)
	g, ok, err := e.Guilds.Get(ctx, guildID)
	if err != nil || !ok {
		return
	}
	g.AddResource(guild.Resource(ev.Data["resource"]), amount)
	_, _ = e.Guilds.Update(ctx, g)
	e.record(telemetry.EventResourceDiscovered, telemetry.EventMetadata{
		"guild_id": guildID,
		"resource": ev.Data["resource"],
		"amount":   amount,
	})
}

// applyGrant credits one reward to its recipient agent or to the owning
// guild.
func (e *Engine) applyGrant(ctx context.Context, guildID string, grant expedition.Grant) {
	r := grant.Reward

	applyToAgent := func(id agent.ID, fn func(*agent.Agent)) {
		a, ok, err := e.Agents.Get(ctx, id)
		if err != nil || !ok {
			e.logf("reward recipient %s not found", id)
			return
		}
		fn(&a)
		if _, err := e.Agents.Update(ctx, a); err != nil {
			e.logf("update agent %s: %v", id, err)
		}
	}

	applyToGuild := func(fn func(*guild.Guild)) {
		g, ok, err := e.Guilds.Get(ctx, guildID)
		if err != nil || !ok {
			e.logf("reward guild %s not found", guildID)
			return
		}
		fn(&g)
		if _, err := e.Guilds.Update(ctx, g); err != nil {
			e.logf("update guild %s: %v", guildID, err)
		}
	}

	switch r.Kind {
	case mission.RewardGuildResource:
		applyToGuild(func(g *guild.Guild) { g.AddResource(guild.Resource(r.Resource), r.Amount) })
	case mission.RewardExperience:
		if grant.Recipient != nil {
			applyToAgent(*grant.Recipient, func(a *agent.Agent) {
				if gained := a.AddExperience(r.Amount); gained > 0 {
					e.record(telemetry.EventAgentLevelUp, telemetry.EventMetadata{
						"agent_id": string(a.ID),
						"level":    a.Level,
					})
					e.logf("agent %s reached level %d", a.ID, a.Level)
				}
			})
		}
	case mission.RewardItems:
		if grant.Recipient != nil {
			applyToAgent(*grant.Recipient, func(a *agent.Agent) {
				for _, item := range r.Items {
					a.AddItem(item)
				}
			})
		}
	case mission.RewardReputation:
		applyToGuild(func(g *guild.Guild) { g.Reputation += r.Amount })
	case mission.RewardUnlockFacility:
		applyToGuild(func(g *guild.Guild) { g.UnlockFacility(r.Facility) })
	case mission.RewardUnlockArea:
		applyToGuild(func(g *guild.Guild) { g.UnlockArea(r.Area) })
	case mission.RewardCustom:
		e.logf("custom reward: %s (value %d)", r.Note, r.Amount)
	}

	e.record(telemetry.EventRewardApplied, telemetry.EventMetadata{"kind": string(r.Kind)})
}

// CancelExpedition aborts an active expedition without a terminal event and
// releases its agents' trackers.
func (e *Engine) CancelExpedition(ctx context.Context, id expedition.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, ok := e.Scheduler.CancelExpedition(id)
	if !ok {
		return false
	}
	now := e.Clock.Elapsed()
	for _, agentID := range exp.AssignedAgents {
		if t, ok := e.trackers[agentID]; ok {
			_, _ = t.FailMission(now)
		}
	}
	// The board mission is failed rather than reopened: the attempt consumed
	// it.
	_ = e.Board.Mutate(exp.MissionID, func(m *mission.Mission) { m.Fail() })
	e.logf("expedition %s cancelled", id)
	return true
}

// SetSimulationSpeed adjusts the scheduler's time multiplier.
func (e *Engine) SetSimulationSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Scheduler.SetSimulationSpeed(speed)
}

// SimulationSpeed returns the scheduler's current time multiplier.
func (e *Engine) SimulationSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.SimulationSpeed()
}

// ActiveExpeditions returns a snapshot of running expeditions.
func (e *Engine) ActiveExpeditions() []expedition.Expedition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.Active()
}

// CompletedExpeditions returns the bounded resolution history.
func (e *Engine) CompletedExpeditions() []expedition.Expedition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Scheduler.Completed()
}

// MissionsByStatus returns board missions in the given status, or all
// missions when status is empty.
func (e *Engine) MissionsByStatus(status mission.Status) []mission.Mission {
	e.mu.Lock()
	defer e.mu.Unlock()
	if status == "" {
		var all []mission.Mission
		for _, s := range []mission.Status{
			mission.StatusAvailable, mission.StatusAssigned, mission.StatusInProgress,
			mission.StatusCompleted, mission.StatusFailed, mission.StatusExpired,
		} {
			all = append(all, e.Board.ByStatus(s)...)
		}
		return all
	}
	return e.Board.ByStatus(status)
}
