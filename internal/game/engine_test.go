package game

import (
	"context"
	"math/rand"
	"testing"

	"guildhall/internal/agent"
	"guildhall/internal/expedition"
	"guildhall/internal/guild"
	"guildhall/internal/mission"
	"guildhall/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPolicy always returns the configured outcome.
type scriptedPolicy struct {
	success    bool
	casualties []mission.AgentID
}

func (p scriptedPolicy) Resolve(e *expedition.Expedition, rng *rand.Rand) (bool, []mission.AgentID) {
	if p.success {
		return true, nil
	}
	return false, p.casualties
}

func newEngineForTest(t *testing.T) (*Engine, *FakeClock, *agent.MemoryRepo, *guild.MemoryRepo) {
	t.Helper()
	ctx := context.Background()

	agents := agent.NewMemoryRepo()
	guilds := guild.NewMemoryRepo()
	require.NoError(t, guilds.Seed(ctx, []guild.Guild{
		{ID: "guild_1", Name: "Adventurers"},
	}))
	require.NoError(t, agents.Seed(ctx, []agent.Agent{
		{ID: "agent_1", Name: "Rin", Level: 5, GuildID: "guild_1"},
		{ID: "agent_2", Name: "Thorn", Level: 3, GuildID: "guild_1"},
		{ID: "agent_3", Name: "Mab", Level: 8, GuildID: "guild_1"},
	}))

	clock := NewFakeClock(0)
	sched := expedition.NewScheduler(rand.New(rand.NewSource(1)))
	sched.SetPolicy(scriptedPolicy{success: true})

	e := &Engine{
		Board:             mission.NewBoard(),
		Generator:         mission.NewGenerator(rand.New(rand.NewSource(2))),
		Scheduler:         sched,
		Agents:            agents,
		Guilds:            guilds,
		Telemetry:         telemetry.NewMemoryRepository(),
		Clock:             clock,
		CleanupDaysToKeep: 1,
	}
	return e, clock, agents, guilds
}

// postMission places a hand-built mission on the board so tests control
// difficulty and rewards exactly.
func postMission(e *Engine, difficulty mission.Difficulty, rewards ...mission.Reward) mission.ID {
	m := mission.New(e.Board.NextID(), "Test Delve", "A controlled run.", difficulty, "guild_1", e.Clock.Elapsed())
	m.AddObjective(mission.NewObjective(mission.ObjectiveExploreArea, "Chart the area", "ruins", 1))
	for _, r := range rewards {
		m.AddReward(r)
	}
	e.Board.Add(m)
	return m.ID
}

func TestTickRefillsBoard(t *testing.T) {
	e, _, _, _ := newEngineForTest(t)
	e.RefillTarget = 3
	e.Scheduler.AutoAssignMissions = false

	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.MissionsPosted)
	assert.Len(t, e.Board.Available(), 3)

	// A second tick posts nothing while the board is stocked.
	res, err = e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.MissionsPosted)
}

func TestTickAssignsAndCompletes(t *testing.T) {
	e, clock, agents, guilds := newEngineForTest(t)
	id := postMission(e, mission.Easy,
		mission.Reward{Kind: mission.RewardGuildResource, Resource: "gold", Amount: 50},
	)

	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assignments)
	assert.Equal(t, 1, e.Scheduler.ActiveCount())

	m, ok := e.Board.Get(id)
	require.True(t, ok)
	assert.Equal(t, mission.StatusInProgress, m.Status)

	// The highest-level agent is picked for the solo party and tracked.
	tr, ok := e.TrackerSnapshot("agent_3")
	require.True(t, ok)
	require.NotNil(t, tr.ActiveMission)
	assert.Equal(t, id, *tr.ActiveMission)

	// Easy solo estimate is 600s; step past it in small ticks.
	for clock.Elapsed() < 700 {
		clock.Advance(100)
		_, err = e.Tick(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 0, e.Scheduler.ActiveCount())
	m, _ = e.Board.Get(id)
	assert.Equal(t, mission.StatusCompleted, m.Status)

	tr, _ = e.TrackerSnapshot("agent_3")
	assert.Nil(t, tr.ActiveMission)
	assert.True(t, tr.IsCompleted(id))
	assert.Equal(t, []mission.ObjectiveStatus{mission.ObjectiveCompleted}, tr.Progress[id])

	g, ok, err := guilds.Get(context.Background(), "guild_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, g.Resources["gold"])

	a, ok, err := agents.Get(context.Background(), "agent_3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, a.Experience, 0, "party member earned experience")
}

func TestTickFailureInjuresCasualties(t *testing.T) {
	e, clock, agents, _ := newEngineForTest(t)
	e.Scheduler.SetPolicy(scriptedPolicy{casualties: []mission.AgentID{"agent_3"}})
	id := postMission(e, mission.Easy)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	for clock.Elapsed() < 700 {
		clock.Advance(100)
		_, err = e.Tick(context.Background())
		require.NoError(t, err)
	}

	m, _ := e.Board.Get(id)
	assert.Equal(t, mission.StatusFailed, m.Status)

	tr, _ := e.TrackerSnapshot("agent_3")
	assert.True(t, tr.IsFailed(id))

	a, _, err := agents.Get(context.Background(), "agent_3")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Injuries)
}

func TestTickRecordsMissionExpiry(t *testing.T) {
	e, clock, _, _ := newEngineForTest(t)
	e.Scheduler.AutoAssignMissions = false
	postMission(e, mission.Easy)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, e.Telemetry.CountByType(telemetry.EventMissionExpired))

	// First sweep past the default expiry records exactly one event.
	clock.Advance(mission.DefaultExpirySeconds + 1)
	_, err = e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, e.Telemetry.CountByType(telemetry.EventMissionExpired))

	clock.Advance(1)
	_, err = e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, e.Telemetry.CountByType(telemetry.EventMissionExpired))
}

func TestTickOfflineCatchUp(t *testing.T) {
	e, clock, _, _ := newEngineForTest(t)
	e.OfflineThreshold = 300
	id := postMission(e, mission.Easy)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, e.Scheduler.ActiveCount())

	// A 1000s gap exceeds the 600s estimate; the single catch-up step must
	// resolve the expedition and consume its events in the same tick.
	clock.Advance(1000)
	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, res.CaughtUp)
	assert.Equal(t, 0, e.Scheduler.ActiveCount())
	assert.Equal(t, 0, e.Scheduler.PendingEvents())

	m, _ := e.Board.Get(id)
	assert.Equal(t, mission.StatusCompleted, m.Status)
}

func TestOwningGuildFollowsAgentMembership(t *testing.T) {
	e, clock, _, guilds := newEngineForTest(t)
	ctx := context.Background()
	require.NoError(t, guilds.Seed(ctx, []guild.Guild{{ID: "guild_2", Name: "Rivals"}}))

	// The mission is posted under guild_2 but only guild_1 agents exist, so
	// auto-assignment never touches it. Start it by hand to simulate a
	// cross-guild party.
	m := mission.New(e.Board.NextID(), "Border Run", "x", mission.Easy, "guild_2", 0)
	m.AddObjective(mission.NewObjective(mission.ObjectiveExploreArea, "scout", "border", 1))
	m.AddReward(mission.Reward{Kind: mission.RewardGuildResource, Resource: "gold", Amount: 10})
	e.Board.Add(m)
	e.Scheduler.AutoAssignMissions = false

	_, err := e.Scheduler.CreateExpedition(m, []mission.AgentID{"agent_1"}, []int{5}, 0)
	require.NoError(t, err)
	e.Board.Mutate(m.ID, func(mm *mission.Mission) {
		mm.AssignAgent("agent_1")
		mm.Start(0)
	})

	for clock.Elapsed() < 700 {
		clock.Advance(100)
		_, err = e.Tick(ctx)
		require.NoError(t, err)
	}

	// Credit lands with the agent's guild, not the posting guild.
	g1, _, err := guilds.Get(ctx, "guild_1")
	require.NoError(t, err)
	assert.Equal(t, 10, g1.Resources["gold"])
	g2, _, err := guilds.Get(ctx, "guild_2")
	require.NoError(t, err)
	assert.Equal(t, 0, g2.Resources["gold"])
}

func TestCancelExpeditionFreesAgents(t *testing.T) {
	e, clock, _, _ := newEngineForTest(t)
	id := postMission(e, mission.Easy)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	active := e.ActiveExpeditions()
	require.Len(t, active, 1)

	require.True(t, e.CancelExpedition(context.Background(), active[0].ID))
	assert.Equal(t, 0, e.Scheduler.ActiveCount())

	tr, _ := e.TrackerSnapshot("agent_3")
	assert.Nil(t, tr.ActiveMission)

	m, _ := e.Board.Get(id)
	assert.Equal(t, mission.StatusFailed, m.Status)

	// No terminal event leaks from a cancel.
	e.Scheduler.AutoAssignMissions = false
	clock.Advance(10)
	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.EventsProcessed)
}

func TestNotifyReceivesEvents(t *testing.T) {
	e, clock, _, _ := newEngineForTest(t)
	postMission(e, mission.Easy)

	var seen []expedition.EventType
	e.Notify = func(ev expedition.Event) { seen = append(seen, ev.Type) }

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	assert.Equal(t, expedition.EventExpeditionStarted, seen[0])

	for clock.Elapsed() < 700 {
		clock.Advance(100)
		_, err = e.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Contains(t, seen, expedition.EventExpeditionCompleted)
}

func TestSpeedZeroPausesExpeditions(t *testing.T) {
	e, clock, _, _ := newEngineForTest(t)
	postMission(e, mission.Easy)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	e.SetSimulationSpeed(0)

	clock.Advance(200)
	_, err = e.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, e.Scheduler.ActiveCount())

	e.SetSimulationSpeed(1)
	for clock.Elapsed() < 900 {
		clock.Advance(100)
		_, err = e.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 0, e.Scheduler.ActiveCount())
}
