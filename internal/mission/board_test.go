package mission

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_AddGetRemove(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Easy, "guild_1", 0)
	b.Add(m)

	got, ok := b.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)

	_, ok = b.Get("mission_999")
	assert.False(t, ok)

	removed, ok := b.Remove(m.ID)
	require.True(t, ok)
	assert.Equal(t, m.ID, removed.ID)
	assert.Equal(t, 0, b.Len())
}

func TestBoard_NextIDNeverReused(t *testing.T) {
	b := NewBoard()
	first := b.NextID()
	assert.Equal(t, ID("mission_1"), first)

	m := New(first, "Test", "d", Easy, "guild_1", 0)
	b.Add(m)
	b.Remove(first)

	// Removal does not recycle the counter.
	assert.Equal(t, ID("mission_2"), b.NextID())
	assert.Equal(t, ID("mission_3"), b.NextID())
}

func TestBoard_Queries(t *testing.T) {
	b := NewBoard()

	m1 := New(b.NextID(), "One", "d", Easy, "guild_1", 0)
	m1.AddTag("combat")
	b.Add(m1)

	m2 := New(b.NextID(), "Two", "d", Hard, "guild_2", 0)
	m2.AddTag("stealth")
	b.Add(m2)

	m3 := New(b.NextID(), "Three", "d", Easy, "guild_1", 0)
	m3.AssignAgent("agent_1")
	b.Add(m3)

	assert.Len(t, b.Available(), 2)
	assert.Len(t, b.ByStatus(StatusAssigned), 1)
	assert.Len(t, b.ByGuild("guild_1"), 2)
	assert.Len(t, b.ByTag("stealth"), 1)
	assert.Empty(t, b.ByTag("boss"))
}

func TestBoard_Mutate(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Easy, "guild_1", 0)
	b.Add(m)

	err := b.Mutate(m.ID, func(mm *Mission) {
		mm.AssignAgent("agent_1")
	})
	require.NoError(t, err)

	got, _ := b.Get(m.ID)
	assert.Equal(t, StatusAssigned, got.Status)

	err = b.Mutate("mission_999", func(*Mission) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoard_UpdateMissionsIdempotent(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Medium, "guild_1", 0)
	b.Add(m)

	later := 9.0 * 24 * 60 * 60
	expired := b.UpdateMissions(later)
	assert.Equal(t, []ID{m.ID}, expired)

	got, _ := b.Get(m.ID)
	assert.Equal(t, StatusExpired, got.Status)

	// Second sweep at the same time changes nothing and reports nothing.
	assert.Empty(t, b.UpdateMissions(later))
	again, _ := b.Get(m.ID)
	assert.Equal(t, got, again)
}

func TestBoard_UpdateMissionsAutoCompletes(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Easy, "guild_1", 0)
	m.AddObjective(NewObjective(ObjectiveDefeatBoss, "Defeat the Dragon", "Dragon", 0))
	m.AssignAgent("agent_1")
	require.True(t, m.Start(10))
	m.Objectives[0].Complete()
	b.Add(m)

	b.UpdateMissions(20)

	got, _ := b.Get(m.ID)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.CompletionTime)
	assert.Equal(t, 20.0, *got.CompletionTime)
}

func TestBoard_CleanUpExpired(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Medium, "guild_1", 100)
	b.Add(m)

	eightDays := 100 + 8.0*24*60*60
	b.UpdateMissions(eightDays)
	got, _ := b.Get(m.ID)
	require.Equal(t, StatusExpired, got.Status)

	// Not old enough yet.
	assert.Equal(t, 0, b.CleanUpExpired(30, eightDays))
	_, ok := b.Get(m.ID)
	assert.True(t, ok)

	// Old enough now.
	fortyDays := 100 + 40.0*24*60*60
	assert.Equal(t, 1, b.CleanUpExpired(30, fortyDays))
	_, ok = b.Get(m.ID)
	assert.False(t, ok)
}

func TestBoard_CleanUpNeverRemovesLiveMissions(t *testing.T) {
	b := NewBoard()
	m := New(b.NextID(), "Test", "d", Medium, "guild_1", 0)
	b.Add(m)

	// Far past the retention cutoff, but the mission is still Available.
	assert.Equal(t, 0, b.CleanUpExpired(1, 100.0*24*60*60))
	_, ok := b.Get(m.ID)
	assert.True(t, ok)
}

func TestBoard_GenerateRandomMission(t *testing.T) {
	b := NewBoard()
	g := NewGenerator(rand.New(rand.NewSource(42)))

	for i := 0; i < 50; i++ {
		m := b.GenerateRandomMission(g, "guild_1", 100)

		assert.Equal(t, StatusAvailable, m.Status)
		assert.Equal(t, GuildID("guild_1"), m.GuildID)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Description)
		require.NotNil(t, m.ExpirationTime)
		assert.Equal(t, 100.0+DefaultExpirySeconds, *m.ExpirationTime)

		assert.GreaterOrEqual(t, len(m.Objectives), 1)
		assert.LessOrEqual(t, len(m.Objectives), 3)
		assert.GreaterOrEqual(t, len(m.Rewards), 1)
		assert.LessOrEqual(t, len(m.Rewards), 2)
		assert.GreaterOrEqual(t, len(m.Tags), 1)
		assert.LessOrEqual(t, len(m.Tags), 3)
		assert.Equal(t, m.Difficulty.RecommendedLevel(), m.RequiredLevel)
	}

	// IDs minted in generation order.
	m := b.GenerateRandomMission(g, "guild_1", 100)
	assert.Equal(t, ID("mission_51"), m.ID)
}
