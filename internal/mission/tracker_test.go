package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_OneActiveMission(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.StartMission("mission_1", 100))
	require.NotNil(t, tr.ActiveMission)
	assert.Equal(t, ID("mission_1"), *tr.ActiveMission)

	// Hard invariant: at most one active mission.
	assert.False(t, tr.StartMission("mission_2", 150))
	assert.Equal(t, ID("mission_1"), *tr.ActiveMission)
}

func TestTracker_CompleteAndFail(t *testing.T) {
	tr := NewTracker()

	// Nothing active.
	_, ok := tr.CompleteMission(50)
	assert.False(t, ok)

	require.True(t, tr.StartMission("mission_1", 100))
	id, ok := tr.CompleteMission(200)
	require.True(t, ok)
	assert.Equal(t, ID("mission_1"), id)
	assert.Nil(t, tr.ActiveMission)
	assert.True(t, tr.IsCompleted("mission_1"))

	require.True(t, tr.StartMission("mission_2", 300))
	id, ok = tr.FailMission(400)
	require.True(t, ok)
	assert.Equal(t, ID("mission_2"), id)
	assert.True(t, tr.IsFailed("mission_2"))

	assert.Len(t, tr.History, 4)
	assert.Equal(t, StatusFailed, tr.History[3].Status)
	assert.Equal(t, 400.0, tr.History[3].Timestamp)
}

func TestTracker_SuccessRate(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0.0, tr.SuccessRate())

	tr.StartMission("mission_1", 0)
	tr.CompleteMission(1)
	tr.StartMission("mission_2", 2)
	tr.FailMission(3)

	assert.Equal(t, 0.5, tr.SuccessRate())

	// Reading the rate never clears state.
	assert.Len(t, tr.CompletedMissions, 1)
	assert.Len(t, tr.FailedMissions, 1)
}

func TestTracker_UpdateProgressGrowsSlots(t *testing.T) {
	tr := NewTracker()

	tr.UpdateProgress("mission_1", 2, ObjectiveCompleted)

	p := tr.Progress["mission_1"]
	require.Len(t, p, 3)
	assert.Equal(t, ObjectiveNotStarted, p[0])
	assert.Equal(t, ObjectiveNotStarted, p[1])
	assert.Equal(t, ObjectiveCompleted, p[2])

	tr.UpdateProgress("mission_1", 0, ObjectiveInProgress)
	assert.Equal(t, ObjectiveInProgress, tr.Progress["mission_1"][0])
	assert.Len(t, tr.Progress["mission_1"], 3)
}
