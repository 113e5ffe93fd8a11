package mission

// HistoryEntry is one line of an agent's mission history.
type HistoryEntry struct {
	MissionID ID      `json:"mission_id"`
	Status    Status  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// Tracker is an agent's personal mission record. One tracker per agent; it
// enforces the one-active-mission invariant independently of what the board's
// copy of the mission says. The progress mirror is a point-in-time copy, not
// authoritative.
type Tracker struct {
	ActiveMission     *ID                     `json:"active_mission,omitempty"`
	CompletedMissions []ID                    `json:"completed_missions,omitempty"`
	FailedMissions    []ID                    `json:"failed_missions,omitempty"`
	Progress          map[ID][]ObjectiveStatus `json:"mission_progress,omitempty"`
	History           []HistoryEntry          `json:"mission_history,omitempty"`
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{Progress: make(map[ID][]ObjectiveStatus)}
}

// StartMission records a new active mission. Refused if one is already
// active.
func (t *Tracker) StartMission(id ID, now float64) bool {
	if t.ActiveMission != nil {
		return false
	}
	m := id
	t.ActiveMission = &m
	t.History = append(t.History, HistoryEntry{MissionID: id, Status: StatusInProgress, Timestamp: now})
	return true
}

// CompleteMission clears the active mission, records it completed, and
// returns its ID. Returns ("", false) when nothing was active.
func (t *Tracker) CompleteMission(now float64) (ID, bool) {
	if t.ActiveMission == nil {
		return "", false
	}
	id := *t.ActiveMission
	t.ActiveMission = nil
	t.CompletedMissions = append(t.CompletedMissions, id)
	t.History = append(t.History, HistoryEntry{MissionID: id, Status: StatusCompleted, Timestamp: now})
	return id, true
}

// FailMission clears the active mission, records it failed, and returns its
// ID.
func (t *Tracker) FailMission(now float64) (ID, bool) {
	if t.ActiveMission == nil {
		return "", false
	}
	id := *t.ActiveMission
	t.ActiveMission = nil
	t.FailedMissions = append(t.FailedMissions, id)
	t.History = append(t.History, HistoryEntry{MissionID: id, Status: StatusFailed, Timestamp: now})
	return id, true
}

// UpdateProgress writes one objective slot of the progress mirror, growing
// the slice as needed. Missing intermediate slots default to NotStarted.
func (t *Tracker) UpdateProgress(id ID, objectiveIndex int, status ObjectiveStatus) {
	if t.Progress == nil {
		t.Progress = make(map[ID][]ObjectiveStatus)
	}
	p := t.Progress[id]
	for len(p) <= objectiveIndex {
		p = append(p, ObjectiveNotStarted)
	}
	p[objectiveIndex] = status
	t.Progress[id] = p
}

// IsCompleted reports whether the agent has completed the mission.
func (t *Tracker) IsCompleted(id ID) bool {
	for _, m := range t.CompletedMissions {
		if m == id {
			return true
		}
	}
	return false
}

// IsFailed reports whether the agent has failed the mission.
func (t *Tracker) IsFailed(id ID) bool {
	for _, m := range t.FailedMissions {
		if m == id {
			return true
		}
	}
	return false
}

// SuccessRate is completed/(completed+failed), 0 with no record.
func (t *Tracker) SuccessRate() float64 {
	total := len(t.CompletedMissions) + len(t.FailedMissions)
	if total == 0 {
		return 0
	}
	return float64(len(t.CompletedMissions)) / float64(total)
}
