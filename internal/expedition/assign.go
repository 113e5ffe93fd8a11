package expedition

import (
	"errors"
	"sort"

	"guildhall/internal/mission"
)

// Candidate is an idle agent eligible for auto-assignment.
type Candidate struct {
	ID    mission.AgentID
	Level int
}

// Assignment records one successful auto-assignment.
type Assignment struct {
	ExpeditionID ID
	MissionID    mission.ID
	Agents       []mission.AgentID
}

// AutoAssign greedily pairs the guild's Available missions with the given
// candidate pool. For each mission, the difficulty's party size (capped by
// the remaining pool) of the highest-level candidates is taken; the stable
// sort keeps prior relative order on level ties. Selected agents leave the
// pool for the rest of the sweep, so no agent lands on two expeditions.
//
// Board mission lifecycles are advanced here too: a claimed mission is moved
// Assigned then InProgress under the board lock. The matching is greedy and
// non-optimal on purpose; it guarantees only that idle agents end up on at
// most one expedition and that higher-level agents go to work first.
func (s *Scheduler) AutoAssign(board *mission.Board, guildID mission.GuildID, pool []Candidate, now float64) []Assignment {
	if !s.AutoAssignMissions {
		return nil
	}

	var assignments []Assignment
	for _, m := range board.ByGuild(guildID) {
		if m.Status != mission.StatusAvailable {
			continue
		}
		if len(pool) == 0 {
			break
		}

		want := m.Difficulty.PartySize()
		if want > len(pool) {
			want = len(pool)
		}
		if want == 0 {
			continue
		}

		sort.SliceStable(pool, func(i, j int) bool { return pool[i].Level > pool[j].Level })

		agents := make([]mission.AgentID, 0, want)
		levels := make([]int, 0, want)
		for i := 0; i < want; i++ {
			agents = append(agents, pool[i].ID)
			levels = append(levels, pool[i].Level)
		}

		expID, err := s.CreateExpedition(m, agents, levels, now)
		if err != nil {
			if errors.Is(err, ErrTooManyExpeditions) {
				break
			}
			// Busy agent: skip this mission, keep the pool for the next one.
			continue
		}

		pool = pool[want:]

		_ = board.Mutate(m.ID, func(mm *mission.Mission) {
			for _, a := range agents {
				mm.AssignAgent(a)
			}
			mm.Start(now)
		})

		assignments = append(assignments, Assignment{
			ExpeditionID: expID,
			MissionID:    m.ID,
			Agents:       agents,
		})
	}
	return assignments
}
