package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period               string            `json:"period"`
	EventCounts          map[EventType]int `json:"event_counts"`
	Ticks                int               `json:"ticks"`
	ExpeditionsCompleted int               `json:"expeditions_completed"`
	ExpeditionsFailed    int               `json:"expeditions_failed"`
	ExpeditionSuccess    float64           `json:"expedition_success_rate"`
	MissionsPosted       int               `json:"missions_posted"`
	MissionsExpired      int               `json:"missions_expired"`
	LevelUps             int               `json:"level_ups"`
	Injuries             int               `json:"injuries"`
	RewardsByKind        map[string]int    `json:"rewards_by_kind"`
}

// CalculateStats computes balance stats from recorded events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:        since.Format("2006-01-02"),
		EventCounts:   make(map[EventType]int),
		RewardsByKind: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTick:
			stats.Ticks++
		case EventExpeditionCompleted:
			stats.ExpeditionsCompleted++
		case EventExpeditionFailed:
			stats.ExpeditionsFailed++
		case EventMissionPosted:
			stats.MissionsPosted++
		case EventMissionExpired:
			stats.MissionsExpired++
		case EventAgentLevelUp:
			stats.LevelUps++
		case EventAgentInjured:
			stats.Injuries++
		case EventRewardApplied:
			if kind, ok := metadata["kind"].(string); ok {
				stats.RewardsByKind[kind]++
			}
		}
	}

	resolved := stats.ExpeditionsCompleted + stats.ExpeditionsFailed
	if resolved > 0 {
		stats.ExpeditionSuccess = float64(stats.ExpeditionsCompleted) / float64(resolved)
	}

	return stats, nil
}
