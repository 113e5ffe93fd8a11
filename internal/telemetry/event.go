package telemetry

import "time"

type EventType string

const (
	EventTick                EventType = "tick"
	EventMissionPosted       EventType = "mission_posted"
	EventMissionExpired      EventType = "mission_expired"
	EventExpeditionStarted   EventType = "expedition_started"
	EventExpeditionCompleted EventType = "expedition_completed"
	EventExpeditionFailed    EventType = "expedition_failed"
	EventRewardApplied       EventType = "reward_applied"
	EventAgentLevelUp        EventType = "agent_level_up"
	EventAgentInjured        EventType = "agent_injured"
	EventResourceDiscovered  EventType = "resource_discovered"
	EventOfflineCatchUp      EventType = "offline_catch_up"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
