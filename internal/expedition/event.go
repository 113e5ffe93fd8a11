package expedition

// EventType categorizes asynchronous scheduler events.
type EventType string

const (
	EventExpeditionStarted   EventType = "expedition_started"
	EventExpeditionCompleted EventType = "expedition_completed"
	EventExpeditionFailed    EventType = "expedition_failed"
	EventAgentLevelUp        EventType = "agent_level_up"
	EventResourceDiscovered  EventType = "resource_discovered"
)

// Event is produced only by the scheduler and consumed exactly once via FIFO
// dequeue. Ordering is creation order.
type Event struct {
	Type         EventType         `json:"type"`
	Timestamp    float64           `json:"timestamp"`
	ExpeditionID ID                `json:"expedition_id,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}
