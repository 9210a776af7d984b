package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventVehiclesUpdated EventType = "VEHICLES_UPDATED"
	EventFeedFailed      EventType = "FEED_FAILED"
	EventPong            EventType = "PONG"
)

// TopicVehicles is the room that receives vehicle position updates.
const TopicVehicles = "vehicles"

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
	Topic   string      `json:"topic"` // Used for routing to subscribed rooms
}
