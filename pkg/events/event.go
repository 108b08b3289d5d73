package events

import "time"

// Event types emitted by the knowledge index layer
const (
	TypeKnowledgeChanged = "KNOWLEDGE_CHANGED" // one source row created/updated
	TypeIndexRebuilt     = "INDEX_REBUILT"     // full rebuild finished
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "INDEX_REBUILT").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by the constructors below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewKnowledgeChanged announces that one source row needs re-indexing.
func NewKnowledgeChanged(docType, businessID string) Event {
	return BaseEvent{
		Type: TypeKnowledgeChanged,
		Data: map[string]interface{}{
			"type":        docType,
			"business_id": businessID,
		},
		OccurredAt: time.Now(),
	}
}

// NewIndexRebuilt announces a completed full rebuild.
func NewIndexRebuilt(records int) Event {
	return BaseEvent{
		Type: TypeIndexRebuilt,
		Data: map[string]interface{}{
			"records": records,
		},
		OccurredAt: time.Now(),
	}
}
