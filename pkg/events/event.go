package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDiagnosisConfirmed = "diagnosis.confirmed"
	TypeKnowledgeRefreshed = "knowledge.refreshed"
)

// Event defines the contract for everything published on the event bus.
type Event interface {
	// EventType is the subject suffix, e.g. "diagnosis.confirmed".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

// Payload includes the event id and time so consumers can deduplicate.
func (e BaseEvent) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["event_id"] = e.ID
	out["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	return out
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Type: eventType, Data: data, OccurredAt: time.Now()}
}

// DiagnosisConfirmed is raised once a turn has persisted a diagnosis.
func DiagnosisConfirmed(userID, sessionID string, turn int64, diseases, symptoms []string) BaseEvent {
	return newEvent(TypeDiagnosisConfirmed, map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
		"turn":       turn,
		"diseases":   diseases,
		"symptoms":   symptoms,
	})
}

// KnowledgeRefreshed is raised after a new knowledge snapshot went live.
func KnowledgeRefreshed(version int64, source string, diseases int) BaseEvent {
	return newEvent(TypeKnowledgeRefreshed, map[string]interface{}{
		"version":  version,
		"source":   source,
		"diseases": diseases,
	})
}
