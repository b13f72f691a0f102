package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "NOTE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

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

const (
	NoteCreated = "NOTE_CREATED"
	NoteUpdated = "NOTE_UPDATED"
	NoteDeleted = "NOTE_DELETED"
)

// NewNoteEvent builds the lifecycle event published on every successful
// note mutation.
func NewNoteEvent(eventType string, noteId, userId uuid.UUID, title string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"note_id": noteId,
			"user_id": userId,
			"title":   title,
		},
		OccurredAt: time.Now(),
	}
}
