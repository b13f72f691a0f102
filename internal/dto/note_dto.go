package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content"`
	AudioRef      string `json:"audio_ref"`
	Image         string `json:"image"`
	Transcription string `json:"transcription"`
}

// UpdateNoteRequest carries a partial merge: only non-nil fields are
// applied. Id, owner and created_at are never part of the payload.
type UpdateNoteRequest struct {
	Id            uuid.UUID `json:"-"`
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	AudioRef      *string   `json:"audio_ref"`
	Image         *string   `json:"image"`
	Transcription *string   `json:"transcription"`
	Favorite      *bool     `json:"favorite"`
}

type FavoriteNoteRequest struct {
	Id       uuid.UUID `json:"-"`
	Favorite *bool     `json:"favorite" validate:"required"`
}

type ListNotesQuery struct {
	FavoriteOnly bool
	Limit        int
	Offset       int
}

type NoteResponse struct {
	Id            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AudioRef      string     `json:"audio_ref,omitempty"`
	Image         string     `json:"image,omitempty"`
	Transcription string     `json:"transcription,omitempty"`
	Favorite      bool       `json:"favorite"`
	UserId        uuid.UUID  `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type NoteEventMessage struct {
	Type   string    `json:"type"` // NOTE_CREATED | NOTE_UPDATED | NOTE_DELETED
	NoteId uuid.UUID `json:"note_id"`
	UserId uuid.UUID `json:"user_id"`
}
