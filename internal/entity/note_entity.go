package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title         string
	Content       string
	AudioRef      string
	Image         string
	Transcription string
	Favorite      bool
	UserId        uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
