package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Content       string    `gorm:"type:text"`
	AudioRef      string    `gorm:"type:text"`
	Image         string    `gorm:"type:text"`
	Transcription string    `gorm:"type:text"`
	Favorite      bool      `gorm:"not null;default:false"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}
