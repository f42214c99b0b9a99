package models

import (
	"time"
)

// Thread is a forum topic opened in-character.
type Thread struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CharacterID  uint      `json:"character_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"not null;size:255"`
	Body         string    `json:"body" gorm:"not null;type:text"`
	RepliesCount int       `json:"replies_count" gorm:"default:0"`
	IsLocked     bool      `json:"is_locked" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Character Character     `json:"character" gorm:"foreignKey:CharacterID"`
	Replies   []ThreadReply `json:"replies" gorm:"foreignKey:ThreadID"`
}

type ThreadReply struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ThreadID    uint      `json:"thread_id" gorm:"not null;index"`
	CharacterID uint      `json:"character_id" gorm:"not null;index"`
	Body        string    `json:"body" gorm:"not null;type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Character Character `json:"character" gorm:"foreignKey:CharacterID"`
}
