package models

import "time"

// GroupConversation is a named group chat between a set of characters.
type GroupConversation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	InviteCode  string    `json:"invite_code" gorm:"uniqueIndex;size:191"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CreatedBy Character     `json:"created_by" gorm:"foreignKey:CreatedByID"`
	Members   []GroupMember `json:"members" gorm:"foreignKey:GroupID"`
}

type GroupMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GroupID     uint      `json:"group_id" gorm:"not null;index"`
	CharacterID uint      `json:"character_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	Group     GroupConversation `json:"group" gorm:"foreignKey:GroupID"`
	Character Character         `json:"character" gorm:"foreignKey:CharacterID"`
}
