package models

import "time"

type Team struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:255"`
	Description  string    `json:"description" gorm:"type:text"`
	EmblemURL    string    `json:"emblem_url" gorm:"size:500"`
	OwnerID      string    `json:"owner_id" gorm:"not null;size:191"`
	MembersCount int       `json:"members_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Owner   User        `json:"owner" gorm:"foreignKey:OwnerID"`
	Members []Character `json:"members" gorm:"foreignKey:TeamID"`
}
