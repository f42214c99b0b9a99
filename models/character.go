package models

import (
	"time"
)

type Character struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"not null;index;size:191"`
	Name       string    `json:"name" gorm:"not null;size:255"`
	Tagline    string    `json:"tagline" gorm:"size:255"`
	Bio        string    `json:"bio" gorm:"type:text"`
	AvatarURL  string    `json:"avatar_url" gorm:"size:500"`
	IsPrivate  bool      `json:"is_private" gorm:"default:false"`
	IsArchived bool      `json:"is_archived" gorm:"default:false"`
	TeamID     *uint     `json:"team_id" gorm:"index"`
	TeamRole   string    `json:"team_role" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User  `json:"user" gorm:"foreignKey:UserID"`
	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// CharacterSummary is the trimmed shape embedded in conversation and
// relationship view models.
type CharacterSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	OwnerID   string `json:"owner_id"`
}

func (ch *Character) Summary() CharacterSummary {
	return CharacterSummary{
		ID:        ch.ID,
		Name:      ch.Name,
		AvatarURL: ch.AvatarURL,
		OwnerID:   ch.UserID,
	}
}
