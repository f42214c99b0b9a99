package models

import "time"

type RelationshipStatus string

const (
	RelationshipStatusPositive    RelationshipStatus = "positive"
	RelationshipStatusNeutral     RelationshipStatus = "neutral"
	RelationshipStatusNegative    RelationshipStatus = "negative"
	RelationshipStatusComplicated RelationshipStatus = "complicated"
)

// ValidRelationshipStatus reports whether s is one of the four known
// status labels.
func ValidRelationshipStatus(s RelationshipStatus) bool {
	switch s {
	case RelationshipStatusPositive, RelationshipStatusNeutral,
		RelationshipStatusNegative, RelationshipStatusComplicated:
		return true
	}
	return false
}

// Relationship links two characters. The pair is logically unordered:
// Character1 is whichever side proposed the link, but lookups always
// check both orderings and at most one row may exist per pair.
type Relationship struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	Character1ID uint               `json:"character1_id" gorm:"not null;index"`
	Character2ID uint               `json:"character2_id" gorm:"not null;index"`
	Type         string             `json:"type" gorm:"not null;size:100"`
	Description  string             `json:"description" gorm:"type:text"`
	Status       RelationshipStatus `json:"status" gorm:"not null;default:'neutral';size:20"`
	IsPending    bool               `json:"is_pending" gorm:"default:false"`
	IsApproved   bool               `json:"is_approved" gorm:"default:false"`
	RequestedBy  string             `json:"requested_by" gorm:"not null;size:191"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Character1 Character `json:"character1" gorm:"foreignKey:Character1ID"`
	Character2 Character `json:"character2" gorm:"foreignKey:Character2ID"`
}

// RelationshipView is the decorated shape handed to the presentation
// layer when listing a character's relationships.
type RelationshipView struct {
	ID             uint               `json:"id"`
	Type           string             `json:"type"`
	Description    string             `json:"description"`
	Status         RelationshipStatus `json:"status"`
	IsPending      bool               `json:"is_pending"`
	IsApproved     bool               `json:"is_approved"`
	RequestedBy    string             `json:"requested_by"`
	OtherCharacter CharacterSummary   `json:"other_character"`
	OtherUserName  string             `json:"other_user_name"`
	CanEdit        bool               `json:"can_edit"`
	CreatedAt      time.Time          `json:"created_at"`
}
