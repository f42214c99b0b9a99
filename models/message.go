package models

import "time"

// Message is a single message between characters. Direct messages have
// ReceiverID set and GroupID null; group messages have GroupID set and
// ReceiverID null. Deletion is a soft flag, rows are never removed.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index"`
	ReceiverID *uint     `json:"receiver_id" gorm:"index"`
	GroupID    *uint     `json:"group_id" gorm:"index"`
	Content    string    `json:"content" gorm:"not null;type:text"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	IsDeleted  bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Sender   Character          `json:"sender" gorm:"foreignKey:SenderID"`
	Receiver *Character         `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	Group    *GroupConversation `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// ConversationSummary is one inbox row: a conversation partner with
// recency and unread metadata.
type ConversationSummary struct {
	Partner       CharacterSummary `json:"partner"`
	LastMessageAt time.Time        `json:"last_message_at"`
	UnreadCount   int              `json:"unread_count"`
}

// InboxView is the aggregated inbox for one character.
type InboxView struct {
	CharacterID   uint                  `json:"character_id"`
	Conversations []ConversationSummary `json:"conversations"`
	TotalUnread   int                   `json:"total_unread"`
}

// ConversationView is a pairwise conversation page. CanCompose carries
// the messaging-gate decision; when false, Reason tells the client why
// so it can prompt for a relationship request.
type ConversationView struct {
	Partner    CharacterSummary `json:"partner"`
	Messages   []Message        `json:"messages"`
	CanCompose bool             `json:"can_compose"`
	Reason     string           `json:"reason,omitempty"`
}
