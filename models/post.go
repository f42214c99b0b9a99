package models

import (
	"time"
)

// Post is a character-authored entry on the social feed.
type Post struct {
	ID            string      `json:"id" gorm:"primaryKey;size:191"`
	CharacterID   uint        `json:"character_id" gorm:"not null;index"`
	Body          string      `json:"body" gorm:"not null;type:text"`
	ImageUrls     StringSlice `json:"image_urls" gorm:"type:json"`
	LikesCount    int         `json:"likes_count" gorm:"default:0"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Character Character  `json:"character" gorm:"foreignKey:CharacterID"`
	Likes     []PostLike `json:"likes" gorm:"foreignKey:PostID"`
}

type PostLike struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PostID      string    `json:"post_id" gorm:"not null;size:191"`
	CharacterID uint      `json:"character_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	Post      Post      `json:"post" gorm:"foreignKey:PostID"`
	Character Character `json:"character" gorm:"foreignKey:CharacterID"`
}

// PostWithInteractions decorates a post with the viewing character's
// like state.
type PostWithInteractions struct {
	Post
	IsLiked bool `json:"is_liked"`
}

// FeedResponse is the paginated feed payload.
type FeedResponse struct {
	Posts      []PostWithInteractions `json:"posts"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	HasMore    bool                   `json:"has_more"`
	TotalPages int                    `json:"total_pages"`
}
