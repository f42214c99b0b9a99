package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"charaverse-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Character{},
		&models.Relationship{},
		&models.GroupConversation{},
		&models.GroupMember{},
		&models.Message{},
		&models.Post{},
		&models.PostLike{},
		&models.Thread{},
		&models.ThreadReply{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Inbox queries group by partner and sort by recency
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_receiver_sender ON messages(receiver_id, sender_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for messages receiver: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_sender_receiver ON messages(sender_id, receiver_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for messages sender: %v\n", err)
	}

	// Feed pagination
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_character_created ON posts(character_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for posts: %v\n", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// At most one relationship per unordered character pair. Propose also
	// checks both orderings inside a transaction; this closes the race
	// between two concurrent proposals for the same pair.
	if err := db.Exec("CREATE UNIQUE INDEX uk_relationships_pair ON relationships((LEAST(character1_id, character2_id)), (GREATEST(character1_id, character2_id)))").Error; err != nil {
		// Ignore error if index already exists
		fmt.Printf("Warning: Could not add unique pair index for relationships: %v\n", err)
	}

	// Prevent duplicate post likes
	if err := db.Exec("ALTER TABLE post_likes ADD CONSTRAINT uk_post_likes_post_character UNIQUE (post_id, character_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for post_likes: %v\n", err)
	}

	// Prevent duplicate group memberships
	if err := db.Exec("ALTER TABLE group_members ADD CONSTRAINT uk_group_members_group_character UNIQUE (group_id, character_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for group_members: %v\n", err)
	}

	// Characters may not relate to themselves
	if err := db.Exec("ALTER TABLE relationships ADD CONSTRAINT ck_relationships_no_self CHECK (character1_id != character2_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for relationships: %v\n", err)
	}

	return nil
}
