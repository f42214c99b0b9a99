package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"charaverse-api/models"
)

// SetupTestDB creates an in-memory database and migrates all models. It
// requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "SetupTestDB: open")

	err = db.AutoMigrate(
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
	require.NoError(t, err, "SetupTestDB: migrate")

	return db
}
