package jobs

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/repositories"
)

// retention window for soft-deleted messages before physical removal
const deletedMessageRetention = 90 * 24 * time.Hour

// MessagePurgeJob periodically removes soft-deleted messages past the
// retention window. Soft-deleted rows never surface through the API;
// this only bounds table growth.
type MessagePurgeJob struct {
	repo   *repositories.MessageRepository
	logger *zap.Logger
	ticker *time.Ticker
	done   chan bool
}

func NewMessagePurgeJob(db *gorm.DB, logger *zap.Logger, interval time.Duration) *MessagePurgeJob {
	return &MessagePurgeJob{
		repo:   repositories.NewMessageRepository(db),
		logger: logger,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the purge job
func (j *MessagePurgeJob) Start() {
	j.logger.Info("message purge job started")

	go func() {
		// Run immediately on start
		j.purge()

		for {
			select {
			case <-j.ticker.C:
				j.purge()
			case <-j.done:
				j.logger.Info("message purge job stopped")
				return
			}
		}
	}()
}

// Stop stops the purge job
func (j *MessagePurgeJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *MessagePurgeJob) purge() {
	cutoff := time.Now().Add(-deletedMessageRetention)
	removed, err := j.repo.PurgeDeletedBefore(cutoff)
	if err != nil {
		j.logger.Warn("message purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("purged soft-deleted messages", zap.Int64("count", removed))
	}
}
