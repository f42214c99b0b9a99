package repositories

import (
	"time"

	"gorm.io/gorm"

	"charaverse-api/models"
)

// MessageRepository holds the grouped queries behind the inbox
// aggregation and conversation views.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// PartnerActivity is one conversation partner with the timestamp of the
// most recent message in one direction.
type PartnerActivity struct {
	PartnerID     uint
	LastMessageAt time.Time
}

// PartnerUnread is one sender with the count of their unread messages
// to the inbox character.
type PartnerUnread struct {
	PartnerID   uint
	UnreadCount int
}

// partnerMaxRow scans the timestamp as a string: MySQL hands back a
// time.Time for MAX(created_at) and SQLite its text encoding, and
// database/sql converts both into a string.
type partnerMaxRow struct {
	PartnerID     uint
	LastMessageAt string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LastSentByPartner returns, per receiver, the timestamp of the latest
// direct message the character sent. Soft-deleted messages are ignored.
func (r *MessageRepository) LastSentByPartner(characterID uint) ([]PartnerActivity, error) {
	var rows []partnerMaxRow
	err := r.db.Model(&models.Message{}).
		Select("receiver_id AS partner_id, MAX(created_at) AS last_message_at").
		Where("sender_id = ? AND is_deleted = ? AND receiver_id IS NOT NULL AND group_id IS NULL", characterID, false).
		Group("receiver_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toActivity(rows), nil
}

// LastReceivedByPartner returns, per sender, the timestamp of the
// latest direct message the character received.
func (r *MessageRepository) LastReceivedByPartner(characterID uint) ([]PartnerActivity, error) {
	var rows []partnerMaxRow
	err := r.db.Model(&models.Message{}).
		Select("sender_id AS partner_id, MAX(created_at) AS last_message_at").
		Where("receiver_id = ? AND is_deleted = ? AND group_id IS NULL", characterID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toActivity(rows), nil
}

// UnreadBySender returns, per sender, the count of unread, non-deleted
// direct messages to the character.
func (r *MessageRepository) UnreadBySender(characterID uint) ([]PartnerUnread, error) {
	var rows []PartnerUnread
	err := r.db.Model(&models.Message{}).
		Select("sender_id AS partner_id, COUNT(*) AS unread_count").
		Where("receiver_id = ? AND is_read = ? AND is_deleted = ? AND group_id IS NULL", characterID, false, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ConversationMessages returns the direct messages between the two
// characters in both directions, oldest first, excluding soft-deleted
// rows.
func (r *MessageRepository) ConversationMessages(characterID, partnerID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = ? AND group_id IS NULL",
			characterID, partnerID, partnerID, characterID, false).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead flips all unread partner→character direct
// messages to read in one bulk update.
func (r *MessageRepository) MarkConversationRead(characterID, partnerID uint) error {
	return r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ? AND is_deleted = ? AND group_id IS NULL",
			partnerID, characterID, false, false).
		Update("is_read", true).Error
}

// GroupMessages returns the non-deleted messages of a group
// conversation, oldest first.
func (r *MessageRepository) GroupMessages(groupID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ? AND is_deleted = ?", groupID, false).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// PurgeDeletedBefore permanently removes soft-deleted messages older
// than the cutoff. Used by the background purge job only; the API never
// hard-deletes.
func (r *MessageRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	res := r.db.Unscoped().
		Where("is_deleted = ? AND updated_at < ?", true, cutoff).
		Delete(&models.Message{})
	return res.RowsAffected, res.Error
}

func toActivity(rows []partnerMaxRow) []PartnerActivity {
	out := make([]PartnerActivity, 0, len(rows))
	for _, row := range rows {
		out = append(out, PartnerActivity{
			PartnerID:     row.PartnerID,
			LastMessageAt: parseTimestamp(row.LastMessageAt),
		})
	}
	return out
}
