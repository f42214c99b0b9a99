package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/models"
	"charaverse-api/repositories"
)

// ReasonRelationshipRequired is surfaced by the gate when two
// characters of different users have no approved relationship, so the
// client can prompt for a relationship request instead of showing a
// generic failure.
const ReasonRelationshipRequired = "relationship required"

// MessageService covers direct and group messaging: the relationship
// gate, sending, the inbox aggregation and conversation views.
type MessageService struct {
	db      *gorm.DB
	repo    *repositories.MessageRepository
	webhook *WebhookService
	logger  *zap.Logger
}

func NewMessageService(db *gorm.DB, webhook *WebhookService, logger *zap.Logger) *MessageService {
	return &MessageService{
		db:      db,
		repo:    repositories.NewMessageRepository(db),
		webhook: webhook,
		logger:  logger,
	}
}

// GateDecision is the result of the messaging authorization check.
type GateDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanMessage decides whether sender may message receiver on behalf of
// the requesting user. Messaging one's own characters is always
// allowed; across users an approved relationship is required.
//
// The decision gates the conversation composer only. Send does not
// enforce it: the relationship system is a social prompt, not a
// security boundary.
func (s *MessageService) CanMessage(sender, receiver *models.Character, userID string) (GateDecision, error) {
	if receiver.UserID == userID {
		return GateDecision{Allowed: true}, nil
	}

	rel, err := FindRelationshipBetween(s.db, sender.ID, receiver.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GateDecision{Allowed: false, Reason: ReasonRelationshipRequired}, nil
		}
		return GateDecision{}, err
	}

	if !rel.IsApproved {
		return GateDecision{Allowed: false, Reason: ReasonRelationshipRequired}, nil
	}
	return GateDecision{Allowed: true}, nil
}

// Send creates a direct message. The sender must belong to the
// requesting user and the receiver must exist; the relationship gate is
// advisory and not checked here.
func (s *MessageService) Send(senderID, receiverID uint, content, userID string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	sender, err := s.ownedCharacter(senderID, userID)
	if err != nil {
		return nil, err
	}

	var receiver models.Character
	if err := s.db.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, receiverID)
		}
		return nil, err
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: &receiver.ID,
		Content:    content,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}

	if receiver.UserID != userID {
		s.webhook.NotifyMessage(sender.Name, receiver.Name)
	}

	return &msg, nil
}

// SendToGroup creates a group message. The sender must belong to the
// requesting user and be a member of the group.
func (s *MessageService) SendToGroup(senderID, groupID uint, content, userID string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	if _, err := s.ownedCharacter(senderID, userID); err != nil {
		return nil, err
	}

	var group models.GroupConversation
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
		}
		return nil, err
	}

	var member int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND character_id = ?", groupID, senderID).
		Count(&member).Error; err != nil {
		return nil, err
	}
	if member == 0 {
		return nil, fmt.Errorf("%w: character is not a member of this group", ErrForbidden)
	}

	msg := models.Message{
		SenderID: senderID,
		GroupID:  &group.ID,
		Content:  content,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}

	return &msg, nil
}

// Inbox aggregates the character's conversation partners across both
// message directions with recency and unread metadata, newest first.
func (s *MessageService) Inbox(characterID uint, userID string) (*models.InboxView, error) {
	if _, err := s.ownedCharacter(characterID, userID); err != nil {
		return nil, err
	}

	sent, err := s.repo.LastSentByPartner(characterID)
	if err != nil {
		return nil, err
	}
	received, err := s.repo.LastReceivedByPartner(characterID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadBySender(characterID)
	if err != nil {
		return nil, err
	}

	// Merge the two directions per partner, keeping the later timestamp.
	type entry struct {
		lastAt time.Time
		unread int
	}
	merged := make(map[uint]*entry)
	for _, row := range sent {
		merged[row.PartnerID] = &entry{lastAt: row.LastMessageAt}
	}
	for _, row := range received {
		if e, ok := merged[row.PartnerID]; ok {
			if row.LastMessageAt.After(e.lastAt) {
				e.lastAt = row.LastMessageAt
			}
		} else {
			merged[row.PartnerID] = &entry{lastAt: row.LastMessageAt}
		}
	}

	// Unread counts only ever come from the received direction. The
	// total is summed from the grouped query directly, not from the
	// merged map.
	totalUnread := 0
	for _, row := range unread {
		totalUnread += row.UnreadCount
		if e, ok := merged[row.PartnerID]; ok {
			e.unread = row.UnreadCount
		}
	}

	partnerIDs := make([]uint, 0, len(merged))
	for id := range merged {
		partnerIDs = append(partnerIDs, id)
	}

	partners := make(map[uint]models.Character, len(partnerIDs))
	if len(partnerIDs) > 0 {
		var chars []models.Character
		if err := s.db.Where("id IN ?", partnerIDs).Find(&chars).Error; err != nil {
			return nil, err
		}
		for _, ch := range chars {
			partners[ch.ID] = ch
		}
	}

	conversations := make([]models.ConversationSummary, 0, len(merged))
	for id, e := range merged {
		partner, ok := partners[id]
		if !ok {
			continue
		}
		conversations = append(conversations, models.ConversationSummary{
			Partner:       partner.Summary(),
			LastMessageAt: e.lastAt,
			UnreadCount:   e.unread,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})

	return &models.InboxView{
		CharacterID:   characterID,
		Conversations: conversations,
		TotalUnread:   totalUnread,
	}, nil
}

// Conversation returns the pairwise message history with the partner,
// marks all unread partner messages as read and carries the gate
// decision for the composer.
func (s *MessageService) Conversation(characterID, partnerID uint, userID string) (*models.ConversationView, error) {
	character, err := s.ownedCharacter(characterID, userID)
	if err != nil {
		return nil, err
	}

	var partner models.Character
	if err := s.db.First(&partner, partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, partnerID)
		}
		return nil, err
	}

	if err := s.repo.MarkConversationRead(characterID, partnerID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ConversationMessages(characterID, partnerID)
	if err != nil {
		return nil, err
	}

	gate, err := s.CanMessage(character, &partner, userID)
	if err != nil {
		return nil, err
	}

	return &models.ConversationView{
		Partner:    partner.Summary(),
		Messages:   messages,
		CanCompose: gate.Allowed,
		Reason:     gate.Reason,
	}, nil
}

// Delete soft-deletes a message. Allowed for the owner of either side
// of a direct message, or the sender's owner for group messages.
func (s *MessageService) Delete(messageID uint, userID string) error {
	var msg models.Message
	if err := s.db.Preload("Sender").Preload("Receiver").First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return err
	}

	allowed := msg.Sender.UserID == userID
	if !allowed && msg.Receiver != nil {
		allowed = msg.Receiver.UserID == userID
	}
	if !allowed {
		return fmt.Errorf("%w: you are not part of this message", ErrForbidden)
	}

	return s.db.Model(&msg).Update("is_deleted", true).Error
}

// ownedCharacter fetches a character and verifies ownership.
func (s *MessageService) ownedCharacter(characterID uint, userID string) (*models.Character, error) {
	var character models.Character
	if err := s.db.First(&character, characterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, characterID)
		}
		return nil, err
	}
	if character.UserID != userID {
		return nil, fmt.Errorf("%w: you do not own character %d", ErrForbidden, characterID)
	}
	return &character, nil
}
